package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the single Redis connection the service shares between the OTP
// store, the balance/identity view caches and the event streams.
type Client struct {
	*redis.Client
}

// Options tunes the connection; zero values fall back to the defaults
// below, which suit a single-binary deployment.
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

const (
	defaultPoolSize     = 10
	dialTimeout         = 5 * time.Second
	readTimeout         = 3 * time.Second
	writeTimeout        = 3 * time.Second
	connectProbeTimeout = 5 * time.Second
)

// NewClient connects and verifies the connection with a ping before any
// OTP or cache traffic depends on it.
func NewClient(opts Options) (*Client, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectProbeTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{Client: rdb}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
