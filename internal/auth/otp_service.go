package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jefin10/VoiceUPI/internal/middleware"
	"github.com/jefin10/VoiceUPI/internal/notify"
	"github.com/jefin10/VoiceUPI/internal/utils"
)

// OTPService verifies phone ownership with one-time codes and issues the
// session tokens the protected routes require. Codes live in Redis with a
// TTL and are stored bcrypt-hashed, never in plain text.
type OTPService struct {
	redis  *goredis.Client
	sender notify.Sender
	secret []byte
	ttl    time.Duration
}

func NewOTPService(redis *goredis.Client, sender notify.Sender, secret []byte, ttl time.Duration) *OTPService {
	return &OTPService{redis: redis, sender: sender, secret: secret, ttl: ttl}
}

func otpKey(phone string) string { return "otp:" + phone }

// SendOTP generates a fresh code for the phone, stores its hash and
// delivers it by SMS. Re-sending replaces any previous code.
func (s *OTPService) SendOTP(ctx context.Context, phone string) error {
	phone = utils.CanonicalPhone(phone)
	code := utils.GenerateOTP()
	hash, err := utils.HashOTP(code)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}
	if err := s.redis.Set(ctx, otpKey(phone), hash, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return s.sender.Send(ctx, phone, "Your OTP is "+code)
}

// VerifyOTP checks the submitted code and, on success, consumes it and
// returns a signed session token carrying the verified phone number.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code string) (string, error) {
	phone = utils.CanonicalPhone(phone)
	hash, err := s.redis.Get(ctx, otpKey(phone)).Result()
	if err != nil {
		return "", fmt.Errorf("invalid or expired code")
	}
	if !utils.CheckOTP(code, hash) {
		return "", fmt.Errorf("invalid or expired code")
	}
	s.redis.Del(ctx, otpKey(phone))
	return s.generateToken(phone)
}

func (s *OTPService) generateToken(phone string) (string, error) {
	claims := middleware.Claims{
		PhoneNumber: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
