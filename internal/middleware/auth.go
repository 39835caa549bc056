package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued after OTP verification. The phone
// number is the verified caller identity every protected route acts as.
type Claims struct {
	PhoneNumber string `json:"phoneNumber"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and stores the verified phone
// number in the request context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			return secret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("phone", claims.PhoneNumber)
		c.Next()
	}
}

// GetPhone returns the verified phone number of the caller, set by
// AuthMiddleware.
func GetPhone(c *gin.Context) (string, bool) {
	phone, exists := c.Get("phone")
	if !exists {
		return "", false
	}
	return phone.(string), true
}
