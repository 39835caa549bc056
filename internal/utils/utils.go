package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// GenerateAccountNumber generates an 8-digit account number starting with 01
func GenerateAccountNumber() string {
	num, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	return fmt.Sprintf("01%06d", num.Int64())
}

// GenerateOTP generates a 6-digit one-time code.
func GenerateOTP() string {
	num, _ := rand.Int(rand.Reader, big.NewInt(900000))
	return fmt.Sprintf("%06d", num.Int64()+100000)
}

// HashOTP hashes a one-time code using bcrypt before it is stored.
func HashOTP(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckOTP checks if a one-time code matches a stored hash
func CheckOTP(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}

// DeriveUpiHandle derives the payment address from a display name:
// lowercase, spaces removed, "@upi" appended. The derivation is
// deterministic, so two identical display names collide.
func DeriveUpiHandle(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(displayName), " ", "") + "@upi"
}

// IsUpiHandle reports whether ref addresses a party by UPI handle rather
// than by phone number.
func IsUpiHandle(ref string) bool {
	return strings.Contains(ref, "@")
}

// CanonicalPhone normalises a phone number to international +91 format,
// dropping spaces, dashes and leading zeros.
func CanonicalPhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")
	if strings.HasPrefix(p, "+") {
		return p
	}
	return "+91" + strings.TrimLeft(p, "0")
}

// ValidateAccountNumber validates the account number format
func ValidateAccountNumber(accountNumber string) bool {
	return len(accountNumber) == 8 && strings.HasPrefix(accountNumber, "01")
}
