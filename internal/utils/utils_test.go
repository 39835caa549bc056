package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID("usr")
	assert.True(t, strings.HasPrefix(id, "usr-"))
	assert.Len(t, id, len("usr-")+10)
	assert.NotEqual(t, id, GenerateID("usr"))
}

func TestGenerateAccountNumber(t *testing.T) {
	number := GenerateAccountNumber()
	assert.True(t, ValidateAccountNumber(number))
}

func TestGenerateOTP(t *testing.T) {
	code := GenerateOTP()
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestHashAndCheckOTP(t *testing.T) {
	hash, err := HashOTP("123456")
	require.NoError(t, err)
	assert.True(t, CheckOTP("123456", hash))
	assert.False(t, CheckOTP("654321", hash))
}

func TestDeriveUpiHandle(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Alice Kumar", "alicekumar@upi"},
		{"BOB", "bob@upi"},
		{"Mary Jane Watson", "maryjanewatson@upi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DeriveUpiHandle(tt.name))
	}
}

func TestIsUpiHandle(t *testing.T) {
	assert.True(t, IsUpiHandle("alice@upi"))
	assert.False(t, IsUpiHandle("+919900000001"))
	assert.False(t, IsUpiHandle("9900000001"))
}

func TestCanonicalPhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+919900000001", "+919900000001"},
		{"9900000001", "+919900000001"},
		{"09900000001", "+919900000001"},
		{"99000 00001", "+919900000001"},
		{"99000-00001", "+919900000001"},
		{" +91 99000 00001 ", "+919900000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalPhone(tt.input), "input %q", tt.input)
	}
}

func TestValidateAccountNumber(t *testing.T) {
	assert.True(t, ValidateAccountNumber("01234567"))
	assert.False(t, ValidateAccountNumber("11234567"))
	assert.False(t, ValidateAccountNumber("0123456"))
	assert.False(t, ValidateAccountNumber("012345678"))
}
