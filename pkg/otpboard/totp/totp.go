// Package totp derives time-based one-time codes from Base32 secrets.
//
// Secret parsing is tolerant of the way people paste keys: whitespace anywhere,
// lower case and trailing '=' padding are all accepted. HMAC and dynamic
// truncation are delegated to github.com/pquerna/otp/hotp.
package totp

import (
	"encoding/base32"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// DefaultDigits is the code length used by authenticator apps
const DefaultDigits = 6

var (
	// ErrInvalidSecret means the secret is not usable Base32
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrClockUnavailable means no usable wall-clock time was supplied
	ErrClockUnavailable = errors.New("time unavailable for code generation")
	// ErrInvalidPeriod means the period is not a positive number of seconds
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrInvalidDigits means the requested code length is not supported
	ErrInvalidDigits = errors.New("digits must be between 1 and 9")
)

var rawEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NormalizeSecret strips whitespace and padding and uppercases the secret
func NormalizeSecret(secret string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, secret)
	return strings.TrimRight(cleaned, "=")
}

// DecodeSecret decodes a Base32 secret into raw key bytes
func DecodeSecret(secret string) ([]byte, error) {
	normalized := NormalizeSecret(secret)
	if normalized == "" {
		return nil, ErrInvalidSecret
	}
	for _, r := range normalized {
		if !(r >= 'A' && r <= 'Z') && !(r >= '2' && r <= '7') {
			return nil, ErrInvalidSecret
		}
	}
	key, err := rawEncoding.DecodeString(normalized)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

// ValidateSecret reports whether secret decodes to a usable key
func ValidateSecret(secret string) error {
	_, err := DecodeSecret(secret)
	return err
}

// Counter returns the period index for a unix time
func Counter(unixSeconds int64, period int) uint64 {
	if period <= 0 || unixSeconds < 0 {
		return 0
	}
	return uint64(unixSeconds) / uint64(period)
}

// ComputeCode returns the zero-padded code for key at unixSeconds
func ComputeCode(key []byte, unixSeconds int64, period, digits int) (string, error) {
	if len(key) == 0 {
		return "", ErrInvalidSecret
	}
	if period <= 0 {
		return "", ErrInvalidPeriod
	}
	if digits < 1 || digits > 9 {
		return "", ErrInvalidDigits
	}
	if unixSeconds < 0 {
		return "", ErrClockUnavailable
	}

	code, err := hotp.GenerateCodeCustom(rawEncoding.EncodeToString(key), Counter(unixSeconds, period), hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", ErrInvalidSecret
	}
	return code, nil
}

// Code decodes secret and returns its DefaultDigits-long code at t
func Code(secret string, t time.Time, period int) (string, error) {
	if t.IsZero() || t.Unix() < 0 {
		return "", ErrClockUnavailable
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return ComputeCode(key, t.Unix(), period, DefaultDigits)
}
