package totp

import (
	"errors"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the PNG edge length in pixels
const DefaultQRSize = 256

// KeyURI builds the otpauth:// URI authenticator apps import
func KeyURI(issuer, account, secret string, period int) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	if period <= 0 {
		return "", ErrInvalidPeriod
	}
	if account == "" {
		account = issuer
	}

	generated, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(period),
		Secret:      key,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return generated.URL(), nil
}

// QRCode renders content as a PNG QR code
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// GenerateSecret returns a fresh random Base32 secret
func GenerateSecret(issuer, account string) (string, error) {
	if issuer == "" {
		issuer = "otpboard"
	}
	if account == "" {
		account = issuer
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: account})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}
