package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var alphabetSize = big.NewInt(int64(len(codeAlphabet)))

// GenerateCode returns n characters drawn uniformly from A-Z0-9 using
// crypto/rand. Each character carries about 5.17 bits of entropy.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}

	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		code[i] = codeAlphabet[idx.Int64()]
	}
	return string(code), nil
}

// GenerateTrackingID returns a customer-facing order reference such as
// TRK7Q2M9XK4AB.
func GenerateTrackingID() (string, error) {
	code, err := GenerateCode(10)
	if err != nil {
		return "", err
	}
	return "TRK" + code, nil
}

// GenerateTransactionID returns a payment rail reference for UPI orders.
func GenerateTransactionID() (string, error) {
	code, err := GenerateCode(12)
	if err != nil {
		return "", err
	}
	return "TXN" + code, nil
}
