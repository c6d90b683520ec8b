// Package codes generates human-typable random codes.
package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalidLength = errors.New("invalid code length")

const (
	// PromoCodeLength is the number of random characters in a generated
	// promotion code, before grouping.
	PromoCodeLength = 8

	// Upper case alphanumeric without 0/O, 1/I/L.
	charsetPromo = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// PromoCode returns a code such as "K7QD-M2XA". Codes are compared after
// upper-casing, so the charset is upper case only.
func PromoCode() (string, error) {
	code, err := Generate(PromoCodeLength, charsetPromo)
	if err != nil {
		return "", err
	}
	return Format(code, 4), nil
}

// Generate draws length characters uniformly from charset.
func Generate(length int, charset string) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	if charset == "" {
		return "", errors.New("charset cannot be empty")
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// Format groups code with dashes, e.g. "ABCD1234" -> "ABCD-1234".
func Format(code string, groupSize int) string {
	if groupSize < 1 || len(code) <= groupSize {
		return code
	}
	parts := make([]string, 0, (len(code)+groupSize-1)/groupSize)
	for i := 0; i < len(code); i += groupSize {
		parts = append(parts, code[i:min(i+groupSize, len(code))])
	}
	return strings.Join(parts, "-")
}
