package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var codePattern = regexp.MustCompile(`^[A-Z0-9]{5}-[A-Z0-9]{5}$`)

// GenerateCode creates a booking or reservation code in the format
// "XXXXX-XXXXX" (uppercase alphanumeric). Codes are generated once at
// creation and never regenerated.
func GenerateCode() (string, error) {
	buf := make([]byte, 11)
	for i := range buf {
		if i == 5 {
			buf[i] = '-'
			continue
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		buf[i] = codeChars[n.Int64()]
	}
	return string(buf), nil
}

// IsValidCode reports whether s matches the booking code format.
func IsValidCode(s string) bool {
	return codePattern.MatchString(s)
}
