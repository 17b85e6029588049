package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Codes are exactly 6 characters: 2 digits, 1 lowercase letter, 3 digits.
// The shape is a fixed contract shared with the client-side validator; do not
// strengthen it unilaterally.
var codePattern = regexp.MustCompile(`^\d{2}[a-z]\d{3}$`)

func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

func generateCode() (string, error) {
	digits, err := randomDigits(5)
	if err != nil {
		return "", err
	}

	letter, err := randomInt(26)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%c%s", digits[:2], 'a'+rune(letter), digits[2:]), nil
}

func randomDigits(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		d, err := randomInt(10)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d)
	}
	return string(out), nil
}

func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random value: %w", err)
	}
	return n.Int64(), nil
}
