package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

func generateReference() (string, error) {
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		d, err := randomInt(10)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d))
	}

	letter, err := randomInt(26)
	if err != nil {
		return "", err
	}
	sb.WriteByte(byte('a' + letter))

	d, err := randomInt(10)
	if err != nil {
		return "", err
	}
	sb.WriteByte(byte('0' + d))

	return sb.String(), nil
}

func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random value: %w", err)
	}
	return n.Int64(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
