package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/classpulse/engagement-service/internal/models"
)

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinCode draws a random class join code from the uppercase+digit
// alphabet. Uniqueness is the caller's concern: regenerate on collision and
// let the storage unique index arbitrate concurrent creators.
func GenerateJoinCode() (string, error) {
	buf := make([]byte, models.JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
