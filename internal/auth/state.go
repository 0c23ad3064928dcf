package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// StateLen is the hex length of an OAuth state value (16 random bytes).
const StateLen = 32

var stateFormatRegex = regexp.MustCompile(`^[a-f0-9]{32}$`)

// GenerateState returns a random OAuth state value.
func GenerateState() (string, error) {
	b := make([]byte, StateLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidStateFormat checks if a callback state could have been issued by
// GenerateState.
func ValidStateFormat(state string) bool {
	return stateFormatRegex.MatchString(state)
}
