package server

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	lobbyCodeLength   = 6
	lobbyCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateLobbyCode returns a 6-character human-shareable code that the
// given predicate does not already know about.
func GenerateLobbyCode(exists func(string) bool) string {
	for {
		code := make([]byte, lobbyCodeLength)
		for i := range code {
			code[i] = lobbyCodeAlphabet[rand.Intn(len(lobbyCodeAlphabet))]
		}
		if !exists(string(code)) {
			return string(code)
		}
	}
}

func ValidateLobbyCode(code string) error {
	if len(code) != lobbyCodeLength {
		return errors.New("lobby code must be exactly 6 characters")
	}

	for _, ch := range strings.ToUpper(code) {
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return errors.New("lobby code must contain only letters and digits")
		}
	}

	return nil
}

func NormalizeLobbyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
