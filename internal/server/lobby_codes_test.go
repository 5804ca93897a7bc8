package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLobbyCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateLobbyCode(func(string) bool { return false })
		assert.Len(t, code, 6)
		assert.NoError(t, ValidateLobbyCode(code))
	}
}

func TestGenerateLobbyCode_AvoidsExisting(t *testing.T) {
	// Refuse the first three candidates; the generator must keep going.
	rejected := 0
	code := GenerateLobbyCode(func(string) bool {
		if rejected < 3 {
			rejected++
			return true
		}
		return false
	})
	assert.Equal(t, 3, rejected)
	assert.NoError(t, ValidateLobbyCode(code))
}

func TestValidateLobbyCode(t *testing.T) {
	assert.NoError(t, ValidateLobbyCode("ABC123"))
	assert.NoError(t, ValidateLobbyCode("abc123")) // case-insensitive
	assert.Error(t, ValidateLobbyCode("ABC"))
	assert.Error(t, ValidateLobbyCode("ABC1234"))
	assert.Error(t, ValidateLobbyCode("ABC-12"))
	assert.Error(t, ValidateLobbyCode(""))
}

func TestNormalizeLobbyCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeLobbyCode("  abc123 "))
}
