package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_DefaultLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	Init()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInit_ParsesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	Init()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInit_BadLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shout")
	Init()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestIsPretty(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " y "} {
		assert.True(t, isPretty(v), v)
	}
	for _, v := range []string{"", "0", "false", "no"} {
		assert.False(t, isPretty(v), v)
	}
}
