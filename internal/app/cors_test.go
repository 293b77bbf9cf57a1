package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginHost(t *testing.T) {
	assert.Equal(t, "example.com", originHost("https://example.com"))
	assert.Equal(t, "example.com:8080", originHost("http://example.com:8080"))
	assert.Equal(t, "example.com", originHost("example.com"))
}

func TestOriginPatternMatches(t *testing.T) {
	assert.True(t, originPatternMatches("example.com", "example.com"))
	assert.True(t, originPatternMatches("*.example.com", "api.example.com"))
	assert.False(t, originPatternMatches("*.example.com", "example.org"))
	assert.True(t, originPatternMatches("localhost:*", "localhost:5173"))
	assert.False(t, originPatternMatches("localhost:*", "evilhost:5173"))
	assert.False(t, originPatternMatches("example.com", "sub.example.com"))
}
