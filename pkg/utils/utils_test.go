package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "green peas", NormalizeKey("  Green Peas \t"))
	assert.Equal(t, "", NormalizeKey("   "))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.Equal(t, "ab...", TruncateString("abcdef", 2))
	assert.Equal(t, "पा...", TruncateString("पाव भाजी", 2))
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://exports.example.com/recipes.json", true},
		{"http://localhost:8080", true},
		{"ftp://example.com", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.raw))
		})
	}
}

func TestBuildHeaders(t *testing.T) {
	h := BuildHeaders(map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, UserAgent, h.Get("User-Agent"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "Bearer x", h.Get("Authorization"))
}
