package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImageExtensionAllowed(t *testing.T) {
	service := NewStorageService(nil)

	testCases := []struct {
		filename string
		allowed  bool
	}{
		{"avatar.png", true},
		{"avatar.jpg", true},
		{"avatar.jpeg", true},
		{"avatar.gif", true},
		{"avatar.webp", true},
		{"AVATAR.PNG", true},
		// Extension must be delimited, not merely a suffix.
		{"avatarpng", false},
		{"avatar-png", false},
		{"avatar.svg", false},
		{"avatar.png.exe", false},
		{"avatar", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.allowed, service.IsImageExtensionAllowed(tc.filename))
		})
	}
}

func TestGenerateKeyName(t *testing.T) {
	service := NewStorageService(nil)

	key := service.GenerateKeyName()
	assert.Len(t, key, 16)
	assert.Equal(t, strings.ToLower(key), key)
	assert.NotEqual(t, key, service.GenerateKeyName())
}
