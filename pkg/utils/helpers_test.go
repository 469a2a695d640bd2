package utils

import (
	"strings"
	"testing"
)

func TestGenerateRandomString(t *testing.T) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for _, limit := range []int{0, 1, 12, 40} {
		s := GenerateRandomString(limit)
		if len(s) != limit {
			t.Errorf("GenerateRandomString(%d) length = %d; want %d", limit, len(s), limit)
		}
		for _, r := range s {
			if !strings.ContainsRune(chars, r) {
				t.Errorf("GenerateRandomString(%d) contains unexpected rune %q", limit, r)
			}
		}
	}
}
