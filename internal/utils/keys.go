package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GenerateSecret returns a URL-safe random string carrying n bytes of entropy.
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(b), err
}

func CheckSecret(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}

// SplitKey splits a "<key_id>.<secret>" function key.
func SplitKey(key string) (id, secret string, ok bool) {
	id, secret, ok = strings.Cut(strings.TrimSpace(key), ".")
	if !ok || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}
