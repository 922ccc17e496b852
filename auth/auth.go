// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AdminKeyHeader carries the admin key on administrative requests.
const AdminKeyHeader = "X-Admin-Key"

var (
	ErrMissingAdminKey = errors.New("admin key required")
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// GenerateAdminKey creates a random secret suitable for ADMIN_KEY.
func GenerateAdminKey() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate admin key: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateAdminKey checks provided against the configured key. An empty
// configured key means administrative endpoints are open to everyone.
func ValidateAdminKey(provided, configured string) error {
	if configured == "" {
		return nil
	}
	if provided == "" {
		return ErrMissingAdminKey
	}
	if !hmac.Equal([]byte(provided), []byte(configured)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// RequestAdminKey extracts the admin key from a request header.
func RequestAdminKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(AdminKeyHeader))
}
