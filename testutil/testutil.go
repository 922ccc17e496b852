// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mcthuva007/Acadamist/broadcast"
	"github.com/mcthuva007/Acadamist/cliparse"
	"github.com/mcthuva007/Acadamist/store"
)

// TestAdminKey is the admin key used by GetTestConfigWithAdminKey
const TestAdminKey = "test-admin-key"

// SetupTestStore creates a loaded store backed by a JSON file in a temp dir
// and returns it with the data file path.
func SetupTestStore(t *testing.T, pub store.Publisher) (*store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.json")
	st := store.New(store.NewFileBackend(path), pub)
	st.Load(context.Background())
	return st, path
}

// SetupTestHub creates a hub and a store publishing to it. The hub is
// closed when the test ends.
func SetupTestHub(t *testing.T) (*store.Store, *broadcast.Hub) {
	t.Helper()

	hub := broadcast.NewHub()
	t.Cleanup(hub.Close)
	st, _ := SetupTestStore(t, hub)
	return st, hub
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:      3000,
		DataFile:  "data.json",
		StoreType: cliparse.StoreJSON,
	}
}

// GetTestConfigWithAdminKey returns a test configuration that protects
// clear-votes with TestAdminKey
func GetTestConfigWithAdminKey() cliparse.Config {
	cfg := GetTestConfig()
	cfg.AdminKey = TestAdminKey
	return cfg
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
