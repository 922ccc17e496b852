// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/testutil"
)

func TestAddEvent(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
	}{
		{
			name:           "valid event",
			requestBody:    `{"key": "March-5-2025", "event": {"title": "Lunch", "time": "12:00 PM", "desc": "Cafe"}}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-date key is accepted",
			requestBody:    `{"key": "someday", "event": {"title": "Lunch"}}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing key",
			requestBody:    `{"event": {"title": "Lunch"}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing event",
			requestBody:    `{"key": "March-5-2025"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty title",
			requestBody:    `{"key": "March-5-2025", "event": {"title": "  "}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    `not json`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := testutil.SetupTestStore(t, nil)
			handler := NewCalendarHandler(st)

			req := httptest.NewRequest("POST", "/api/events", strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.AddEvent(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				if len(st.Events()) != 0 {
					t.Errorf("Calendar changed after rejected add: %v", st.Events())
				}
				return
			}

			var resp models.EventsResponse
			testutil.AssertJSON(t, w, &resp)
			if !resp.Success {
				t.Error("Expected success=true")
			}
			if len(resp.Events) != 1 {
				t.Errorf("Expected one day in calendar, got %v", resp.Events)
			}
		})
	}
}

func TestAddEvent_DefaultDescription(t *testing.T) {
	st, _ := testutil.SetupTestStore(t, nil)
	handler := NewCalendarHandler(st)

	req := testutil.MakeRequest("POST", "/api/events", models.AddEventRequest{
		Key:   "March-5-2025",
		Event: &models.Event{Title: "Lunch", Time: "12:00 PM"},
	}, nil)
	w := httptest.NewRecorder()
	handler.AddEvent(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.EventsResponse
	testutil.AssertJSON(t, w, &resp)

	events := resp.Events["March-5-2025"]
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Desc != models.DefaultDescription {
		t.Errorf("Expected desc %q, got %q", models.DefaultDescription, events[0].Desc)
	}
	if events[0].ID == "" {
		t.Error("Expected a generated event id")
	}
}

func TestDeleteEvent(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		index          string
		expectedStatus int
		expectedTitles []string // remaining titles for March-5-2025; nil = key removed
	}{
		{
			name:           "delete first of two",
			key:            "March-5-2025",
			index:          "0",
			expectedStatus: http.StatusOK,
			expectedTitles: []string{"Second"},
		},
		{
			name:           "delete second of two",
			key:            "March-5-2025",
			index:          "1",
			expectedStatus: http.StatusOK,
			expectedTitles: []string{"First"},
		},
		{
			name:           "unknown key",
			key:            "April-1-2025",
			index:          "0",
			expectedStatus: http.StatusNotFound,
			expectedTitles: []string{"First", "Second"},
		},
		{
			name:           "index out of range",
			key:            "March-5-2025",
			index:          "2",
			expectedStatus: http.StatusBadRequest,
			expectedTitles: []string{"First", "Second"},
		},
		{
			name:           "negative index",
			key:            "March-5-2025",
			index:          "-1",
			expectedStatus: http.StatusBadRequest,
			expectedTitles: []string{"First", "Second"},
		},
		{
			name:           "not a number",
			key:            "March-5-2025",
			index:          "abc",
			expectedStatus: http.StatusBadRequest,
			expectedTitles: []string{"First", "Second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := testutil.SetupTestStore(t, nil)
			handler := NewCalendarHandler(st)

			st.AddEvent("March-5-2025", &models.Event{Title: "First"})
			st.AddEvent("March-5-2025", &models.Event{Title: "Second"})

			req := httptest.NewRequest("DELETE", "/api/events/"+tt.key+"/"+tt.index, nil)
			req.SetPathValue("key", tt.key)
			req.SetPathValue("index", tt.index)
			w := httptest.NewRecorder()

			handler.DeleteEvent(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			remaining := st.Events()["March-5-2025"]
			if len(remaining) != len(tt.expectedTitles) {
				t.Fatalf("Expected %d remaining events, got %d", len(tt.expectedTitles), len(remaining))
			}
			for i, title := range tt.expectedTitles {
				if remaining[i].Title != title {
					t.Errorf("Event %d: expected %q, got %q", i, title, remaining[i].Title)
				}
			}
		})
	}
}

func TestDeleteEvent_LastEventRemovesKey(t *testing.T) {
	st, _ := testutil.SetupTestStore(t, nil)
	handler := NewCalendarHandler(st)

	st.AddEvent("March-5-2025", &models.Event{Title: "Only"})

	req := httptest.NewRequest("DELETE", "/api/events/March-5-2025/0", nil)
	req.SetPathValue("key", "March-5-2025")
	req.SetPathValue("index", "0")
	w := httptest.NewRecorder()
	handler.DeleteEvent(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EventsResponse
	testutil.AssertJSON(t, w, &resp)
	if _, ok := resp.Events["March-5-2025"]; ok {
		t.Error("Expected key to be removed from response")
	}
	if _, ok := st.Events()["March-5-2025"]; ok {
		t.Error("Expected key to be removed from store")
	}
}

func TestDeleteEvent_ByID(t *testing.T) {
	st, _ := testutil.SetupTestStore(t, nil)
	handler := NewCalendarHandler(st)

	st.AddEvent("March-5-2025", &models.Event{Title: "First"})
	cal, _ := st.AddEvent("March-5-2025", &models.Event{Title: "Second"})
	id := cal["March-5-2025"][0].ID

	req := httptest.NewRequest("DELETE", "/api/events/March-5-2025/"+id, nil)
	req.SetPathValue("key", "March-5-2025")
	req.SetPathValue("index", id)
	w := httptest.NewRecorder()
	handler.DeleteEvent(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	remaining := st.Events()["March-5-2025"]
	if len(remaining) != 1 || remaining[0].Title != "Second" {
		t.Errorf("Expected only Second to remain, got %v", remaining)
	}
}
