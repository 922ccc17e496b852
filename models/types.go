package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Real-time channel event names
const (
	EventVoteUpdate     = "vote-update"
	EventCalendarUpdate = "calendar-update"
)

// DefaultDescription is stored when an event is submitted without a description.
const DefaultDescription = "No description"

// Request types

type VoteRequest struct {
	Name string `json:"name"`
}

type AddEventRequest struct {
	Key   string `json:"key"`
	Event *Event `json:"event"`
}

type UpdateEventRequest struct {
	Event *Event `json:"event"`
}

// Response types

type VoteResponse struct {
	Success bool  `json:"success"`
	Votes   Tally `json:"votes"`
}

type ClearVotesResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type EventsResponse struct {
	Success bool     `json:"success"`
	Events  Calendar `json:"events"`
}

// Domain types

// Tally maps a normalized display name to its vote count.
type Tally map[string]int

// Calendar maps a date key to its events in display order.
type Calendar map[string][]Event

type Event struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Time  string `json:"time"`
	Desc  string `json:"desc"`
}

// Document is the persisted layout of all shared state.
type Document struct {
	CrushVotes     Tally    `json:"crushVotes"`
	CalendarEvents Calendar `json:"calendarEvents"`
}

// Message is a single frame on the real-time channel.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewDocument returns a document with both maps initialized.
func NewDocument() Document {
	return Document{
		CrushVotes:     Tally{},
		CalendarEvents: Calendar{},
	}
}

// Clone returns a deep copy of the tally.
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	for name, count := range t {
		out[name] = count
	}
	return out
}

// Clone returns a deep copy of the calendar.
func (c Calendar) Clone() Calendar {
	out := make(Calendar, len(c))
	for key, events := range c {
		out[key] = append([]Event(nil), events...)
	}
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{
		CrushVotes:     d.CrushVotes.Clone(),
		CalendarEvents: d.CalendarEvents.Clone(),
	}
}

// DateKey builds the calendar key for a day, e.g. "March-5-2025".
func DateKey(t time.Time) string {
	return fmt.Sprintf("%s-%d-%d", t.Month(), t.Day(), t.Year())
}

// ParseDateKey parses a key produced by DateKey.
func ParseDateKey(key string) (time.Time, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date key %q: expected <Month>-<Day>-<Year>", key)
	}

	month, err := time.Parse("January", parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("date key %q: invalid month: %w", key, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("date key %q: invalid day: %w", key, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("date key %q: invalid year: %w", key, err)
	}

	t := time.Date(year, month.Month(), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month.Month() {
		return time.Time{}, fmt.Errorf("date key %q: day out of range", key)
	}
	return t, nil
}
