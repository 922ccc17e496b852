// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcthuva007/Acadamist/models"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrRange      = errors.New("out of range")
)

// Publisher receives the full updated sub-tree after every mutation.
type Publisher interface {
	Publish(event string, payload any)
}

// Store owns the in-memory votes and calendar and keeps the backend in sync.
// All mutations are serialized: read, modify, persist and publish happen
// under one lock, in arrival order.
type Store struct {
	mu      sync.Mutex
	backend Backend
	pub     Publisher
	doc     models.Document
	newID   func() string
}

// New creates an empty store. Call Load to pull in the persisted document.
func New(backend Backend, pub Publisher) *Store {
	return &Store{
		backend: backend,
		pub:     pub,
		doc:     models.NewDocument(),
		newID:   uuid.NewString,
	}
}

// Load replaces the in-memory state with the persisted document. A missing
// document leaves the store empty. Read or parse failures are logged and the
// store continues with empty state.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, found, err := s.backend.Load(ctx)
	if err != nil {
		slog.Error("failed to load data, starting fresh", "error", err)
		s.doc = models.NewDocument()
		return
	}
	if !found {
		slog.Info("no existing data, starting fresh")
		s.doc = models.NewDocument()
		return
	}

	backfilled := normalizeDocument(&doc, s.newID)
	s.doc = doc
	slog.Info("data loaded",
		"voters", len(doc.CrushVotes),
		"event_days", len(doc.CalendarEvents),
	)

	// Events from older documents carry no id; persist the ones just assigned
	// so they survive the next restart.
	if backfilled > 0 {
		slog.Info("assigned ids to stored events", "count", backfilled)
		s.saveLocked()
	}
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Attach calls fn with the current document while holding the store lock, so
// no mutation (and therefore no publish) can happen until fn returns. Used to
// register a live client together with its initial state.
func (s *Store) Attach(fn func(doc models.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc.Clone())
}

// Votes returns a copy of the current tally.
func (s *Store) Votes() models.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CrushVotes.Clone()
}

// SubmitVote counts one vote for name after normalizing it and returns the
// updated tally.
func (s *Store) SubmitVote(name string) (models.Tally, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.CrushVotes[normalized]++
	s.saveLocked()

	votes := s.doc.CrushVotes.Clone()
	s.publish(models.EventVoteUpdate, votes.Clone())

	slog.Info("vote recorded", "name", normalized, "count", votes[normalized])
	return votes, nil
}

// ClearVotes resets the tally.
func (s *Store) ClearVotes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.CrushVotes = models.Tally{}
	s.saveLocked()
	s.publish(models.EventVoteUpdate, models.Tally{})

	slog.Info("votes cleared")
}

// Events returns a copy of the calendar.
func (s *Store) Events() models.Calendar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CalendarEvents.Clone()
}

// AddEvent appends event to the day identified by key and returns the
// updated calendar. The stored event gets a fresh id and a default
// description when none was given.
func (s *Store) AddEvent(key string, event *models.Event) (models.Calendar, error) {
	if strings.TrimSpace(key) == "" || event == nil {
		return nil, fmt.Errorf("%w: key and event are required", ErrValidation)
	}

	stored := models.Event{
		Title: strings.TrimSpace(event.Title),
		Time:  strings.TrimSpace(event.Time),
		Desc:  strings.TrimSpace(event.Desc),
	}
	if stored.Title == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrValidation)
	}
	if stored.Desc == "" {
		stored.Desc = models.DefaultDescription
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored.ID = s.newID()
	s.doc.CalendarEvents[key] = append(s.doc.CalendarEvents[key], stored)
	s.saveLocked()

	events := s.doc.CalendarEvents.Clone()
	s.publish(models.EventCalendarUpdate, events.Clone())

	slog.Info("event added", "key", key, "event_id", stored.ID)
	return events, nil
}

// DeleteEvent removes one event from the day identified by key. ref is either
// the event's position in the day (decimal) or its id. The day is dropped
// once it has no events left.
func (s *Store) DeleteEvent(key, ref string) (models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, ok := s.doc.CalendarEvents[key]
	if !ok {
		return nil, fmt.Errorf("%w: event key %q", ErrNotFound, key)
	}

	index := resolveRef(events, ref)
	if index < 0 {
		return nil, fmt.Errorf("%w: invalid event index %q", ErrRange, ref)
	}

	removed := events[index]
	events = append(events[:index:index], events[index+1:]...)
	if len(events) == 0 {
		delete(s.doc.CalendarEvents, key)
	} else {
		s.doc.CalendarEvents[key] = events
	}
	s.saveLocked()

	calendar := s.doc.CalendarEvents.Clone()
	s.publish(models.EventCalendarUpdate, calendar.Clone())

	slog.Info("event deleted", "key", key, "event_id", removed.ID)
	return calendar, nil
}

// UpdateEvent replaces the event at ref in place, keeping its id. The HTTP
// API does not expose it; the sync agent uses it for offline edits.
func (s *Store) UpdateEvent(key, ref string, event *models.Event) (models.Calendar, error) {
	if event == nil || strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, ok := s.doc.CalendarEvents[key]
	if !ok {
		return nil, fmt.Errorf("%w: event key %q", ErrNotFound, key)
	}
	index := resolveRef(events, ref)
	if index < 0 {
		return nil, fmt.Errorf("%w: invalid event index %q", ErrRange, ref)
	}

	updated := models.Event{
		ID:    events[index].ID,
		Title: strings.TrimSpace(event.Title),
		Time:  strings.TrimSpace(event.Time),
		Desc:  strings.TrimSpace(event.Desc),
	}
	if updated.Desc == "" {
		updated.Desc = models.DefaultDescription
	}
	events[index] = updated
	s.saveLocked()

	calendar := s.doc.CalendarEvents.Clone()
	s.publish(models.EventCalendarUpdate, calendar.Clone())

	slog.Info("event updated", "key", key, "event_id", updated.ID)
	return calendar, nil
}

// saveLocked writes the whole document. Failures are logged and swallowed:
// memory stays authoritative until the next successful save.
func (s *Store) saveLocked() {
	if err := s.backend.Save(context.Background(), s.doc); err != nil {
		slog.Error("failed to save data", "error", err)
	}
}

func (s *Store) publish(event string, payload any) {
	if s.pub != nil {
		s.pub.Publish(event, payload)
	}
}

// resolveRef returns the position ref points at, or -1.
func resolveRef(events []models.Event, ref string) int {
	if index, err := strconv.Atoi(ref); err == nil {
		if index < 0 || index >= len(events) {
			return -1
		}
		return index
	}
	if ref == "" {
		return -1
	}
	for i, e := range events {
		if e.ID == ref {
			return i
		}
	}
	return -1
}

// NormalizeName trims name, collapses inner whitespace and title-cases every
// word, so "  aLiCe   smith" and "Alice Smith" count as the same person.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}

// normalizeDocument fills nil maps, drops empty days and assigns ids to
// events without one. It returns the number of ids assigned.
func normalizeDocument(doc *models.Document, newID func() string) int {
	if doc.CrushVotes == nil {
		doc.CrushVotes = models.Tally{}
	}
	if doc.CalendarEvents == nil {
		doc.CalendarEvents = models.Calendar{}
	}

	assigned := 0
	for key, events := range doc.CalendarEvents {
		if len(events) == 0 {
			delete(doc.CalendarEvents, key)
			continue
		}
		for i := range events {
			if events[i].ID == "" {
				events[i].ID = newID()
				assigned++
			}
		}
	}
	return assigned
}
