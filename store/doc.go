// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store owns the shared vote tally and calendar.

# Ownership

A Store is created once and injected into every handler:

	st := store.New(store.NewFileBackend("data.json"), hub)
	st.Load(ctx)

There are no package-level globals. Every mutation runs read, modify,
persist and publish under a single mutex, so N concurrent requests produce
N saves and N broadcasts in arrival order.

# Votes

	votes, err := st.SubmitVote(" aLiCe ") // counts for "Alice"
	st.ClearVotes()

Names are trimmed, inner whitespace is collapsed and each word is
title-cased. Empty names fail with ErrValidation.

# Calendar

	cal, err := st.AddEvent("March-5-2025", &models.Event{Title: "Lunch"})
	cal, err = st.DeleteEvent("March-5-2025", "0")

DeleteEvent accepts a position or an event id. Unknown keys fail with
ErrNotFound and bad positions with ErrRange. A day with no events left is
removed from the calendar.

# Persistence

Backends store the whole document on every save:

  - FileBackend: indented JSON, written via temp file and rename
  - SQLBackend: one row in the document table (sqlite or postgres)

Save failures are logged and swallowed. The in-memory state stays
authoritative and the next successful save catches the backend up.
*/
package store
