// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Acadamist API.

# Handler Types

Each handler is a struct holding the injected store (and config or hub
where needed):

  - VoteHandler: tally reads, vote submission, clearing
  - CalendarHandler: event listing, adding, deleting
  - SocketHandler: real-time channel upgrades

	voteHandler := handlers.NewVoteHandler(st, cfg)
	calendarHandler := handlers.NewCalendarHandler(st)
	socketHandler := handlers.NewSocketHandler(st, hub)

# Votes

	GET  /api/votes        → GetVotes
	POST /api/vote         → SubmitVote ({"name": "..."})
	POST /api/clear-votes  → ClearVotes

Clearing is unauthenticated unless an admin key is configured, in which
case the X-Admin-Key header must match.

# Calendar

	GET    /api/events               → GetEvents
	POST   /api/events               → AddEvent ({"key": "March-5-2025", "event": {...}})
	DELETE /api/events/{key}/{index} → DeleteEvent

{index} is the event's position within the day or its id. There is no
update route: clients that edit an event with PUT get 405 back.

# Errors

Store errors map to HTTP status codes:

  - store.ErrValidation → 400
  - store.ErrNotFound   → 404
  - store.ErrRange      → 400

Persistence failures never reach the handlers; the store logs them and the
request still succeeds.

# Real-time Channel

	GET /socket → Connect

The client receives vote-update and calendar-update with the full state,
then every later broadcast.
*/
package handlers
