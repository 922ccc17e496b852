// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Acadamist API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, hub, cfg)

# Endpoints

Health:

	GET /health

Votes:

	GET  /api/votes       - Full tally
	POST /api/vote        - Count a vote
	POST /api/clear-votes - Reset the tally (X-Admin-Key when configured)

Calendar:

	GET    /api/events               - Full calendar
	POST   /api/events               - Add an event
	DELETE /api/events/{key}/{index} - Remove an event by position or id

Real-time channel:

	GET /socket - WebSocket upgrade, vote-update and calendar-update frames

Root:

	GET / - The static site directory when STATIC_DIR is set, otherwise a banner

PUT /api/events/{key}/{index} is intentionally absent; the mux answers 405.

# Handler Initialization

The router creates handler instances with dependency injection:

	voteHandler := handlers.NewVoteHandler(st, cfg)
	calendarHandler := handlers.NewCalendarHandler(st)
	socketHandler := handlers.NewSocketHandler(st, hub)

All handlers share the one store. The hub receives every store publish.
*/
package router
