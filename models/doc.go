// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - VoteRequest: name
  - AddEventRequest: key, event
  - UpdateEventRequest: event (only used by clients, see handlers)

# Response Types

Types for JSON responses:

  - VoteResponse: success, votes
  - ClearVotesResponse: success, message
  - EventsResponse: success, events
  - ErrorResponse: error, message

# Domain Types

  - Tally: normalized name → vote count
  - Calendar: date key → ordered events
  - Event: id, title, time, desc
  - Document: the persisted {crushVotes, calendarEvents} layout
  - Message: one real-time channel frame {event, data}

# Date Keys

Calendar days are keyed as "<MonthName>-<Day>-<Year>":

	models.DateKey(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)) // "March-5-2025"

# Channel Events

	EventVoteUpdate     = "vote-update"
	EventCalendarUpdate = "calendar-update"
*/
package models
