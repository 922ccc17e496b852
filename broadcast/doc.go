// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast pushes full shared state to live WebSocket clients.

# Frames

Every frame is a JSON text message:

	{"event": "vote-update", "data": {"Alice": 3}}
	{"event": "calendar-update", "data": {"March-5-2025": [...]}}

Frames always carry the complete sub-tree, never a diff, so a client that
applies the latest frame has the server's current state.

# Registration

	hub := broadcast.NewHub()
	client, err := hub.Register(conn, remoteAddr, initialFrames...)

Initial frames are queued before the client becomes visible to Publish,
so a new client sees its snapshot first and every later mutation after it.

# Publishing

	hub.Publish(models.EventVoteUpdate, votes)

Hub implements store.Publisher. Each client has its own buffered queue and
writer goroutine; a client whose queue is full is disconnected rather than
blocking the publisher.

# Lifecycle

Run blocks until its context ends and then closes every connection.
Client-to-server frames are read and discarded.
*/
package broadcast
