// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncclient keeps a local view of the shared votes and calendar.

An Agent follows the server over the real-time channel while it is
connected and falls back to a JSON file on the device otherwise.

# States

	Connecting   -> Connected     channel opened
	Connected    -> Disconnected  channel closed or failed
	Disconnected -> Connecting    Connect called again, or the next
	                              reconnect attempt (Options.Reconnect)

While Connected, writes go through the HTTP API and the local view is
refreshed by the next push from the server. Any other time reads and
writes use the fallback file. The two are never reconciled: when the
channel comes back, the server's state replaces the view and offline
changes stay behind in the file.

The calendar fetched right after connecting is only used until the
channel delivers its own copy, so a slow response never replaces newer
pushed state. If that fetch fails, the agent stays in
local mode for the rest of its life.

Close is final: it stops reconnecting and the agent cannot connect again.

# Usage

	agent, err := syncclient.New(ctx, syncclient.Options{
		BaseURL:      "http://localhost:3000",
		FallbackPath: "acadamist-local.json",
	})
	agent.OnChange(func(doc models.Document) { render(doc) })
	if err := agent.Connect(ctx); err != nil {
		log.Println("offline:", err)
	}
	defer agent.Close()

	agent.Vote(ctx, "alice")
*/
package syncclient
