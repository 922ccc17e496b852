// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Acadamist shared state server.

The server keeps the site's vote tally and shared calendar, persists them
after every change and pushes the full state to every page that has the
real-time channel open.

# Starting the Server

With no configuration the server listens on port 3000 and stores its
state in ./data.json:

	go run .

Or with flags:

	go run . -p 3000 -f /var/lib/acadamist/data.json -static ./site

Using a database instead of the JSON file:

	go run . -t sqlite -d acadamist.db
	go run . -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 3000)
  - DATA_FILE (-f): JSON data file (default: data.json)
  - STORE_TYPE (-t): json, sqlite or postgres (default: json)
  - DATABASE_URL (-d): SQL connection string
  - STATIC_DIR (-static): Site directory served at /
  - ADMIN_KEY (-admin-key): Required to clear votes when set
  - LOG_LEVEL: "debug" for save logs

A .env file and a YAML file (-config) are also read. See package cliparse.

# Admin Key

	go run . gen-admin-key

prints a fresh random key for ADMIN_KEY.

# Architecture

  - store: the owned state object and its file/SQL backends
  - broadcast: WebSocket hub pushing full-state frames
  - handlers: HTTP request handlers (votes, calendar, socket)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Admin key checks
  - db: SQL schema creation
  - cliparse: Configuration parsing
  - syncclient: Go client that mirrors the page sync behaviour

See package documentation for each component.
*/
package main
