// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards the administrative endpoints.

# Admin Key

Clearing votes is open to everyone unless an admin key is configured
(ADMIN_KEY or -admin-key). When one is set, requests must carry it:

	X-Admin-Key: <key>

	err := auth.ValidateAdminKey(auth.RequestAdminKey(r), cfg.AdminKey)

Keys are compared in constant time.

# Generating Keys

	key, err := auth.GenerateAdminKey()

Keys are random 24-byte secrets, URL-safe base64 encoded without padding.
The server binary prints one with its gen-admin-key subcommand.
*/
package auth
