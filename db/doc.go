// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL store backends.

# Schema Creation

CreateSchema initializes the document table for a dialect:

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - document: the whole shared-state JSON document, keyed by name

The state is never split across rows. Every save replaces the single
DocumentName row, mirroring the flat-file backend.
*/
package db
