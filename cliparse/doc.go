// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DataFile: JSON data file for the json store (default: data.json)
  - StoreType: json, sqlite or postgres (default: json)
  - DatabaseURL: SQL connection string (sqlite default: acadamist.db)
  - StaticDir: Site directory served at / (default: none)
  - AdminKey: Required X-Admin-Key for clearing votes (default: none, open)

# CLI Flags

	-p           Server port
	-f           Data file
	-t           Store type
	-d           Database URL
	-static      Static site directory
	-admin-key   Admin key
	-config      YAML config file
	-env-file    dotenv file (default: .env)

# Sources

Values are resolved in this order, first match wins:

 1. CLI flags
 2. Environment variables (PORT, DATA_FILE, STORE_TYPE, DATABASE_URL,
    STATIC_DIR, ADMIN_KEY), including those loaded from the dotenv file
 3. The YAML config file (-config or CONFIG_FILE)
 4. Defaults

The dotenv file never overrides variables already set in the environment.

# Config File

	port: 3000
	data_file: /var/lib/acadamist/data.json
	store_type: json
	static_dir: ./site
	admin_key: change-me

# Validation

ParseFlags returns an error when:

  - PORT is not a number or is out of range
  - STORE_TYPE is unknown
  - STORE_TYPE is postgres and no DATABASE_URL is set
*/
package cliparse
