// Package config loads runtime configuration for the filevault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. FILEVAULT_SERVER, FILEVAULT_SESSION_DB environment variables.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the filevault server
//	-t string   request timeout ("30s", "1m")
//	-s string   path of the local session database
//	-o string   directory downloads are written to
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "request_timeout": "30s",
//	  "session_db": "filevault-session.db",
//	  "download_dir": "downloads"
//	}
package config
