// Package config loads runtime configuration for the DraftKeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config (json, yaml or toml).
//  3. Environment variables prefixed with DRAFTKEEPER_, e.g.
//     DRAFTKEEPER_PUSH_DELAY=45s.
//  4. Command-line flags registered by BindFlags.
//
// Example file:
//
//	{
//	  "server_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "push_delay": "30s",
//	  "preview_fields": ["clientName", "propertyAddress"]
//	}
package config
