// Package config loads runtime configuration for the PaperSwipe CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are decoded as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the library gRPC endpoint
//	-d string   path of the local SQLite database
//	-b int      feed batch size
//	-t string   default browse topic
//	-l string   log level (debug, info, warn, error)
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds. Keys that are absent keep their previous value:
//
//	server_endpoint_addr: 127.0.0.1:50051
//	database_path: paperswipe.db
//	arxiv_endpoint: https://export.arxiv.org/api/query
//	request_interval: 3s
//	request_timeout: 30s
//	batch_size: 20
//	prefetch_threshold: 5
//	default_topic: cs.AI
//	log_level: info
//	log_file: paperswipe.log
package config
