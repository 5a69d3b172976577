// Package server provides the panel's HTTP and WebSocket handlers
package server

import "time"

// Server configuration constants
const (
	// Per-connection sliding window for WebSocket commands
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// Timeout for a single push to a slow WebSocket client
	WriteTimeout = 5 * time.Second

	// Upper bound on /translate.json and WebSocket translate commands
	TranslateTimeout = 30 * time.Second

	// Longest origin text accepted from the panel, in bytes
	MaxOriginBytes = 4096
)
