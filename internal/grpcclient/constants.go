// Package grpcclient drives a running instance over the local control service
package grpcclient

import "time"

// Client configuration defaults
const (
	// Keepalive configuration
	DefaultKeepaliveTime    = 10 * time.Second
	DefaultKeepaliveTimeout = 3 * time.Second

	// Health check configuration
	HealthCheckTimeout = 500 * time.Millisecond

	// A capture runs OCR and a translation round trip.
	DefaultCallTimeout = 60 * time.Second
)
