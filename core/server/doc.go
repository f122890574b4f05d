// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key checked by the auth
// middleware, and the dashboard origin allowed by CORS.
//
// # Usage
//
// This package is embedded by core/config and read by the start command when it
// builds the fiber app.
package server
