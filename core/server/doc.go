// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this
// package defines the configuration structure for server settings: the
// listen port and the API key guarding the endpoints.
//
// # Usage
//
// This package is primarily used by the core/config package to embed
// server settings and by the auth middleware to enforce the API key.
package server
