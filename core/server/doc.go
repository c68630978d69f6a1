// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// settings shared by the HTTP layer: listen port, admin API key, the replica id
// used to tag invalidation notices, and the search result limits.
package server
