// Package utils provides small helpers shared by the feature packages:
// loose conversions for query strings and MCP tool arguments, and the
// numeric-aware ordering of record ids.
package utils
