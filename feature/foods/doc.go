// Package foods serves food search over HTTP and MCP.
//
// A search goes to the index gateway with a widened limit, the hits are
// filtered by their inherited "use in recipes" attribute, the survivors get
// thumbnail URLs from the object store, and the list is cut to the requested
// limit. Admin routes rebuild the local index or record an invalidation for
// every replica.
package foods
