// Package integrity provides operational health checks.
//
// Unlike the readiness reported on /health, which only says whether searches are
// served, these checks explain why a deployment may misbehave.
//
// # Checks Provided
//
//   - Schema: Validates that the tables and columns read by the index exist.
//   - Defaults: Verifies the global attribute defaults row that ends every inheritance walk.
//   - Storage: Checks the image bucket and the thumbnail folder (supports ?fix=true).
//   - Thumbnails: Lists foods without a thumbnail and thumbnails without a food.
//
// # HTTP Endpoints
//
//   - GET /api/admin/integrity : Runs all checks.
//   - GET /api/admin/integrity/schema
//   - GET /api/admin/integrity/defaults
//   - GET /api/admin/integrity/storage
//   - GET /api/admin/integrity/thumbnails
package integrity
