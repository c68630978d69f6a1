// Package middleware groups the HTTP middleware of the Fiber application.
//
// # Components
//
//   - auth: API key validation for the admin and search API. Health and metrics
//     paths can be skipped.
//   - rayid: assigns every request a ray id, stored in locals under "ray_id" and
//     echoed in the X-Ray-ID response header. logger.WithRayID reads it.
package middleware
