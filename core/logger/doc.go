// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so every line written while serving a search request can be correlated.
// Long-lived components (index gateway, index worker, invalidation bus) tag their
// lines with Component instead.
//
// # Worker Process
//
// When the index worker runs as a child process its stdout is the protocol channel,
// so NewWorker builds a JSON logger that writes to stderr only.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Search failed", zap.Error(err))
package logger
