package index

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexNotReady is returned by Search before the first successful build
	// and after a failed rebuild.
	ErrIndexNotReady = errors.New("food index is not ready")
	// ErrGatewayClosed is returned to calls pending when the gateway closes.
	ErrGatewayClosed = errors.New("food index gateway closed")
	// ErrWorkerExited is returned to pending calls when the worker connection ends unexpectedly.
	ErrWorkerExited = errors.New("food index worker exited")
	// ErrCallTimeout is returned when the worker does not reply in time.
	ErrCallTimeout = errors.New("food index call timed out")
	// ErrUnknownLocale is returned for locale ids that do not exist.
	ErrUnknownLocale = errors.New("unknown locale")
)

// RebuildError reports a rebuild the worker could not complete.
type RebuildError struct {
	BuildID uint64
	Locales []string
	Msg     string
}

func (e *RebuildError) Error() string {
	scope := "all locales"
	if len(e.Locales) > 0 {
		scope = strings.Join(e.Locales, ",")
	}
	return fmt.Sprintf("rebuild %d (%s) failed: %s", e.BuildID, scope, e.Msg)
}

// RemoteError is a query failure reported by the worker.
type RemoteError struct {
	QueryID uint64
	Msg     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("query %d failed: %s", e.QueryID, e.Msg)
}
