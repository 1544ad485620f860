package main

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// shutdowner is anything with a context-bounded Shutdown: the HTTP server
// and the telemetry providers.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup builds the shutdown hook: drain the server, close the store,
// then flush telemetry so the shutdown itself is still logged and traced.
// Every step runs even if an earlier one failed.
func newCleanup(server shutdowner, store io.Closer, telemetry shutdowner) func(context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
			}
		}
		if store != nil {
			if err := store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close store: %w", err))
			}
		}
		if telemetry != nil {
			if err := telemetry.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to shut down telemetry: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
