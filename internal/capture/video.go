package capture

import (
	"context"
	"errors"
)

// Video records for the lifetime of fn: it starts the session, runs fn, and
// always stops the session afterwards.
func Video(ctx context.Context, s *Session, fn func(context.Context) error) error {
	if err := s.Start(); err != nil {
		return err
	}
	var fnErr error
	if fn != nil {
		fnErr = fn(ctx)
	}
	stopErr := s.Stop()
	return errors.Join(fnErr, stopErr)
}
