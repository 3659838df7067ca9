package service

import (
	"context"
	"io"
	"time"

	"github.com/servefab/servefab/pkg/domain"
	xe "github.com/servefab/servefab/pkg/errors"
	"github.com/servefab/servefab/pkg/loop"
)

// transition brackets op between a pre and a post status.
//
// The pre status is applied before op runs. On success the post status is
// applied; on failure the status becomes Failed with the error message
// recorded, and the error is returned to the caller as well. Recording
// and returning both happen: the error is never swallowed.
func (s *Service) transition(
	ctx context.Context,
	pre domain.ServiceState,
	post domain.ServiceState,
	op func(context.Context) error,
) error {
	s.setStatus(pre, "")
	if err := op(ctx); err != nil {
		s.setStatus(domain.Failed, err.Error())
		return xe.Wrap(err)
	}
	s.setStatus(post, "")
	return nil
}

// Start requests the service to run: AdminState becomes Running and the
// driver provisions the external resource.
//
// With timeout > 0, Start then waits (per Await) for the observed state
// to converge, and logs a diagnostic when it does not in time. The
// timeout elapsing is not an error; callers wanting certainty re-check
// the status.
//
// With timeout == 0, Start returns right after provisioning.
func (s *Service) Start(ctx context.Context, timeout time.Duration) error {
	err := s.transition(
		ctx, domain.Initializing, domain.Running,
		func(ctx context.Context) error {
			s.setAdminState(domain.Running)
			return s.driver.Provision(ctx)
		},
	)
	if err != nil {
		return err
	}

	if timeout > 0 {
		if !s.Await(ctx, timeout) {
			s.logger.Printf("failed to start service %s\n%s", s, s.StatusMessage())
		}
	}
	return nil
}

// Stop requests the service to stop: AdminState becomes Inactive and the
// driver deprovisions the external resource.
//
// force deprovisions even a failed or wedged resource. Timeout semantics
// are those of Start.
func (s *Service) Stop(ctx context.Context, timeout time.Duration, force bool) error {
	err := s.transition(
		ctx, domain.Terminating, domain.Inactive,
		func(ctx context.Context) error {
			s.setAdminState(domain.Inactive)
			return s.driver.Deprovision(ctx, force)
		},
	)
	if err != nil {
		return err
	}

	if timeout > 0 {
		s.Await(ctx, timeout)
		if !s.IsStopped(ctx) {
			s.logger.Printf(
				"failed to stop service %s. Last state: '%s'. Last error: '%s'",
				s, s.Status().State, s.Status().LastError,
			)
		}
	}
	return nil
}

// UpdateStatus probes the external resource and overwrites Status with
// the result.
//
// A failure of the probe itself is recorded as the Failed state with the
// error message; it never escapes. When the probed state is Inactive the
// endpoint is not checked (an inactive service has no meaningful
// endpoint).
func (s *Service) UpdateStatus(ctx context.Context) {
	state, msg, err := s.driver.CheckStatus(ctx)
	if err != nil {
		s.logger.Printf("failed to update status for service %s: %v", s, err)
		s.setStatus(domain.Failed, err.Error())
		return
	}
	s.setStatus(state, msg)

	if state == domain.Inactive {
		return
	}

	if s.endpoint != nil && s.monitor != nil {
		epState, _, epErr := s.monitor.Check(ctx, *s.endpoint)
		if epErr != nil {
			epState = domain.Errored
		}
		s.mu.Lock()
		s.endpointState = epState
		s.mu.Unlock()
	}
}

// IsRunning probes the resource afresh, then reports whether it is
// running, with the endpoint (when there is one) answering.
func (s *Service) IsRunning(ctx context.Context) bool {
	s.UpdateStatus(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != domain.Running {
		return false
	}
	// an unmonitored endpoint cannot be judged; trust the resource probe.
	return s.endpoint == nil || s.monitor == nil || s.endpointState == domain.Running
}

// IsStopped probes the resource afresh, then reports whether it is inactive.
func (s *Service) IsStopped(ctx context.Context) bool {
	s.UpdateStatus(ctx)
	return s.Status().State == domain.Inactive
}

// IsFailed probes the resource afresh, then reports whether it is failed.
func (s *Service) IsFailed(ctx context.Context) bool {
	s.UpdateStatus(ctx)
	return s.Status().State == domain.Failed
}

// Await polls the external service until its observed state matches
// AdminState, a Failed state is observed, or the timeout elapses.
//
// Every tick re-probes the live resource; no cached status is reused.
// It returns true the moment observed and desired states match. With
// timeout == 0 it returns true immediately ("fire and forget" -- the
// caller checks status separately). On timeout or a Failed observation
// it logs the full status block and returns false.
func (s *Service) Await(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}

	deadline := time.Now().Add(timeout)
	converged, _ := loop.Start(
		ctx, false,
		func(ctx context.Context, _ bool) (bool, loop.Next) {
			switch s.AdminState() {
			case domain.Running:
				if s.IsRunning(ctx) {
					return true, loop.Break(nil)
				}
			case domain.Inactive:
				if s.IsStopped(ctx) {
					return true, loop.Break(nil)
				}
			}
			if s.Status().State == domain.Failed {
				return false, loop.Break(nil)
			}
			if !time.Now().Before(deadline) {
				return false, loop.Break(nil)
			}
			return false, loop.Continue(s.tick)
		},
	)

	if !converged {
		outcome := "gave up"
		if s.Status().State.Transitional() {
			outcome = "timed out while still settling"
		}
		s.logger.Printf(
			"%s waiting for service %s to become %s:\n%s",
			outcome, s, s.AdminState(), s.StatusMessage(),
		)
	}
	return converged
}

// Logs opens the log stream of the external resource.
func (s *Service) Logs(ctx context.Context, opts LogOptions) (io.ReadCloser, error) {
	rc, err := s.driver.Logs(ctx, opts)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return rc, nil
}
