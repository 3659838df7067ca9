package service

import (
	"context"
	"io"

	"github.com/servefab/servefab/pkg/domain"
	xe "github.com/servefab/servefab/pkg/errors"
)

// LogOptions selects which part of a service's log stream to retrieve.
type LogOptions struct {
	// when true, the stream stays open and delivers lines as they are
	// written. Otherwise the stream is finite.
	Follow bool

	// retrieve only the last Tail lines. Negative means everything.
	Tail int
}

// Driver brings up, tears down and observes one concrete external
// resource (a process, a container, a k8s deployment, ...).
//
// The lifecycle engine calls it and owns all state bookkeeping around it;
// drivers only touch the real world.
type Driver interface {
	// Provision brings the external resource up.
	Provision(ctx context.Context) error

	// Deprovision tears the external resource down.
	//
	// With force, tear down even when the resource is in a failed or
	// unknown state.
	Deprovision(ctx context.Context, force bool) error

	// CheckStatus probes the external resource and reports its current
	// operational state with a human-readable message.
	//
	// An error return means the probe itself failed. The engine maps it
	// to the Failed state; it never propagates.
	CheckStatus(ctx context.Context) (domain.ServiceState, string, error)

	// Logs opens the log stream of the external resource.
	Logs(ctx context.Context, opts LogOptions) (io.ReadCloser, error)
}

// UnimplementedDriver fails every operation. Embed it in drivers that
// support only part of the Driver surface.
type UnimplementedDriver struct{}

var _ Driver = UnimplementedDriver{}

func (UnimplementedDriver) Provision(context.Context) error {
	return xe.WrapAsOuter(ErrNotImplemented, 1)
}

func (UnimplementedDriver) Deprovision(context.Context, bool) error {
	return xe.WrapAsOuter(ErrNotImplemented, 1)
}

func (UnimplementedDriver) CheckStatus(context.Context) (domain.ServiceState, string, error) {
	return domain.Errored, "", xe.WrapAsOuter(ErrNotImplemented, 1)
}

func (UnimplementedDriver) Logs(context.Context, LogOptions) (io.ReadCloser, error) {
	return nil, xe.WrapAsOuter(ErrNotImplemented, 1)
}
