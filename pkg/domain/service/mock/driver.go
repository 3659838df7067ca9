package mock

import (
	"context"
	"errors"
	"io"

	"github.com/servefab/servefab/pkg/domain"
	mocks "github.com/servefab/servefab/pkg/domain/internal/mocks"
	"github.com/servefab/servefab/pkg/domain/service"
)

// Driver is a hand-written test double for service.Driver.
//
// Set the Impl fields your test needs; calls to unset methods panic.
type Driver struct {
	Impl struct {
		Provision   func(ctx context.Context) error
		Deprovision func(ctx context.Context, force bool) error
		CheckStatus func(ctx context.Context) (domain.ServiceState, string, error)
		Logs        func(ctx context.Context, opts service.LogOptions) (io.ReadCloser, error)
	}

	Calls struct {
		Provision   mocks.CallLog[struct{}]
		Deprovision mocks.CallLog[bool]
		CheckStatus mocks.CallLog[struct{}]
		Logs        mocks.CallLog[service.LogOptions]
	}
}

func NewDriver() *Driver {
	return &Driver{}
}

var _ service.Driver = &Driver{}

func (m *Driver) Provision(ctx context.Context) error {
	m.Calls.Provision = append(m.Calls.Provision, struct{}{})
	if m.Impl.Provision != nil {
		return m.Impl.Provision(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *Driver) Deprovision(ctx context.Context, force bool) error {
	m.Calls.Deprovision = append(m.Calls.Deprovision, force)
	if m.Impl.Deprovision != nil {
		return m.Impl.Deprovision(ctx, force)
	}
	panic(errors.New("it should not be called"))
}

func (m *Driver) CheckStatus(ctx context.Context) (domain.ServiceState, string, error) {
	m.Calls.CheckStatus = append(m.Calls.CheckStatus, struct{}{})
	if m.Impl.CheckStatus != nil {
		return m.Impl.CheckStatus(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *Driver) Logs(ctx context.Context, opts service.LogOptions) (io.ReadCloser, error) {
	m.Calls.Logs = append(m.Calls.Logs, opts)
	if m.Impl.Logs != nil {
		return m.Impl.Logs(ctx, opts)
	}
	panic(errors.New("it should not be called"))
}

// StubDriver is a Driver canned to behave like a well-running resource:
// Provision/Deprovision succeed and CheckStatus echoes the state it was
// last driven to. Handy where the test cares about the engine, not the
// probe sequence.
func StubDriver() *Driver {
	d := NewDriver()
	state := domain.Inactive

	d.Impl.Provision = func(context.Context) error {
		state = domain.Running
		return nil
	}
	d.Impl.Deprovision = func(_ context.Context, _ bool) error {
		state = domain.Inactive
		return nil
	}
	d.Impl.CheckStatus = func(context.Context) (domain.ServiceState, string, error) {
		return state, "", nil
	}
	return d
}
