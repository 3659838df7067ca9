package mock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
	"github.com/servefab/servefab/pkg/domain/deployer"
	mocks "github.com/servefab/servefab/pkg/domain/internal/mocks"
	"github.com/servefab/servefab/pkg/domain/service"
)

type DeployModelArgs struct {
	ID      uuid.UUID
	Config  domain.ServiceConfig
	Timeout time.Duration
}

type StopModelArgs struct {
	Service *service.Service
	Timeout time.Duration
	Force   bool
}

type StartModelArgs struct {
	Service *service.Service
	Timeout time.Duration
}

type DeleteModelArgs struct {
	Service *service.Service
	Timeout time.Duration
	Force   bool
}

// Backend is a hand-written test double for deployer.Backend.
//
// Set the Impl fields your test needs; calls to unset methods panic.
// Source defaults to "mock" when unset.
type Backend struct {
	Impl struct {
		Source      func() string
		DeployModel func(ctx context.Context, id uuid.UUID, config domain.ServiceConfig, timeout time.Duration) (*service.Service, error)
		StopModel   func(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) (*service.Service, error)
		StartModel  func(ctx context.Context, svc *service.Service, timeout time.Duration) (*service.Service, error)
		DeleteModel func(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) error
		ServerInfo  func(svc *service.Service) map[string]string
	}

	Calls struct {
		DeployModel mocks.CallLog[DeployModelArgs]
		StopModel   mocks.CallLog[StopModelArgs]
		StartModel  mocks.CallLog[StartModelArgs]
		DeleteModel mocks.CallLog[DeleteModelArgs]
		ServerInfo  mocks.CallLog[struct{}]
	}
}

func NewBackend() *Backend {
	return &Backend{}
}

var _ deployer.Backend = &Backend{}

func (m *Backend) Source() string {
	if m.Impl.Source != nil {
		return m.Impl.Source()
	}
	return "mock"
}

func (m *Backend) DeployModel(ctx context.Context, id uuid.UUID, config domain.ServiceConfig, timeout time.Duration) (*service.Service, error) {
	m.Calls.DeployModel = append(m.Calls.DeployModel, DeployModelArgs{
		ID: id, Config: config, Timeout: timeout,
	})
	if m.Impl.DeployModel != nil {
		return m.Impl.DeployModel(ctx, id, config, timeout)
	}
	panic(errors.New("it should not be called"))
}

func (m *Backend) StopModel(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) (*service.Service, error) {
	m.Calls.StopModel = append(m.Calls.StopModel, StopModelArgs{
		Service: svc, Timeout: timeout, Force: force,
	})
	if m.Impl.StopModel != nil {
		return m.Impl.StopModel(ctx, svc, timeout, force)
	}
	panic(errors.New("it should not be called"))
}

func (m *Backend) StartModel(ctx context.Context, svc *service.Service, timeout time.Duration) (*service.Service, error) {
	m.Calls.StartModel = append(m.Calls.StartModel, StartModelArgs{
		Service: svc, Timeout: timeout,
	})
	if m.Impl.StartModel != nil {
		return m.Impl.StartModel(ctx, svc, timeout)
	}
	panic(errors.New("it should not be called"))
}

func (m *Backend) DeleteModel(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) error {
	m.Calls.DeleteModel = append(m.Calls.DeleteModel, DeleteModelArgs{
		Service: svc, Timeout: timeout, Force: force,
	})
	if m.Impl.DeleteModel != nil {
		return m.Impl.DeleteModel(ctx, svc, timeout, force)
	}
	panic(errors.New("it should not be called"))
}

func (m *Backend) ServerInfo(svc *service.Service) map[string]string {
	m.Calls.ServerInfo = append(m.Calls.ServerInfo, struct{}{})
	if m.Impl.ServerInfo != nil {
		return m.Impl.ServerInfo(svc)
	}
	panic(errors.New("it should not be called"))
}
