package deployer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
	"github.com/servefab/servefab/pkg/domain/service"
)

// Backend is the per-flavor extension point of the Deployer: the five
// operations that actually touch the serving infrastructure.
//
// Each method receives and returns the generic Service type so that the
// coordination logic in this package stays backend-agnostic.
type Backend interface {
	// Source is the discriminator this backend's services are persisted
	// under, matching its registry Reviver.
	Source() string

	// DeployModel provisions a brand-new serving resource for config,
	// under the given identity.
	DeployModel(ctx context.Context, id uuid.UUID, config domain.ServiceConfig, timeout time.Duration) (*service.Service, error)

	// StopModel brings the resource of svc down. force tears down even a
	// wedged resource.
	StopModel(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) (*service.Service, error)

	// StartModel brings the (stopped) resource of svc up again.
	StartModel(ctx context.Context, svc *service.Service, timeout time.Duration) (*service.Service, error)

	// DeleteModel removes the external resource entirely.
	DeleteModel(ctx context.Context, svc *service.Service, timeout time.Duration, force bool) error

	// ServerInfo describes the serving infrastructure behind svc
	// (platform version, node, anything the flavor finds useful).
	ServerInfo(svc *service.Service) map[string]string
}
