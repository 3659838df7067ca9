// Package deployer coordinates model serving deployments: given a
// desired config it finds or creates the matching service, keeps one
// persistent identity per deployable model, and keeps the store
// synchronized with the status observed on the live resource.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
	modeldb "github.com/servefab/servefab/pkg/domain/model/db"
	"github.com/servefab/servefab/pkg/domain/service"
	svcdb "github.com/servefab/servefab/pkg/domain/service/db"
	"github.com/servefab/servefab/pkg/domain/service/registry"
	xe "github.com/servefab/servefab/pkg/errors"
	"github.com/servefab/servefab/pkg/utils/pointer"
)

// DefaultStartStopTimeout bounds start/stop convergence waits when the
// caller does not say otherwise.
const DefaultStartStopTimeout = 300 * time.Second

// Deployer is the flavor-agnostic coordinator over one Backend.
//
// It is stateless with respect to services: the store owns identity and
// configuration, the live resource owns operational status. Nothing is
// cached in between.
type Deployer struct {
	backend     Backend
	serviceType domain.ServiceType
	store       svcdb.Interface
	models      modeldb.Interface
	registry    *registry.Registry
	logger      *log.Logger
}

type Option func(*Deployer) *Deployer

func WithLogger(l *log.Logger) Option {
	return func(d *Deployer) *Deployer {
		d.logger = l
		return d
	}
}

func New(
	backend Backend,
	serviceType domain.ServiceType,
	store svcdb.Interface,
	models modeldb.Interface,
	reg *registry.Registry,
	options ...Option,
) *Deployer {
	d := &Deployer{
		backend:     backend,
		serviceType: serviceType,
		store:       store,
		models:      models,
		registry:    reg,
		logger:      log.Default(),
	}
	for _, opt := range options {
		d = opt(d)
	}
	return d
}

// Query narrows FindModelServer. Nil fields do not constrain, except
// Type and Flavor: those default to the deployer's own, so that a
// deployer only sees its own services unless asked otherwise.
type Query struct {
	ID               *uuid.UUID
	Running          bool
	Type             *string
	Flavor           *string
	PipelineName     *string
	RunName          *string
	PipelineStepName *string
	ModelName        *string
	ModelVersion     *string
}

// findQuery translates q for the store, resolving model name/version to
// a model version id when the resolver knows it. An unregistered model
// is not an error: the search falls back to the raw name/version fields.
func (d *Deployer) findQuery(ctx context.Context, q Query) (domain.ServiceFindQuery, error) {
	fq := domain.ServiceFindQuery{
		ID:               q.ID,
		Running:          q.Running,
		PipelineName:     q.PipelineName,
		RunName:          q.RunName,
		PipelineStepName: q.PipelineStepName,
		Type:             pointer.Ref(d.serviceType.Type),
		Flavor:           pointer.Ref(d.serviceType.Flavor),
	}
	if q.Type != nil {
		fq.Type = q.Type
	}
	if q.Flavor != nil {
		fq.Flavor = q.Flavor
	}

	if q.ModelName == nil {
		return fq, nil
	}

	version := ""
	if q.ModelVersion != nil {
		version = *q.ModelVersion
	}
	mv, err := d.models.GetModelVersion(ctx, *q.ModelName, version)
	switch {
	case err == nil:
		fq.ModelVersionID = pointer.Ref(mv.ID)
	case errors.Is(err, domain.ErrMissing):
		fq.ModelName = q.ModelName
		fq.ModelVersion = q.ModelVersion
	default:
		return domain.ServiceFindQuery{}, xe.Wrap(err)
	}
	return fq, nil
}

// FindModelServer lists services matching q, newest first, each freshly
// probed.
//
// When the probe disagrees with the stored status, the corrected
// snapshot is written back before returning. The store is a lagging
// cache of operational state, never ground truth.
func (d *Deployer) FindModelServer(ctx context.Context, q Query) ([]*service.Service, error) {
	fq, err := d.findQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	recs, err := d.store.Find(ctx, fq)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	found := []*service.Service{}
	for _, rec := range recs {
		svc, err := d.reviveAndRefresh(ctx, rec)
		if err != nil {
			return nil, err
		}
		found = append(found, svc)
	}
	return found, nil
}

// reviveAndRefresh brings rec back to life, probes it, and corrects the
// stored status when the probe disagrees.
func (d *Deployer) reviveAndRefresh(ctx context.Context, rec domain.ServiceRecord) (*service.Service, error) {
	svc, err := d.registry.Revive(rec)
	if err != nil {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("cannot revive service %s", rec.ID), err,
		)
	}
	svc.UpdateStatus(ctx)

	if snapshot := svc.Snapshot(); !snapshot.Status.Equal(rec.Status) {
		if _, err := d.store.Update(ctx, snapshot); err != nil {
			return nil, xe.WrapWithNote(
				fmt.Sprintf("cannot write back status of service %s", rec.ID), err,
			)
		}
	}
	return svc, nil
}

type deployOptions struct {
	replace bool
	timeout time.Duration
}

type DeployOption func(*deployOptions)

// WithReplace tears down and redeploys an existing service with the
// same identity instead of returning it untouched.
func WithReplace() DeployOption {
	return func(o *deployOptions) { o.replace = true }
}

// WithTimeout overrides DefaultStartStopTimeout for the convergence
// waits of this deployment.
func WithTimeout(t time.Duration) DeployOption {
	return func(o *deployOptions) { o.timeout = t }
}

// DeployModel finds or creates the service serving config.
//
// One deployable identity (pipeline, step, run, model name and version
// under this deployer's type and flavor) keeps one persistent service:
// redeploying with WithReplace tears the old resource down and starts
// the new config under the same id. Without WithReplace an existing
// service is returned as-is and the given config is NOT applied; a
// warning names both versions.
//
// Concurrent deployers racing on the same fresh identity are resolved
// by the store's conditional insert: the loser adopts the winner's
// service.
func (d *Deployer) DeployModel(ctx context.Context, config domain.ServiceConfig, options ...DeployOption) (*service.Service, error) {
	opts := deployOptions{timeout: DefaultStartStopTimeout}
	for _, opt := range options {
		opt(&opts)
	}

	existing, err := d.findByIdentity(ctx, config)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return d.deployOverExisting(ctx, existing, config, opts)
	}

	svc, err := d.deployFresh(ctx, config, opts)
	if err == nil || !errors.Is(err, domain.ErrConflict) {
		return svc, err
	}

	// lost the race for this identity. Adopt the winner's service.
	existing, err = d.findByIdentity(ctx, config)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("deploy of model %s:%s raced and the winner vanished", config.ModelName, config.ModelVersion),
			domain.ErrConflict,
		)
	}
	return d.deployOverExisting(ctx, existing, config, opts)
}

// findByIdentity fetches the newest service with config's deployable
// identity, or nil when there is none.
//
// The identity is pipeline, step, run and model NAME under this
// deployer's type and flavor. The model version is deliberately not
// part of it: one model keeps one persistent service across successive
// versions. The store is queried on the raw name, bypassing the model
// resolver, which would scope the search to a single version.
func (d *Deployer) findByIdentity(ctx context.Context, config domain.ServiceConfig) (*service.Service, error) {
	recs, err := d.store.Find(ctx, domain.ServiceFindQuery{
		PipelineName:     pointer.Ref(config.PipelineName),
		PipelineStepName: pointer.Ref(config.PipelineStepName),
		RunName:          pointer.Ref(config.RunName),
		ModelName:        pointer.Ref(config.ModelName),
		Type:             pointer.Ref(d.serviceType.Type),
		Flavor:           pointer.Ref(d.serviceType.Flavor),
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return d.reviveAndRefresh(ctx, recs[0])
	default:
		// the unique index makes this unreachable, short of a corrupt store
		return nil, xe.WrapWithNote(
			fmt.Sprintf("%d services hold the identity of model %s; repair the store before deploying", len(recs), config.ModelName),
			domain.ErrTooMuch,
		)
	}
}

func (d *Deployer) deployOverExisting(
	ctx context.Context,
	svc *service.Service,
	config domain.ServiceConfig,
	opts deployOptions,
) (*service.Service, error) {
	if !opts.replace {
		d.logger.Printf(
			"service %s already serves model %s:%s; returning it UNCHANGED (requested config for %s:%s is discarded; redeploy with replace to apply it)",
			svc, svc.Config().ModelName, svc.Config().ModelVersion,
			config.ModelName, config.ModelVersion,
		)
		return svc, nil
	}

	id := svc.ID()
	if err := d.backend.DeleteModel(ctx, svc, opts.timeout, true); err != nil {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("cannot tear down service %s for replacement", id), err,
		)
	}
	svc.Update(config)
	svc, err := d.backend.StartModel(ctx, svc, opts.timeout)
	if err != nil {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("cannot restart service %s with its new config", id), err,
		)
	}

	if _, err := d.store.Update(ctx, svc.Snapshot()); err != nil {
		return nil, xe.Wrap(err)
	}
	return svc, nil
}

func (d *Deployer) deployFresh(
	ctx context.Context,
	config domain.ServiceConfig,
	opts deployOptions,
) (*service.Service, error) {
	reg := svcdb.Registration{
		Source: d.backend.Source(),
		Type:   d.serviceType,
		Config: config,
	}
	if config.ModelName != "" {
		mv, err := d.models.GetModelVersion(ctx, config.ModelName, config.ModelVersion)
		switch {
		case err == nil:
			reg.ModelVersionID = pointer.Ref(mv.ID)
		case errors.Is(err, domain.ErrMissing):
			// not registered in the model registry; deploy anyway
		default:
			return nil, xe.Wrap(err)
		}
	}

	rec, err := d.store.Register(ctx, reg)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	svc, err := d.backend.DeployModel(ctx, rec.ID, config, opts.timeout)
	if err != nil {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("cannot deploy model %s:%s as service %s", config.ModelName, config.ModelVersion, rec.ID), err,
		)
	}

	if _, err := d.store.Update(ctx, svc.Snapshot()); err != nil {
		return nil, xe.Wrap(err)
	}
	return svc, nil
}

// revive fetches the record with id and brings it back to life,
// guarding against records deployed by another flavor.
func (d *Deployer) revive(ctx context.Context, id uuid.UUID, op string) (*service.Service, error) {
	rec, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, xe.WrapWithNote(fmt.Sprintf("cannot %s service %s", op, id), err)
	}
	if rec.Type.Type != d.serviceType.Type || rec.Type.Flavor != d.serviceType.Flavor {
		return nil, xe.WrapWithNote(
			fmt.Sprintf(
				"service %s belongs to deployer %s/%s, not %s/%s; use the matching deployer",
				id, rec.Type.Type, rec.Type.Flavor, d.serviceType.Type, d.serviceType.Flavor,
			),
			domain.ErrDeployerMismatch,
		)
	}
	svc, err := d.registry.Revive(rec)
	if err != nil {
		return nil, xe.WrapWithNote(fmt.Sprintf("cannot %s service %s", op, id), err)
	}
	return svc, nil
}

// StopModelServer stops the service with id. Reversible: the record
// stays, StartModelServer brings it back.
func (d *Deployer) StopModelServer(ctx context.Context, id uuid.UUID, timeout time.Duration, force bool) error {
	svc, err := d.revive(ctx, id, "stop")
	if err != nil {
		return err
	}
	svc, err = d.backend.StopModel(ctx, svc, timeout, force)
	if err != nil {
		return xe.WrapWithNote(fmt.Sprintf("cannot stop service %s", id), err)
	}
	if _, err := d.store.Update(ctx, svc.Snapshot()); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// StartModelServer starts the (stopped) service with id.
func (d *Deployer) StartModelServer(ctx context.Context, id uuid.UUID, timeout time.Duration) error {
	svc, err := d.revive(ctx, id, "start")
	if err != nil {
		return err
	}
	svc, err = d.backend.StartModel(ctx, svc, timeout)
	if err != nil {
		return xe.WrapWithNote(fmt.Sprintf("cannot start service %s", id), err)
	}
	if _, err := d.store.Update(ctx, svc.Snapshot()); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// DeleteModelServer tears the service down and removes its record.
// Irreversible: the id never again appears in FindModelServer results.
func (d *Deployer) DeleteModelServer(ctx context.Context, id uuid.UUID, timeout time.Duration, force bool) error {
	svc, err := d.revive(ctx, id, "delete")
	if err != nil {
		return err
	}
	if err := d.backend.DeleteModel(ctx, svc, timeout, force); err != nil {
		return xe.WrapWithNote(fmt.Sprintf("cannot delete service %s", id), err)
	}
	if err := d.store.Delete(ctx, id); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// ModelServerLogs opens the log stream of the service with id.
func (d *Deployer) ModelServerLogs(ctx context.Context, id uuid.UUID, opts service.LogOptions) (io.ReadCloser, error) {
	svc, err := d.revive(ctx, id, "read logs of")
	if err != nil {
		return nil, err
	}
	return svc.Logs(ctx, opts)
}

// ServerInfo describes the infrastructure behind the service with id.
func (d *Deployer) ServerInfo(ctx context.Context, id uuid.UUID) (map[string]string, error) {
	svc, err := d.revive(ctx, id, "describe")
	if err != nil {
		return nil, err
	}
	return d.backend.ServerInfo(svc), nil
}
