package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
	"github.com/servefab/servefab/pkg/domain/service/monitor"
)

// ErrNotImplemented is returned by lifecycle operations whose driver does
// not support them.
var ErrNotImplemented = errors.New("not implemented")

// Service is the in-process representation of one externally-running
// resource (model server, daemon, ...): a state machine over two states
// of different nature.
//
// AdminState is the request: what the operator asked for (Running or
// Inactive). Status is the fact: what the external resource was last
// observed to be. The engine drives fact toward request and never assumes
// they match.
type Service struct {
	mu sync.Mutex

	id         uuid.UUID
	source     string
	tipe       domain.ServiceType
	adminState domain.ServiceState
	config     domain.ServiceConfig
	status     domain.ServiceStatus
	endpoint   *domain.ServiceEndpoint

	// last observed endpoint health. Meaningful only while status is not
	// Inactive.
	endpointState domain.ServiceState

	// baseline carries persisted fields the engine does not own
	// (CreatedAt, ModelVersionID, ...) through Snapshot unchanged.
	baseline domain.ServiceRecord

	driver  Driver
	monitor monitor.Monitor
	logger  *log.Logger

	// polling granularity of Await. 1s unless overridden.
	tick time.Duration
}

type Option func(*Service) *Service

func WithEndpoint(ep domain.ServiceEndpoint) Option {
	return func(s *Service) *Service {
		s.endpoint = &ep
		return s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) *Service {
		s.logger = l
		return s
	}
}

// WithMonitor overrides the endpoint health monitor derived from the
// endpoint's MonitorSpec.
func WithMonitor(m monitor.Monitor) Option {
	return func(s *Service) *Service {
		s.monitor = m
		return s
	}
}

// WithTick overrides the 1-second polling granularity of Await.
func WithTick(d time.Duration) Option {
	return func(s *Service) *Service {
		s.tick = d
		return s
	}
}

// New creates a fresh, not yet provisioned Service (AdminState and Status
// both Inactive).
//
// Args
//
// - id: identity of the service, assigned by the store.
//
// - source: discriminator of the concrete implementation, as understood
// by the revival registry.
//
// - serviceType: type descriptor of the implementation family.
//
// - config: what was requested of the service.
//
// - driver: the concrete backend operations.
func New(
	id uuid.UUID,
	source string,
	serviceType domain.ServiceType,
	config domain.ServiceConfig,
	driver Driver,
	options ...Option,
) *Service {
	if config.Name == "" {
		config.Name = fmt.Sprintf(
			"%s-%s", serviceType.Flavor, time.Now().Format("20060102150405"),
		)
	}

	s := &Service{
		id:         id,
		source:     source,
		tipe:       serviceType,
		adminState: domain.Inactive,
		config:     config,
		status:     domain.ServiceStatus{State: domain.Inactive},
		baseline:   domain.ServiceRecord{ID: id},
		driver:     driver,
		logger:     log.Default(),
		tick:       time.Second,
	}
	for _, opt := range options {
		s = opt(s)
	}
	if s.monitor == nil && s.endpoint != nil {
		s.monitor = monitor.ForSpec(s.endpoint.Monitor)
	}
	return s
}

// FromRecord revives a Service from its persisted record. Used by
// registry revivers after they have constructed the matching driver.
func FromRecord(rec domain.ServiceRecord, driver Driver, options ...Option) *Service {
	s := &Service{
		id:         rec.ID,
		source:     rec.Source,
		tipe:       rec.Type,
		adminState: rec.AdminState,
		config:     rec.Config,
		status:     rec.Status,
		baseline:   rec,
		driver:     driver,
		logger:     log.Default(),
		tick:       time.Second,
	}
	if rec.Endpoint != nil {
		ep := *rec.Endpoint
		s.endpoint = &ep
	}
	for _, opt := range options {
		s = opt(s)
	}
	if s.monitor == nil && s.endpoint != nil {
		s.monitor = monitor.ForSpec(s.endpoint.Monitor)
	}
	return s
}

func (s *Service) ID() uuid.UUID {
	return s.id
}

func (s *Service) Source() string {
	return s.source
}

func (s *Service) Type() domain.ServiceType {
	return s.tipe
}

func (s *Service) AdminState() domain.ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminState
}

func (s *Service) Config() domain.ServiceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Service) Status() domain.ServiceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) Endpoint() *domain.ServiceEndpoint {
	if s.endpoint == nil {
		return nil
	}
	ep := *s.endpoint
	return &ep
}

// Update replaces the configuration snapshot wholesale.
//
// It does not touch the external resource. To apply the new config to a
// running resource, Stop and Start it.
func (s *Service) Update(config domain.ServiceConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// PredictionURL is where the service answers prediction requests, or ""
// when it has no endpoint.
func (s *Service) PredictionURL() string {
	if s.endpoint == nil {
		return ""
	}
	return s.endpoint.URL()
}

// HealthCheckURL is the URL probed by the endpoint's HTTP health monitor,
// or "" when there is none.
func (s *Service) HealthCheckURL() string {
	if s.endpoint == nil {
		return ""
	}
	return s.endpoint.HealthURL()
}

// Snapshot renders the current in-memory state as the record to persist.
// Fields the engine does not own are carried over from the record the
// service was revived from.
func (s *Service) Snapshot() domain.ServiceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.baseline
	rec.ID = s.id
	rec.Name = s.config.Name
	rec.Source = s.source
	rec.Type = s.tipe
	rec.AdminState = s.adminState
	rec.Config = s.config
	rec.Status = s.status
	if s.endpoint != nil {
		ep := *s.endpoint
		rec.Endpoint = &ep
		rec.PredictionURL = ep.URL()
		rec.HealthCheckURL = ep.HealthURL()
	} else {
		rec.Endpoint = nil
		rec.PredictionURL = ""
		rec.HealthCheckURL = ""
	}
	return rec
}

// StatusMessage renders the current states for diagnostics.
func (s *Service) StatusMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf(
		"  Administrative state: `%s`\n  Operational state: `%s`\n  Last status message: '%s'\n",
		s.adminState, s.status.State, s.status.LastError,
	)
}

func (s *Service) String() string {
	return fmt.Sprintf("%s[%s] (type: %s, flavor: %s)", s.config.Name, s.id, s.tipe.Type, s.tipe.Flavor)
}

func (s *Service) setStatus(state domain.ServiceState, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Update(state, lastError)
}

func (s *Service) setAdminState(state domain.ServiceState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminState = state
}
