package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceState is the operational (or desired) state of a service.
type ServiceState string

const (
	// The service is not running.
	Inactive ServiceState = "inactive"

	// The service is being brought up and is not serving yet.
	Initializing ServiceState = "initializing"

	// The service is up and serving.
	Running ServiceState = "running"

	// The service is being shut down.
	Terminating ServiceState = "terminating"

	// The service stopped with an error, or an operation on it failed.
	Failed ServiceState = "failed"

	// The state of the service could not be determined.
	Errored ServiceState = "error"
)

func (s ServiceState) String() string {
	return string(s)
}

func AsServiceState(state string) (ServiceState, error) {
	switch state {
	case string(Inactive):
		return Inactive, nil
	case string(Initializing):
		return Initializing, nil
	case string(Running):
		return Running, nil
	case string(Terminating):
		return Terminating, nil
	case string(Failed):
		return Failed, nil
	case string(Errored):
		return Errored, nil
	default:
		return "", fmt.Errorf("'%s' is not ServiceState", state)
	}
}

// Transitional states settle into Running or Inactive eventually.
func (s ServiceState) Transitional() bool {
	switch s {
	case Initializing, Terminating:
		return true
	default:
		return false
	}
}

// ServiceStatus is the last observed operational state of a service,
// together with the message of the last error (if any).
//
// Mutate it only through Update, so that every transition is a single
// observable step.
type ServiceStatus struct {
	State     ServiceState `json:"state"`
	LastError string       `json:"lastError"`
}

func (s *ServiceStatus) Update(state ServiceState, lastError string) {
	s.State = state
	s.LastError = lastError
}

func (s ServiceStatus) Equal(o ServiceStatus) bool {
	return s.State == o.State && s.LastError == o.LastError
}

// ServiceType identifies a family of service implementations.
// Create one per service flavor, once, and never mutate it.
type ServiceType struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Flavor      string `json:"flavor"`
	Description string `json:"description"`
}

func (t ServiceType) Equal(o ServiceType) bool {
	return t.Name == o.Name &&
		t.Type == o.Type &&
		t.Flavor == o.Flavor &&
		t.Description == o.Description
}

func (t ServiceType) String() string {
	return fmt.Sprintf("%s/%s", t.Type, t.Flavor)
}

// ServerConfig holds the HTTP-server facing knobs of a model server.
type ServerConfig struct {
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
	Workers int    `json:"workers,omitempty"`

	// paths of the TLS key/cert pair. Empty means plain HTTP.
	TLSCertFile string `json:"tlsCertFile,omitempty"`
	TLSKeyFile  string `json:"tlsKeyFile,omitempty"`
}

// ServiceConfig describes what was requested of a service: who asked for
// it (pipeline, step, run) and what it should serve (model identity).
//
// Treat values as immutable snapshots. "Updating" a config means building
// a new value and replacing the whole thing.
type ServiceConfig struct {
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	PipelineName     string       `json:"pipelineName,omitempty"`
	PipelineStepName string       `json:"pipelineStepName,omitempty"`
	RunName          string       `json:"runName,omitempty"`
	ModelName        string       `json:"modelName,omitempty"`
	ModelVersion     string       `json:"modelVersion,omitempty"`
	Server           ServerConfig `json:"server,omitempty"`
}

func (c ServiceConfig) Equal(o ServiceConfig) bool {
	return c == o
}

// Labels derives the identity labels of this config, suitable for
// tagging external resources (container labels, k8s annotations, ...).
func (c ServiceConfig) Labels() map[string]string {
	return map[string]string{
		"SERVEFAB_NAME":               c.Name,
		"SERVEFAB_PIPELINE_NAME":      c.PipelineName,
		"SERVEFAB_PIPELINE_STEP_NAME": c.PipelineStepName,
		"SERVEFAB_RUN_NAME":           c.RunName,
		"SERVEFAB_MODEL_NAME":         c.ModelName,
		"SERVEFAB_MODEL_VERSION":      c.ModelVersion,
	}
}

type MonitorKind string

const (
	MonitorNone MonitorKind = ""
	MonitorHTTP MonitorKind = "http"
	MonitorTCP  MonitorKind = "tcp"
)

// MonitorSpec selects and parametrizes the health monitor of an endpoint.
type MonitorSpec struct {
	Kind MonitorKind `json:"kind,omitempty"`

	// health check path, for Kind == MonitorHTTP. Defaults to "/health".
	Path string `json:"path,omitempty"`

	// HTTP status treated as healthy. Zero means any 2xx.
	HealthyStatus int `json:"healthyStatus,omitempty"`

	// per-probe timeout. Zero means the monitor's default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ServiceEndpoint is the network-reachability facet of a service.
type ServiceEndpoint struct {
	Protocol string      `json:"protocol,omitempty"` // "http" or "https". Default "http".
	Host     string      `json:"host"`
	Port     int         `json:"port"`
	BasePath string      `json:"basePath,omitempty"`
	Monitor  MonitorSpec `json:"monitor,omitempty"`
}

func (ep ServiceEndpoint) protocol() string {
	if ep.Protocol == "" {
		return "http"
	}
	return ep.Protocol
}

// URL is the base URL of the endpoint (where predictions are served).
func (ep ServiceEndpoint) URL() string {
	base := fmt.Sprintf("%s://%s:%d", ep.protocol(), ep.Host, ep.Port)
	if ep.BasePath == "" {
		return base
	}
	return base + "/" + strings.TrimPrefix(ep.BasePath, "/")
}

// HealthURL is the URL probed by the HTTP health monitor.
// Empty when the endpoint has no HTTP monitor.
func (ep ServiceEndpoint) HealthURL() string {
	if ep.Monitor.Kind != MonitorHTTP {
		return ""
	}
	path := ep.Monitor.Path
	if path == "" {
		path = "/health"
	}
	return fmt.Sprintf(
		"%s://%s:%d/%s",
		ep.protocol(), ep.Host, ep.Port, strings.TrimPrefix(path, "/"),
	)
}

func (ep ServiceEndpoint) Equal(o ServiceEndpoint) bool {
	return ep == o
}

/// ServiceRecord is the persisted shape of a service: everything the store
// needs to give the record back to the right implementation (Source) and
// to answer find queries without touching the live resource.
//
// AdminState is what the operator asked for. Status is the last probed
// fact. They are reconciled, never assumed equal.
type ServiceRecord struct {
	ID             uuid.UUID
	Name           string
	Source         string
	Type           ServiceType
	AdminState     ServiceState
	Config         ServiceConfig
	Status         ServiceStatus
	Endpoint       *ServiceEndpoint
	PredictionURL  string
	HealthCheckURL string
	ModelVersionID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r ServiceRecord) Equal(o ServiceRecord) bool {
	if (r.Endpoint == nil) != (o.Endpoint == nil) {
		return false
	}
	if r.Endpoint != nil && !r.Endpoint.Equal(*o.Endpoint) {
		return false
	}
	if (r.ModelVersionID == nil) != (o.ModelVersionID == nil) {
		return false
	}
	if r.ModelVersionID != nil && *r.ModelVersionID != *o.ModelVersionID {
		return false
	}
	return r.ID == o.ID &&
		r.Name == o.Name &&
		r.Source == o.Source &&
		r.Type.Equal(o.Type) &&
		r.AdminState == o.AdminState &&
		r.Config.Equal(o.Config) &&
		r.Status.Equal(o.Status) &&
		r.PredictionURL == o.PredictionURL &&
		r.HealthCheckURL == o.HealthCheckURL &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.UpdatedAt.Equal(o.UpdatedAt)
}

// ServiceFindQuery narrows service lookups. Nil (or false) fields do not
// narrow results. Matches are returned newest-created-first.
type ServiceFindQuery struct {
	ID *uuid.UUID

	// when true, only services whose recorded status is Running.
	Running bool

	PipelineName     *string
	RunName          *string
	PipelineStepName *string
	ModelName        *string
	ModelVersion     *string
	ModelVersionID   *uuid.UUID
	Type             *string
	Flavor           *string
}

func (q ServiceFindQuery) Equal(o ServiceFindQuery) bool {
	return eqPtr(q.ID, o.ID) &&
		q.Running == o.Running &&
		eqPtr(q.PipelineName, o.PipelineName) &&
		eqPtr(q.RunName, o.RunName) &&
		eqPtr(q.PipelineStepName, o.PipelineStepName) &&
		eqPtr(q.ModelName, o.ModelName) &&
		eqPtr(q.ModelVersion, o.ModelVersion) &&
		eqPtr(q.ModelVersionID, o.ModelVersionID) &&
		eqPtr(q.Type, o.Type) &&
		eqPtr(q.Flavor, o.Flavor)
}

func eqPtr[T comparable](a, b *T) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
