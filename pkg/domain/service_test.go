package domain_test

import (
	"testing"

	"github.com/servefab/servefab/pkg/domain"
	"github.com/servefab/servefab/pkg/utils/cmp"
)

func TestAsServiceState(t *testing.T) {
	for _, state := range []domain.ServiceState{
		domain.Inactive, domain.Initializing, domain.Running,
		domain.Terminating, domain.Failed, domain.Errored,
	} {
		t.Run("it parses "+state.String(), func(t *testing.T) {
			actual, err := domain.AsServiceState(state.String())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != state {
				t.Errorf("state: actual=%s, expect=%s", actual, state)
			}
		})
	}

	t.Run("it rejects unknown state names", func(t *testing.T) {
		if _, err := domain.AsServiceState("paused"); err == nil {
			t.Error("no error for unknown state")
		}
	})
}

func TestServiceStatus_Update(t *testing.T) {
	status := domain.ServiceStatus{State: domain.Inactive}

	status.Update(domain.Failed, "connection refused")

	if status.State != domain.Failed {
		t.Errorf("state: actual=%s, expect=%s", status.State, domain.Failed)
	}
	if status.LastError != "connection refused" {
		t.Errorf("lastError: actual=%q, expect=%q", status.LastError, "connection refused")
	}

	// clearing the error is part of the same single step
	status.Update(domain.Running, "")
	if status.LastError != "" {
		t.Errorf("lastError should be overwritten, got %q", status.LastError)
	}
}

func TestServiceEndpoint_URL(t *testing.T) {
	type When struct {
		endpoint domain.ServiceEndpoint
	}
	type Then struct {
		url       string
		healthURL string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			if actual := when.endpoint.URL(); actual != then.url {
				t.Errorf("URL: actual=%q, expect=%q", actual, then.url)
			}
			if actual := when.endpoint.HealthURL(); actual != then.healthURL {
				t.Errorf("HealthURL: actual=%q, expect=%q", actual, then.healthURL)
			}
		}
	}

	t.Run("plain http endpoint with http monitor", theory(
		When{
			endpoint: domain.ServiceEndpoint{
				Host: "localhost", Port: 8080,
				Monitor: domain.MonitorSpec{Kind: domain.MonitorHTTP},
			},
		},
		Then{
			url:       "http://localhost:8080",
			healthURL: "http://localhost:8080/health",
		},
	))

	t.Run("https endpoint with base path and custom health path", theory(
		When{
			endpoint: domain.ServiceEndpoint{
				Protocol: "https", Host: "models.example.com", Port: 443,
				BasePath: "/v1/predict",
				Monitor: domain.MonitorSpec{
					Kind: domain.MonitorHTTP, Path: "healthz",
				},
			},
		},
		Then{
			url:       "https://models.example.com:443/v1/predict",
			healthURL: "https://models.example.com:443/healthz",
		},
	))

	t.Run("tcp-monitored endpoint has no health URL", theory(
		When{
			endpoint: domain.ServiceEndpoint{
				Host: "localhost", Port: 9000,
				Monitor: domain.MonitorSpec{Kind: domain.MonitorTCP},
			},
		},
		Then{
			url:       "http://localhost:9000",
			healthURL: "",
		},
	))
}

func TestServiceConfig_Labels(t *testing.T) {
	config := domain.ServiceConfig{
		Name:             "iris-clf-server",
		PipelineName:     "training-pipeline",
		PipelineStepName: "deploy-step",
		RunName:          "run-2024-01-01",
		ModelName:        "iris-clf",
		ModelVersion:     "1",
	}

	labels := config.Labels()

	expected := map[string]string{
		"SERVEFAB_NAME":               "iris-clf-server",
		"SERVEFAB_PIPELINE_NAME":      "training-pipeline",
		"SERVEFAB_PIPELINE_STEP_NAME": "deploy-step",
		"SERVEFAB_RUN_NAME":           "run-2024-01-01",
		"SERVEFAB_MODEL_NAME":         "iris-clf",
		"SERVEFAB_MODEL_VERSION":      "1",
	}
	if !cmp.MapEq(labels, expected) {
		t.Errorf("labels: actual=%v, expect=%v", labels, expected)
	}
}

func TestServiceState_Transitional(t *testing.T) {
	theory := func(state domain.ServiceState, then bool) func(*testing.T) {
		return func(t *testing.T) {
			if actual := state.Transitional(); actual != then {
				t.Errorf("%s.Transitional(): actual=%v, expect=%v", state, actual, then)
			}
		}
	}

	t.Run("initializing settles eventually", theory(domain.Initializing, true))
	t.Run("terminating settles eventually", theory(domain.Terminating, true))
	t.Run("inactive is settled", theory(domain.Inactive, false))
	t.Run("running is settled", theory(domain.Running, false))
	t.Run("failed is settled", theory(domain.Failed, false))
	t.Run("errored is settled", theory(domain.Errored, false))
}
