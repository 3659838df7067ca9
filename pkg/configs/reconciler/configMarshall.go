package reconciler

import (
	"fmt"
	"time"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// Mutable, yaml-facing shape of ReconcilerConfig.
type ReconcilerConfigMarshall struct {
	Database     string `yaml:"database"`
	Interval     string `yaml:"interval,omitempty"`
	ProbeTimeout string `yaml:"probeTimeout,omitempty"`
}

var _ Marshalled[*ReconcilerConfig] = &ReconcilerConfigMarshall{}

func (m *ReconcilerConfigMarshall) trySeal(path string) *ReconcilerConfig {
	return &ReconcilerConfig{
		database:     required(m.Database, path+".database"),
		interval:     duration(m.Interval, 30*time.Second, path+".interval"),
		probeTimeout: duration(m.ProbeTimeout, 5*time.Second, path+".probeTimeout"),
	}
}

func required[T comparable](v T, path string) T {
	var zero T
	if v == zero {
		panic(fmt.Errorf("%s is required", path))
	}
	return v
}

func duration(v string, defaultValue time.Duration, path string) time.Duration {
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d <= 0 {
		panic(fmt.Errorf("%s should be positive", path))
	}
	return d
}
