package reconciler

import "time"

// Configuration of the status reconciliation daemon.
//
// This type is immutable. To get an instance, unmarshal a
// ReconcilerConfigMarshall and TrySeal it.
type ReconcilerConfig struct {
	database     string
	interval     time.Duration
	probeTimeout time.Duration
}

// Connection string for the database holding the service records.
func (c *ReconcilerConfig) Database() string {
	return c.database
}

// How often the sweep runs. default = 30s
func (c *ReconcilerConfig) Interval() time.Duration {
	return c.interval
}

// Per-service budget for the liveness probe. default = 5s
func (c *ReconcilerConfig) ProbeTimeout() time.Duration {
	return c.probeTimeout
}
