package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
)

// Registration is what a new service record is created from. Identity
// (ID) and timestamps are assigned by the store.
type Registration struct {
	Source string
	Type   domain.ServiceType
	Config domain.ServiceConfig

	// resolved model version backing the service, if any.
	ModelVersionID *uuid.UUID
}

// Interface is the persistent store of service records.
//
// The store is a lagging cache of the external world: records hold the
// last written snapshot, not live state. Callers probe the live resource
// and write fresh snapshots back via Update.
type Interface interface {
	// Register creates a new service record.
	//
	// Args
	//
	// - context.Context
	//
	// - Registration: source, type and config of the new service.
	//
	// Returns
	//
	// - domain.ServiceRecord: the created record, with its assigned ID,
	// both states Inactive and timestamps set.
	//
	// - error: domain.ErrConflict when a record with the same deployable
	// identity (pipeline name, step name, run name and model name under
	// the same type and flavor; the model version is not part of it)
	// already exists.
	Register(ctx context.Context, reg Registration) (domain.ServiceRecord, error)

	// Update overwrites the stored record having rec.ID with rec.
	//
	// Identity fields and CreatedAt of the stored record win over those
	// in rec; UpdatedAt is bumped by the store.
	//
	// Returns
	//
	// - domain.ServiceRecord: the record as stored.
	//
	// - error: domain.ErrMissing when no record has rec.ID.
	Update(ctx context.Context, rec domain.ServiceRecord) (domain.ServiceRecord, error)

	// Find lists records matching the query, newest first.
	//
	// Args
	//
	// - context.Context
	//
	// - domain.ServiceFindQuery: each non-nil field is a conjunct.
	// Running matches on the recorded status snapshot, which may lag the
	// live resource; callers wanting certainty probe afresh.
	//
	// Returns
	//
	// - []domain.ServiceRecord: matches ordered by CreatedAt descending.
	// Empty (not an error) when nothing matches.
	//
	// - error
	Find(ctx context.Context, q domain.ServiceFindQuery) ([]domain.ServiceRecord, error)

	// Get fetches the record with the given ID.
	//
	// Returns
	//
	// - domain.ServiceRecord
	//
	// - error: domain.ErrMissing when no record has the ID.
	Get(ctx context.Context, id uuid.UUID) (domain.ServiceRecord, error)

	// Delete removes the record with the given ID. Irreversible.
	//
	// Returns
	//
	// - error: domain.ErrMissing when no record has the ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
