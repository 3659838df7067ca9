package mock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/servefab/servefab/pkg/domain"
	mocks "github.com/servefab/servefab/pkg/domain/internal/mocks"
	"github.com/servefab/servefab/pkg/domain/service/db"
)

type Store struct {
	Impl struct {
		Register func(ctx context.Context, reg db.Registration) (domain.ServiceRecord, error)
		Update   func(ctx context.Context, rec domain.ServiceRecord) (domain.ServiceRecord, error)
		Find     func(ctx context.Context, q domain.ServiceFindQuery) ([]domain.ServiceRecord, error)
		Get      func(ctx context.Context, id uuid.UUID) (domain.ServiceRecord, error)
		Delete   func(ctx context.Context, id uuid.UUID) error
	}

	Calls struct {
		Register mocks.CallLog[db.Registration]
		Update   mocks.CallLog[domain.ServiceRecord]
		Find     mocks.CallLog[domain.ServiceFindQuery]
		Get      mocks.CallLog[uuid.UUID]
		Delete   mocks.CallLog[uuid.UUID]
	}
}

func NewStore() *Store {
	return &Store{}
}

var _ db.Interface = &Store{}

func (m *Store) Register(ctx context.Context, reg db.Registration) (domain.ServiceRecord, error) {
	m.Calls.Register = append(m.Calls.Register, reg)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, reg)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Update(ctx context.Context, rec domain.ServiceRecord) (domain.ServiceRecord, error) {
	m.Calls.Update = append(m.Calls.Update, rec)
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, rec)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Find(ctx context.Context, q domain.ServiceFindQuery) ([]domain.ServiceRecord, error) {
	m.Calls.Find = append(m.Calls.Find, q)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, q)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Get(ctx context.Context, id uuid.UUID) (domain.ServiceRecord, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.Delete = append(m.Calls.Delete, id)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
