package mock

import (
	"context"
	"errors"

	"github.com/servefab/servefab/pkg/domain"
	mocks "github.com/servefab/servefab/pkg/domain/internal/mocks"
	"github.com/servefab/servefab/pkg/domain/model/db"
)

type GetModelVersionArgs struct {
	Name    string
	Version string
}

type Resolver struct {
	Impl struct {
		GetModelVersion func(ctx context.Context, name string, version string) (domain.ModelVersion, error)
	}

	Calls struct {
		GetModelVersion mocks.CallLog[GetModelVersionArgs]
	}
}

func NewResolver() *Resolver {
	return &Resolver{}
}

var _ db.Interface = &Resolver{}

func (m *Resolver) GetModelVersion(ctx context.Context, name string, version string) (domain.ModelVersion, error) {
	m.Calls.GetModelVersion = append(
		m.Calls.GetModelVersion, GetModelVersionArgs{Name: name, Version: version},
	)
	if m.Impl.GetModelVersion != nil {
		return m.Impl.GetModelVersion(ctx, name, version)
	}
	panic(errors.New("it should not be called"))
}
