package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	kpool "github.com/servefab/servefab/pkg/conn/db/postgres/pool"
	"github.com/servefab/servefab/pkg/domain"
	pgerr "github.com/servefab/servefab/pkg/domain/errors/dberrors/postgres"
	modeldb "github.com/servefab/servefab/pkg/domain/model/db"
	xe "github.com/servefab/servefab/pkg/errors"
)

type pgModel struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) modeldb.Interface {
	return &pgModel{pool: pool}
}

func (p *pgModel) GetModelVersion(ctx context.Context, name string, version string) (domain.ModelVersion, error) {
	var row pgx.Row
	if version == "" {
		row = p.pool.QueryRow(
			ctx,
			`
			select "model_version_id", "model_name", "version" from "model_version"
			where "model_name" = $1
			order by "created_at" desc limit 1;
			`,
			name,
		)
	} else {
		row = p.pool.QueryRow(
			ctx,
			`
			select "model_version_id", "model_name", "version" from "model_version"
			where "model_name" = $1 and "version" = $2;
			`,
			name, version,
		)
	}

	var rawID string
	mv := domain.ModelVersion{}
	if err := row.Scan(&rawID, &mv.ModelName, &mv.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ModelVersion{}, pgerr.Missing{
				Table:    "model_version",
				Identity: fmt.Sprintf("%s:%s", name, version),
			}
		}
		return domain.ModelVersion{}, xe.Wrap(err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.ModelVersion{}, xe.Wrap(err)
	}
	mv.ID = id
	return mv, nil
}
