package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/servefab/servefab/pkg/conn/db/postgres/pool"
	"github.com/servefab/servefab/pkg/domain"
	pgerr "github.com/servefab/servefab/pkg/domain/errors/dberrors/postgres"
	svcdb "github.com/servefab/servefab/pkg/domain/service/db"
	xe "github.com/servefab/servefab/pkg/errors"
)

type pgService struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) svcdb.Interface {
	return &pgService{pool: pool}
}

// identity renders the columns of the "service_identity" unique index
// for error messages.
func identity(t domain.ServiceType, c domain.ServiceConfig) string {
	return fmt.Sprintf(
		"type=%s flavor=%s pipeline=%s step=%s run=%s model=%s",
		t.Type, t.Flavor,
		c.PipelineName, c.PipelineStepName, c.RunName, c.ModelName,
	)
}

func (p *pgService) Register(ctx context.Context, reg svcdb.Registration) (domain.ServiceRecord, error) {
	config, err := json.Marshal(reg.Config)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	status, err := json.Marshal(domain.ServiceStatus{State: domain.Inactive})
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}

	id := uuid.New()
	modelVersionID := pgtype.Varchar{Status: pgtype.Null}
	if reg.ModelVersionID != nil {
		modelVersionID = pgtype.Varchar{String: reg.ModelVersionID.String(), Status: pgtype.Present}
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(
		ctx,
		`
		insert into "service" (
			"service_id", "name", "source",
			"type_name", "type", "flavor", "type_description",
			"admin_state", "config", "status",
			"model_version_id",
			"pipeline_name", "pipeline_step_name", "run_name",
			"model_name", "model_version"
		) values (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11,
			$12, $13, $14,
			$15, $16
		);
		`,
		id.String(), reg.Config.Name, reg.Source,
		reg.Type.Name, reg.Type.Type, reg.Type.Flavor, reg.Type.Description,
		string(domain.Inactive), config, status,
		modelVersionID,
		reg.Config.PipelineName, reg.Config.PipelineStepName, reg.Config.RunName,
		reg.Config.ModelName, reg.Config.ModelVersion,
	)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return domain.ServiceRecord{}, pgerr.Conflict{
				Table: "service", Identity: identity(reg.Type, reg.Config),
			}
		}
		return domain.ServiceRecord{}, xe.Wrap(err)
	}

	rec, err := getInTx(ctx, tx, id)
	if err != nil {
		return domain.ServiceRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	return rec, nil
}

func (p *pgService) Update(ctx context.Context, rec domain.ServiceRecord) (domain.ServiceRecord, error) {
	config, err := json.Marshal(rec.Config)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	status, err := json.Marshal(rec.Status)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	endpoint := pgtype.JSONB{Status: pgtype.Null}
	if rec.Endpoint != nil {
		ep, err := json.Marshal(rec.Endpoint)
		if err != nil {
			return domain.ServiceRecord{}, xe.Wrap(err)
		}
		endpoint = pgtype.JSONB{Bytes: ep, Status: pgtype.Present}
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(
		ctx,
		`
		update "service" set
			"name" = $2,
			"admin_state" = $3,
			"config" = $4,
			"status" = $5,
			"endpoint" = $6,
			"prediction_url" = $7,
			"health_check_url" = $8,
			"updated_at" = now()
		where "service_id" = $1;
		`,
		rec.ID.String(), rec.Name,
		string(rec.AdminState), config, status, endpoint,
		rec.PredictionURL, rec.HealthCheckURL,
	)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ServiceRecord{}, pgerr.Missing{
			Table: "service", Identity: rec.ID.String(),
		}
	}

	stored, err := getInTx(ctx, tx, rec.ID)
	if err != nil {
		return domain.ServiceRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	return stored, nil
}

const recordColumns = `
	"service_id", "name", "source",
	"type_name", "type", "flavor", "type_description",
	"admin_state", "config", "status", "endpoint",
	"prediction_url", "health_check_url",
	"model_version_id", "created_at", "updated_at"
`

func scanRecord(row pgx.Row) (domain.ServiceRecord, error) {
	var (
		rec            domain.ServiceRecord
		rawID          string
		adminState     string
		config, status []byte
		endpoint       pgtype.JSONB
		modelVersionID pgtype.Varchar
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := row.Scan(
		&rawID, &rec.Name, &rec.Source,
		&rec.Type.Name, &rec.Type.Type, &rec.Type.Flavor, &rec.Type.Description,
		&adminState, &config, &status, &endpoint,
		&rec.PredictionURL, &rec.HealthCheckURL,
		&modelVersionID, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.ServiceRecord{}, err
	}

	rec.ID, err = uuid.Parse(rawID)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	rec.AdminState, err = domain.AsServiceState(adminState)
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	if err := json.Unmarshal(config, &rec.Config); err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	if err := json.Unmarshal(status, &rec.Status); err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	if endpoint.Status == pgtype.Present {
		ep := domain.ServiceEndpoint{}
		if err := json.Unmarshal(endpoint.Bytes, &ep); err != nil {
			return domain.ServiceRecord{}, xe.Wrap(err)
		}
		rec.Endpoint = &ep
	}
	if modelVersionID.Status == pgtype.Present {
		mvid, err := uuid.Parse(modelVersionID.String)
		if err != nil {
			return domain.ServiceRecord{}, xe.Wrap(err)
		}
		rec.ModelVersionID = &mvid
	}
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	return rec, nil
}

func getInTx(ctx context.Context, q kpool.Queryer, id uuid.UUID) (domain.ServiceRecord, error) {
	rec, err := scanRecord(q.QueryRow(
		ctx,
		`select `+recordColumns+` from "service" where "service_id" = $1;`,
		id.String(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ServiceRecord{}, pgerr.Missing{Table: "service", Identity: id.String()}
	}
	if err != nil {
		return domain.ServiceRecord{}, xe.Wrap(err)
	}
	return rec, nil
}

func (p *pgService) Get(ctx context.Context, id uuid.UUID) (domain.ServiceRecord, error) {
	return getInTx(ctx, p.pool, id)
}

func (p *pgService) Find(ctx context.Context, q domain.ServiceFindQuery) ([]domain.ServiceRecord, error) {
	where := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ID != nil {
		where = append(where, `"service_id" = `+arg(q.ID.String()))
	}
	if q.Running {
		where = append(where, `"status"->>'state' = `+arg(string(domain.Running)))
	}
	if q.PipelineName != nil {
		where = append(where, `"pipeline_name" = `+arg(*q.PipelineName))
	}
	if q.RunName != nil {
		where = append(where, `"run_name" = `+arg(*q.RunName))
	}
	if q.PipelineStepName != nil {
		where = append(where, `"pipeline_step_name" = `+arg(*q.PipelineStepName))
	}
	if q.ModelName != nil {
		where = append(where, `"model_name" = `+arg(*q.ModelName))
	}
	if q.ModelVersion != nil {
		where = append(where, `"model_version" = `+arg(*q.ModelVersion))
	}
	if q.ModelVersionID != nil {
		where = append(where, `"model_version_id" = `+arg(q.ModelVersionID.String()))
	}
	if q.Type != nil {
		where = append(where, `"type" = `+arg(*q.Type))
	}
	if q.Flavor != nil {
		where = append(where, `"flavor" = `+arg(*q.Flavor))
	}

	sql := `select ` + recordColumns + ` from "service"`
	for i, w := range where {
		if i == 0 {
			sql += ` where ` + w
		} else {
			sql += ` and ` + w
		}
	}
	sql += ` order by "created_at" desc;`

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	recs := []domain.ServiceRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return recs, nil
}

func (p *pgService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(
		ctx,
		`delete from "service" where "service_id" = $1;`,
		id.String(),
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return pgerr.Missing{Table: "service", Identity: id.String()}
	}
	return nil
}
