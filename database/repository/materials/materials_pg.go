package materialsRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jamb/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const materialColumns = `work_code, external_id, section, name, image_url, cost, unit_of_measurement, source, updated_at`

// PostgresMaterialsRepo implements MaterialsRepository with sqlx.
type PostgresMaterialsRepo struct {
	db *sqlx.DB
}

// NewPostgresMaterialsRepo wraps an open materials database.
func NewPostgresMaterialsRepo(db *sqlx.DB) MaterialsRepository {
	return &PostgresMaterialsRepo{db: db}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *PostgresMaterialsRepo) ListByWorkCode(workCode string) ([]models.FinishingMaterial, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var materials []models.FinishingMaterial
	query := `SELECT ` + materialColumns + ` FROM finishing_materials WHERE work_code = $1 ORDER BY section, cost, name`
	if err := r.db.SelectContext(ctx, &materials, query, workCode); err != nil {
		return nil, fmt.Errorf("failed to list materials for %s: %w", workCode, err)
	}
	return materials, nil
}

func (r *PostgresMaterialsRepo) GetByIDs(workCode string, externalIDs []string) ([]models.FinishingMaterial, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var materials []models.FinishingMaterial
	query := `SELECT ` + materialColumns + ` FROM finishing_materials WHERE work_code = $1 AND external_id = ANY($2)`
	if err := r.db.SelectContext(ctx, &materials, query, workCode, pq.Array(externalIDs)); err != nil {
		return nil, fmt.Errorf("failed to fetch materials for %s: %w", workCode, err)
	}
	return materials, nil
}

func (r *PostgresMaterialsRepo) Upsert(materials []models.FinishingMaterial) (int, error) {
	if len(materials) == 0 {
		return 0, nil
	}
	ctx, cancel := newContext(30 * time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO finishing_materials (` + materialColumns + `)
		VALUES (:work_code, :external_id, :section, :name, :image_url, :cost, :unit_of_measurement, :source, :updated_at)
		ON CONFLICT (work_code, external_id) DO UPDATE SET
			section = EXCLUDED.section,
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			cost = EXCLUDED.cost,
			unit_of_measurement = EXCLUDED.unit_of_measurement,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at`

	affected := 0
	now := time.Now().UTC()
	for _, m := range materials {
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
		res, err := tx.NamedExecContext(ctx, query, m)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert material %s/%s: %w", m.WorkCode, m.ExternalID, err)
		}
		n, _ := res.RowsAffected()
		affected += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit materials: %w", err)
	}
	return affected, nil
}

func (r *PostgresMaterialsRepo) DeleteStale(workCode string, before time.Time) (int, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM finishing_materials WHERE work_code = $1 AND source <> 'manual' AND updated_at < $2`,
		workCode, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale materials for %s: %w", workCode, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *PostgresMaterialsRepo) RecordImport(report models.ImportReport) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO import_runs (started_at, finished_at, fetched, upserted, skipped, failed)
		VALUES (:started_at, :finished_at, :fetched, :upserted, :skipped, :failed)`, report)
	if err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	return nil
}

func (r *PostgresMaterialsRepo) LastImport() (*models.ImportReport, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var report models.ImportReport
	err := r.db.GetContext(ctx, &report,
		`SELECT started_at, finished_at, fetched, upserted, skipped, failed FROM import_runs ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last import run: %w", err)
	}
	return &report, nil
}
