package materialsRepo

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/models"
)

func newMockRepo(t *testing.T) (MaterialsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresMaterialsRepo(sqlx.NewDb(db, "postgres")), mock
}

var materialRowColumns = []string{"work_code", "external_id", "section", "name", "image_url", "cost", "unit_of_measurement", "source", "updated_at"}

func TestListByWorkCode(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(materialRowColumns).
		AddRow("1-1-1", "205", "finishing", "Eggshell paint", "", 0.42, "sq ft", "bigbox", now).
		AddRow("1-1-1", "301", "equipment", "Roller kit", "", 0.05, "sq ft", "manual", now)
	mock.ExpectQuery(`SELECT (.+) FROM finishing_materials WHERE work_code = \$1 ORDER BY`).
		WithArgs("1-1-1").
		WillReturnRows(rows)

	got, err := repo.ListByWorkCode("1-1-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Eggshell paint", got[0].Name)
	assert.Equal(t, 0.42, got[0].Cost)
	assert.Equal(t, "manual", got[1].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDsSkipsEmptyLookup(t *testing.T) {
	repo, mock := newMockRepo(t)

	got, err := repo.GetByIDs("1-1-1", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`external_id = ANY\(\$2\)`).
		WithArgs("1-1-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(materialRowColumns).
			AddRow("1-1-1", "205", "finishing", "Eggshell paint", "", 0.42, "sq ft", "bigbox", time.Now()))

	got, err := repo.GetByIDs("1-1-1", []string{"205"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "205", got[0].ExternalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCommitsBatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO finishing_materials`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO finishing_materials`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.Upsert([]models.FinishingMaterial{
		{WorkCode: "1-1-1", ExternalID: "205", Section: "finishing", Name: "Paint", Cost: 0.42, Source: "bigbox"},
		{WorkCode: "1-1-1", ExternalID: "301", Section: "equipment", Name: "Roller", Cost: 0.05, Source: "bigbox"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO finishing_materials`).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, err := repo.Upsert([]models.FinishingMaterial{{WorkCode: "1-1-1", ExternalID: "205", Cost: -1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1-1-1/205")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStale(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM finishing_materials WHERE work_code = \$1 AND source <> 'manual'`).
		WithArgs("1-1-1", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteStale("1-1-1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRuns(t *testing.T) {
	repo, mock := newMockRepo(t)
	started := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM import_runs ORDER BY id DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"started_at", "finished_at", "fetched", "upserted", "skipped", "failed"}))
	last, err := repo.LastImport()
	require.NoError(t, err)
	assert.Nil(t, last)

	mock.ExpectExec(`INSERT INTO import_runs`).
		WithArgs(started, started.Add(time.Minute), 10, 8, 1, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.RecordImport(models.ImportReport{
		StartedAt: started, FinishedAt: started.Add(time.Minute),
		Fetched: 10, Upserted: 8, Skipped: 1, Failed: 1,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
