package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
	"github.com/Francelinojr/teste-gener/internal/pipeline"
	"github.com/Francelinojr/teste-gener/pkg/contracts/domain"
)

// RunInfo is the stored header of a run
type RunInfo struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Years         []int     `json:"years"`
	LoadedYears   []int     `json:"loaded_years"`
	ReferenceYear int       `json:"reference_year"`
}

// SaveRun writes the run header, the canonical table and every table of
// res in one transaction. Saving a run id again replaces it.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) error {
	if res == nil || res.RunID == "" {
		return apperrors.NewAppValidationError("run has no id")
	}
	years, _ := json.Marshal(res.Years)
	loaded, _ := json.Marshal(res.LoadedYears)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, res.RunID); err != nil {
		return apperrors.NewStorageError("replace run", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, years, loaded_years, reference_year) VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.StartedAt.Format(time.RFC3339Nano), res.FinishedAt.Format(time.RFC3339Nano),
		string(years), string(loaded), res.ReferenceYear); err != nil {
		return apperrors.NewStorageError("insert run", err)
	}

	if err := insertEnrollments(ctx, tx, res.RunID, res.Records); err != nil {
		return err
	}
	for _, t := range res.Tables {
		if err := insertTable(ctx, tx, res.RunID, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit run", err)
	}
	s.logger.InfoContext(ctx, "run stored",
		slog.String("run_id", res.RunID),
		slog.Int("records", len(res.Records)),
		slog.Int("tables", len(res.Tables)))
	return nil
}

func insertEnrollments(ctx context.Context, tx *sql.Tx, runID string, recs []domain.EnrollmentRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO enrollments (
		run_id, year, region, state, municipality_name, municipality_code, admin_category,
		area_name, area_code, institution_id, total_enrolled, female_enrolled, male_enrolled,
		entrants, graduates, in_target, target_group, institution_type
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("prepare enrollments insert", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			runID, r.Year, string(r.Region), r.State, r.MunicipalityName, r.MunicipalityCode,
			nullCount(r.AdminCategory), r.AreaName, r.AreaCode, r.InstitutionID,
			nullCount(r.Total), nullCount(r.Female), nullCount(r.Male()),
			nullCount(r.Entrants), nullCount(r.Graduates),
			r.InTarget, r.TargetGroup, string(r.InstitutionType),
		); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("insert enrollment %d", i), err)
		}
	}
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, runID string, t aggregation.Table) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregate_rows (run_id, table_name, row_index, column_idx, column_name, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("prepare aggregate insert", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		for j, col := range t.Columns {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			if _, err := stmt.ExecContext(ctx, runID, t.Name, i, j, col, v); err != nil {
				return apperrors.NewStorageError("insert "+t.Name, err)
			}
		}
	}
	return nil
}

func nullCount(c domain.Count) sql.NullInt64 {
	return sql.NullInt64{Int64: c.Value, Valid: c.Valid}
}

// Runs lists stored runs, newest first
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, years, loaded_years, reference_year FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var (
			info              RunInfo
			started, finished string
			years, loaded     string
		)
		if err := rows.Scan(&info.RunID, &started, &finished, &years, &loaded, &info.ReferenceYear); err != nil {
			return nil, apperrors.NewStorageError("scan run", err)
		}
		if err := decodeRun(&info, started, finished, years, loaded); err != nil {
			return nil, apperrors.NewStorageError("decode run "+info.RunID, err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	return out, nil
}

func decodeRun(info *RunInfo, started, finished, years, loaded string) error {
	var err error
	if info.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return fmt.Errorf("started_at: %w", err)
	}
	if info.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return fmt.Errorf("finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(years), &info.Years); err != nil {
		return fmt.Errorf("years: %w", err)
	}
	if err := json.Unmarshal([]byte(loaded), &info.LoadedYears); err != nil {
		return fmt.Errorf("loaded_years: %w", err)
	}
	return nil
}

// Table rebuilds a stored table. It fails with a not-found error when the
// run has no table of that name.
func (s *Store) Table(ctx context.Context, runID, name string) (aggregation.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, column_idx, column_name, value FROM aggregate_rows
		 WHERE run_id = ? AND table_name = ? ORDER BY row_index, column_idx`, runID, name)
	if err != nil {
		return aggregation.Table{}, apperrors.NewStorageError("query table", err)
	}
	defer rows.Close()

	t := aggregation.Table{Name: name}
	for rows.Next() {
		var (
			ri, ci int
			col, v string
		)
		if err := rows.Scan(&ri, &ci, &col, &v); err != nil {
			return aggregation.Table{}, apperrors.NewStorageError("scan table", err)
		}
		if ri == 0 {
			t.Columns = append(t.Columns, col)
		}
		for len(t.Rows) <= ri {
			t.Rows = append(t.Rows, nil)
		}
		t.Rows[ri] = append(t.Rows[ri], v)
	}
	if err := rows.Err(); err != nil {
		return aggregation.Table{}, apperrors.NewStorageError("query table", err)
	}
	if len(t.Rows) == 0 {
		return aggregation.Table{}, apperrors.NewNotFoundError("table " + name)
	}
	return t, nil
}

// CountEnrollments returns how many canonical rows a run stored
func (s *Store) CountEnrollments(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE run_id = ?`, runID).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NewStorageError("count enrollments", err)
	}
	return n, nil
}
