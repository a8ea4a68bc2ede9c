// Package provstore persists the provenance log in SQLite.
package provstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

const planColumns = "id, name, command, inputs, outputs, parameters, derived_from, created_at, deleted_at"

const activityColumns = "id, plan_id, started_at, ended_at, parameters, invalidated_at"

// Store implements ports.ProvenanceStore on a single SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the provenance database at the given
// path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return nil, zerr.Wrap(errors.Join(domain.ErrStoreOpenFailed, err), "failed to create store directory")
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrStoreOpenFailed, err), "path", path)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, zerr.Wrap(errors.Join(domain.ErrStoreOpenFailed, err), "failed to apply schema")
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return zerr.Wrap(err, "failed to close provenance store")
	}
	return nil
}

// SavePlan inserts a plan version and points the head for its name at it.
func (s *Store) SavePlan(ctx context.Context, plan *domain.Plan) error {
	command, err := encodeStrings(plan.Command)
	if err != nil {
		return writeFail(err, "failed to encode plan command")
	}
	inputs, err := encodeStrings(plan.Inputs)
	if err != nil {
		return writeFail(err, "failed to encode plan inputs")
	}
	outputs, err := encodeStrings(plan.Outputs)
	if err != nil {
		return writeFail(err, "failed to encode plan outputs")
	}
	params, err := encodeParams(plan.Parameters)
	if err != nil {
		return writeFail(err, "failed to encode plan parameters")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeFail(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		plan.ID, plan.Name.String(), command, inputs, outputs, params,
		nullableString(plan.DerivedFrom), plan.CreatedAt.UnixNano(), nullableTime(plan.DeletedAt),
	)
	if err != nil {
		return zerr.With(writeFail(err, "failed to insert plan"), "plan", plan.ID)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO plan_heads (name, plan_id) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET plan_id = excluded.plan_id",
		plan.Name.String(), plan.ID,
	)
	if err != nil {
		return zerr.With(writeFail(err, "failed to move plan head"), "plan", plan.ID)
	}

	if err := tx.Commit(); err != nil {
		return writeFail(err, "failed to commit plan")
	}
	return nil
}

// PlanHead returns the latest live version of the named plan.
func (s *Store) PlanHead(ctx context.Context, name string) (*domain.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT p."+planColumns+" FROM plans p JOIN plan_heads h ON h.plan_id = p.id WHERE h.name = ? AND p.deleted_at IS NULL",
		name,
	)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(readFail(err, "failed to load plan head"), "name", name)
	}
	return plan, nil
}

// PlanByID returns the plan version with the given id, deleted or not.
func (s *Store) PlanByID(ctx context.Context, id string) (*domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = ?", id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(readFail(err, "failed to load plan"), "plan", id)
	}
	return plan, nil
}

// ListPlans returns all plan versions, oldest first.
func (s *Store) ListPlans(ctx context.Context, includeDeleted bool) ([]*domain.Plan, error) {
	query := "SELECT " + planColumns + " FROM plans"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, readFail(err, "failed to list plans")
	}
	defer func() { _ = rows.Close() }()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, readFail(err, "failed to scan plan row")
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, readFail(err, "failed to list plans")
	}
	return plans, nil
}

// RemovePlan soft-deletes a plan version. A second removal reports
// domain.ErrPlanDeleted; the original timestamp is never overwritten.
func (s *Store) RemovePlan(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE plans SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		at.UnixNano(), id,
	)
	if err != nil {
		return zerr.With(writeFail(err, "failed to remove plan"), "plan", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return writeFail(err, "failed to remove plan")
	}
	if affected == 0 {
		existing, err := s.PlanByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return zerr.With(domain.ErrPlanNotFound, "plan", id)
		}
		return zerr.With(domain.ErrPlanDeleted, "plan", id)
	}
	return nil
}

// AppendActivity records an activity with its usages and generations in one
// transaction. A generation that collides with a live recorded generation of
// the same path at the same ended_at fails the whole append.
func (s *Store) AppendActivity(ctx context.Context, activity *domain.Activity) error {
	params, err := encodeParams(activity.Parameters)
	if err != nil {
		return writeFail(err, "failed to encode activity parameters")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeFail(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, gen := range activity.Generations {
		var collidingID string
		err := tx.QueryRowContext(ctx,
			"SELECT a.id FROM activities a JOIN generations g ON g.activity_id = a.id WHERE g.path = ? AND a.ended_at = ? AND a.invalidated_at IS NULL LIMIT 1",
			gen.Entity.Path.String(), activity.EndedAt.UnixNano(),
		).Scan(&collidingID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return readFail(err, "failed to check generation collision")
		}
		return zerr.With(
			zerr.With(domain.ErrDuplicateGeneration, "path", gen.Entity.Path.String()),
			"activity", collidingID,
		)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO activities ("+activityColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		activity.ID, activity.PlanID, activity.StartedAt.UnixNano(), activity.EndedAt.UnixNano(),
		params, nullableTime(activity.InvalidatedAt),
	)
	if err != nil {
		return zerr.With(writeFail(err, "failed to insert activity"), "activity", activity.ID)
	}

	for i, u := range activity.Usages {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO usages (activity_id, ord, path, checksum) VALUES (?, ?, ?, ?)",
			activity.ID, i, u.Entity.Path.String(), u.Entity.Checksum,
		)
		if err != nil {
			return zerr.With(writeFail(err, "failed to insert usage"), "path", u.Entity.Path.String())
		}
	}
	for i, g := range activity.Generations {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO generations (activity_id, ord, path, checksum) VALUES (?, ?, ?, ?)",
			activity.ID, i, g.Entity.Path.String(), g.Entity.Checksum,
		)
		if err != nil {
			return zerr.With(writeFail(err, "failed to insert generation"), "path", g.Entity.Path.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return writeFail(err, "failed to commit activity")
	}
	return nil
}

// ActivityByID returns the activity with the given id, invalidated or not.
func (s *Store) ActivityByID(ctx context.Context, id string) (*domain.Activity, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id)
	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(readFail(err, "failed to load activity"), "activity", id)
	}
	if err := s.attachLinks(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// LiveActivities returns all non-invalidated activities, oldest first.
func (s *Store) LiveActivities(ctx context.Context) ([]*domain.Activity, error) {
	return s.queryActivities(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE invalidated_at IS NULL ORDER BY ended_at ASC, id ASC",
	)
}

// ActivitiesByGeneration returns the non-invalidated activities that
// generated the given path, oldest first.
func (s *Store) ActivitiesByGeneration(ctx context.Context, path, checksum string) ([]*domain.Activity, error) {
	query := "SELECT DISTINCT a.id, a.plan_id, a.started_at, a.ended_at, a.parameters, a.invalidated_at" +
		" FROM activities a JOIN generations g ON g.activity_id = a.id" +
		" WHERE g.path = ? AND a.invalidated_at IS NULL"
	args := []any{path}
	if checksum != "" {
		query += " AND g.checksum = ?"
		args = append(args, checksum)
	}
	query += " ORDER BY a.ended_at ASC, a.id ASC"
	return s.queryActivities(ctx, query, args...)
}

// ActivitiesByPlan returns the non-invalidated activities recorded against
// the given plan version, oldest first.
func (s *Store) ActivitiesByPlan(ctx context.Context, planID string) ([]*domain.Activity, error) {
	return s.queryActivities(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE plan_id = ? AND invalidated_at IS NULL ORDER BY ended_at ASC, id ASC",
		planID,
	)
}

// InvalidateActivity marks an activity as retracted. Retracting an already
// invalidated activity is a no-op so the recorded timestamp stays intact.
func (s *Store) InvalidateActivity(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE activities SET invalidated_at = ? WHERE id = ? AND invalidated_at IS NULL",
		at.UnixNano(), id,
	)
	if err != nil {
		return zerr.With(writeFail(err, "failed to invalidate activity"), "activity", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return writeFail(err, "failed to invalidate activity")
	}
	if affected == 0 {
		existing, err := s.ActivityByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return zerr.With(domain.ErrActivityNotFound, "activity", id)
		}
	}
	return nil
}

// Records returns the full timeline of plans and activities, oldest first,
// including invalidated and deleted records. Plans sort before activities
// recorded at the same instant.
func (s *Store) Records(ctx context.Context) ([]domain.Record, error) {
	plans, err := s.ListPlans(ctx, true)
	if err != nil {
		return nil, err
	}
	activities, err := s.queryActivities(ctx,
		"SELECT "+activityColumns+" FROM activities ORDER BY ended_at ASC, id ASC",
	)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(plans)+len(activities))
	for _, p := range plans {
		records = append(records, p)
	}
	for _, a := range activities {
		records = append(records, a)
	}
	slices.SortStableFunc(records, func(a, b domain.Record) int {
		if c := a.RecordedAt().Compare(b.RecordedAt()); c != 0 {
			return c
		}
		// a plan recorded at the same instant precedes the activity using it
		return int(b.Kind()) - int(a.Kind())
	})
	return records, nil
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, readFail(err, "failed to query activities")
	}
	defer func() { _ = rows.Close() }()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, readFail(err, "failed to scan activity row")
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, readFail(err, "failed to query activities")
	}

	for _, activity := range activities {
		if err := s.attachLinks(ctx, activity); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (s *Store) attachLinks(ctx context.Context, activity *domain.Activity) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, checksum FROM usages WHERE activity_id = ? ORDER BY ord ASC", activity.ID)
	if err != nil {
		return zerr.With(readFail(err, "failed to load usages"), "activity", activity.ID)
	}
	activity.Usages, err = collectLinks(rows, func(e domain.Entity) domain.Usage {
		return domain.Usage{Entity: e}
	})
	if err != nil {
		return zerr.With(readFail(err, "failed to load usages"), "activity", activity.ID)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT path, checksum FROM generations WHERE activity_id = ? ORDER BY ord ASC", activity.ID)
	if err != nil {
		return zerr.With(readFail(err, "failed to load generations"), "activity", activity.ID)
	}
	activity.Generations, err = collectLinks(rows, func(e domain.Entity) domain.Generation {
		return domain.Generation{Entity: e}
	})
	if err != nil {
		return zerr.With(readFail(err, "failed to load generations"), "activity", activity.ID)
	}
	return nil
}

func collectLinks[T any](rows *sql.Rows, wrap func(domain.Entity) T) ([]T, error) {
	defer func() { _ = rows.Close() }()

	var links []T
	for rows.Next() {
		var path, checksum string
		if err := rows.Scan(&path, &checksum); err != nil {
			return nil, err
		}
		links = append(links, wrap(domain.NewEntity(path, checksum)))
	}
	return links, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var (
		plan        domain.Plan
		name        string
		command     string
		inputs      string
		outputs     string
		params      sql.NullString
		derivedFrom sql.NullString
		createdAt   int64
		deletedAt   sql.NullInt64
	)
	err := row.Scan(&plan.ID, &name, &command, &inputs, &outputs, &params, &derivedFrom, &createdAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	plan.Name = domain.NewInternedString(name)
	if plan.Command, err = decodeStrings(command); err != nil {
		return nil, err
	}
	if plan.Inputs, err = decodeStrings(inputs); err != nil {
		return nil, err
	}
	if plan.Outputs, err = decodeStrings(outputs); err != nil {
		return nil, err
	}
	if plan.Parameters, err = decodeParams(params); err != nil {
		return nil, err
	}
	plan.DerivedFrom = derivedFrom.String
	plan.CreatedAt = fromTimestamp(createdAt)
	if deletedAt.Valid {
		plan.DeletedAt = fromTimestamp(deletedAt.Int64)
	}
	return &plan, nil
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		activity      domain.Activity
		startedAt     int64
		endedAt       int64
		params        sql.NullString
		invalidatedAt sql.NullInt64
	)
	err := row.Scan(&activity.ID, &activity.PlanID, &startedAt, &endedAt, &params, &invalidatedAt)
	if err != nil {
		return nil, err
	}

	activity.StartedAt = fromTimestamp(startedAt)
	activity.EndedAt = fromTimestamp(endedAt)
	if activity.Parameters, err = decodeParams(params); err != nil {
		return nil, err
	}
	if invalidatedAt.Valid {
		activity.InvalidatedAt = fromTimestamp(invalidatedAt.Int64)
	}
	return &activity, nil
}

func encodeStrings(values []string) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeStrings(raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func encodeParams(params map[string]string) (sql.NullString, error) {
	if len(params) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeParams(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	var params map[string]string
	if err := json.Unmarshal([]byte(raw.String), &params); err != nil {
		return nil, err
	}
	return params, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromTimestamp(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}

func readFail(err error, msg string) error {
	return zerr.Wrap(errors.Join(domain.ErrStoreReadFailed, err), msg)
}

func writeFail(err error, msg string) error {
	return zerr.Wrap(errors.Join(domain.ErrStoreWriteFailed, err), msg)
}

var _ ports.ProvenanceStore = (*Store)(nil)
