package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Flubio/giftshop/pkg/types"
	_ "modernc.org/sqlite"
)

const (
	// sqliteDriver is the database/sql driver name registered by modernc.org/sqlite.
	sqliteDriver = "sqlite"
	// sqliteTimeLayout is fixed-width so stored timestamps sort as text.
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// openSQLite opens a database and ensures the schema exists.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

const (
	sqliteInsertInput = `INSERT OR IGNORE INTO inputs (id, size, ranges) VALUES (?, ?, ?)`
	sqliteInsertRule  = `
		INSERT OR IGNORE INTO rules (id, name, part, min_repeats, max_repeats, structural_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	sqliteInsertRun = `
		INSERT OR IGNORE INTO runs (id, rule_id, part, input_id, ranges, scanned, count, total, created_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqliteInsertInvalidID = `
		INSERT OR IGNORE INTO invalid_ids (structural_id, run_id, rule_id, value, unit, repeats, range_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// AddInput records a puzzle input by content hash.
func (s *SQLiteStore) AddInput(in InputRecord) error {
	if _, err := s.db.Exec(sqliteInsertInput, in.ID.Hex(), in.Size, in.Ranges); err != nil {
		return fmt.Errorf("inserting input: %w", err)
	}
	return nil
}

// AddRule stores a rule definition.
func (s *SQLiteStore) AddRule(r *types.Rule) error {
	return insertRule(s.db, r)
}

// AddRun stores a run summary.
func (s *SQLiteStore) AddRun(r *types.Run) error {
	return insertRun(s.db, r)
}

// AddInvalidID stores one flagged ID (deduplicated).
func (s *SQLiteStore) AddInvalidID(v *types.InvalidID) error {
	return insertInvalidID(s.db, v)
}

// SaveRun stores a rule, a run and its invalid IDs in one transaction.
func (s *SQLiteStore) SaveRun(r *types.Rule, run *types.Run, invalid []*types.InvalidID) error {
	if err := checkRun(r, run, invalid); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRule(tx, r); err != nil {
		return err
	}
	if err := insertRun(tx, run); err != nil {
		return err
	}
	for _, v := range invalid {
		if err := insertInvalidID(tx, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// GetInputs retrieves all recorded inputs.
func (s *SQLiteStore) GetInputs() ([]InputRecord, error) {
	rows, err := s.db.Query("SELECT id, size, ranges FROM inputs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying inputs: %w", err)
	}
	defer rows.Close()

	var inputs []InputRecord
	for rows.Next() {
		var in InputRecord
		if err := rows.Scan(&in.ID, &in.Size, &in.Ranges); err != nil {
			return nil, fmt.Errorf("scanning input: %w", err)
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inputs: %w", err)
	}
	return inputs, nil
}

// GetRules retrieves all stored rules.
func (s *SQLiteStore) GetRules() ([]*types.Rule, error) {
	rows, err := s.db.Query(`
		SELECT id, name, part, min_repeats, max_repeats, structural_id
		FROM rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var rules []*types.Rule
	for rows.Next() {
		var r types.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.Part, &r.MinRepeats, &r.MaxRepeats, &r.StructuralID); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

const selectRunColumns = `
	SELECT id, rule_id, part, input_id, ranges, scanned, count, total, created_at, duration_ns
	FROM runs`

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*types.Run, error) {
	row := s.db.QueryRow(selectRunColumns+" WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return r, nil
}

// GetRuns retrieves all runs, oldest first.
func (s *SQLiteStore) GetRuns() ([]*types.Run, error) {
	rows, err := s.db.Query(selectRunColumns + " ORDER BY created_at, part, rule_id")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// GetInvalidIDs retrieves the IDs flagged by a run in scan order.
func (s *SQLiteStore) GetInvalidIDs(runID string) ([]*types.InvalidID, error) {
	rows, err := s.db.Query(`
		SELECT structural_id, run_id, rule_id, value, unit, repeats, range_index
		FROM invalid_ids
		WHERE run_id = ?
		ORDER BY range_index, value
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying invalid IDs: %w", err)
	}
	defer rows.Close()

	var result []*types.InvalidID
	for rows.Next() {
		var v types.InvalidID
		if err := rows.Scan(&v.StructuralID, &v.RunID, &v.RuleID, &v.Value, &v.Unit, &v.Repeats, &v.RangeIndex); err != nil {
			return nil, fmt.Errorf("scanning invalid ID: %w", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invalid IDs: %w", err)
	}
	return result, nil
}

// RunExists checks if a run has already been stored.
func (s *SQLiteStore) RunExists(id string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking run existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// HELPERS
// =============================================================================

func insertRule(db execer, r *types.Rule) error {
	_, err := db.Exec(sqliteInsertRule, r.ID, r.Name, r.Part, r.MinRepeats, r.MaxRepeats, r.StructuralID)
	if err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

func insertRun(db execer, r *types.Run) error {
	_, err := db.Exec(sqliteInsertRun,
		r.ID,
		r.RuleID,
		r.Part,
		r.InputID.Hex(),
		r.Ranges,
		r.Scanned,
		r.Count,
		r.Total,
		r.CreatedAt.UTC().Format(sqliteTimeLayout),
		int64(r.Duration),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func insertInvalidID(db execer, v *types.InvalidID) error {
	_, err := db.Exec(sqliteInsertInvalidID, v.StructuralID, v.RunID, v.RuleID, v.Value, v.Unit, v.Repeats, v.RangeIndex)
	if err != nil {
		return fmt.Errorf("inserting invalid ID: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*types.Run, error) {
	var r types.Run
	var createdAt string
	var durationNS int64
	err := row.Scan(&r.ID, &r.RuleID, &r.Part, &r.InputID, &r.Ranges, &r.Scanned, &r.Count, &r.Total, &createdAt, &durationNS)
	if err != nil {
		return nil, err
	}
	r.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	r.Duration = time.Duration(durationNS)
	return &r, nil
}
