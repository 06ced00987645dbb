package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Flubio/giftshop/pkg/types"
	"github.com/jackc/pgx/v5"
)

// postgresSchema creates the PostgreSQL schema. It mirrors the SQLite schema
// with native types.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inputs (
		id TEXT PRIMARY KEY,
		size BIGINT NOT NULL,
		ranges INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		part INTEGER NOT NULL,
		min_repeats INTEGER NOT NULL,
		max_repeats INTEGER NOT NULL,
		structural_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		part INTEGER NOT NULL,
		input_id TEXT NOT NULL REFERENCES inputs(id),
		ranges INTEGER NOT NULL,
		scanned BIGINT NOT NULL,
		count BIGINT NOT NULL,
		total BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		duration_ns BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invalid_ids (
		id BIGSERIAL PRIMARY KEY,
		structural_id TEXT NOT NULL UNIQUE,
		run_id TEXT NOT NULL REFERENCES runs(id),
		rule_id TEXT NOT NULL,
		value BIGINT NOT NULL,
		unit TEXT NOT NULL,
		repeats INTEGER NOT NULL,
		range_index INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invalid_ids_run_id ON invalid_ids(run_id)`,
}

const postgresSchemaVersion = `
	INSERT INTO schema_version (version)
	SELECT $1::INTEGER WHERE NOT EXISTS (SELECT 1 FROM schema_version)`

// PostgresStore implements Store on a single PostgreSQL connection.
type PostgresStore struct {
	mu   sync.Mutex // pgx.Conn is not safe for concurrent use
	conn *pgx.Conn
}

// NewPostgres connects to dsn and ensures the schema exists.
func NewPostgres(dsn string) (*PostgresStore, error) {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	if _, err := conn.Exec(ctx, postgresSchemaVersion, SchemaVersion); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("recording schema version: %w", err)
	}

	return &PostgresStore{conn: conn}, nil
}

// AddInput records a puzzle input by content hash.
func (p *PostgresStore) AddInput(in InputRecord) error {
	return p.exec("inserting input",
		`INSERT INTO inputs (id, size, ranges) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		in.ID.Hex(), in.Size, in.Ranges)
}

const (
	postgresInsertRule = `
		INSERT INTO rules (id, name, part, min_repeats, max_repeats, structural_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`
	postgresInsertRun = `
		INSERT INTO runs (id, rule_id, part, input_id, ranges, scanned, count, total, created_at, duration_ns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING`
	postgresInsertInvalidID = `
		INSERT INTO invalid_ids (structural_id, run_id, rule_id, value, unit, repeats, range_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`
)

// AddRule stores a rule definition.
func (p *PostgresStore) AddRule(r *types.Rule) error {
	return p.exec("inserting rule", postgresInsertRule, ruleArgs(r)...)
}

// AddRun stores a run summary.
func (p *PostgresStore) AddRun(r *types.Run) error {
	return p.exec("inserting run", postgresInsertRun, runArgs(r)...)
}

// AddInvalidID stores one flagged ID (deduplicated).
func (p *PostgresStore) AddInvalidID(v *types.InvalidID) error {
	return p.exec("inserting invalid ID", postgresInsertInvalidID, invalidIDArgs(v)...)
}

// SaveRun stores a rule, a run and its invalid IDs in one transaction.
func (p *PostgresStore) SaveRun(r *types.Rule, run *types.Run, invalid []*types.InvalidID) error {
	if err := checkRun(r, run, invalid); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx := context.Background()
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, postgresInsertRule, ruleArgs(r)...); err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	if _, err := tx.Exec(ctx, postgresInsertRun, runArgs(run)...); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	for _, v := range invalid {
		if _, err := tx.Exec(ctx, postgresInsertInvalidID, invalidIDArgs(v)...); err != nil {
			return fmt.Errorf("inserting invalid ID: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// GetInputs retrieves all recorded inputs.
func (p *PostgresStore) GetInputs() ([]InputRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.conn.Query(context.Background(), "SELECT id, size, ranges FROM inputs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying inputs: %w", err)
	}
	defer rows.Close()

	var inputs []InputRecord
	for rows.Next() {
		var in InputRecord
		var id string
		if err := rows.Scan(&id, &in.Size, &in.Ranges); err != nil {
			return nil, fmt.Errorf("scanning input: %w", err)
		}
		if in.ID, err = types.ParseInputID(id); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inputs: %w", err)
	}
	return inputs, nil
}

// GetRules retrieves all stored rules.
func (p *PostgresStore) GetRules() ([]*types.Rule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.conn.Query(context.Background(), `
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

// GetRun retrieves a run by ID.
func (p *PostgresStore) GetRun(id string) (*types.Run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	row := p.conn.QueryRow(context.Background(), selectRunColumns+" WHERE id = $1", id)
	r, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return r, nil
}

// GetRuns retrieves all runs, oldest first.
func (p *PostgresStore) GetRuns() ([]*types.Run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.conn.Query(context.Background(), selectRunColumns+" ORDER BY created_at, part, rule_id")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
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
func (p *PostgresStore) GetInvalidIDs(runID string) ([]*types.InvalidID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.conn.Query(context.Background(), `
		SELECT structural_id, run_id, rule_id, value, unit, repeats, range_index
		FROM invalid_ids
		WHERE run_id = $1
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
func (p *PostgresStore) RunExists(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var exists bool
	err := p.conn.QueryRow(context.Background(), "SELECT EXISTS (SELECT 1 FROM runs WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking run existence: %w", err)
	}
	return exists, nil
}

// Close closes the connection.
func (p *PostgresStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.Close(context.Background())
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *PostgresStore) exec(what, sql string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.conn.Exec(context.Background(), sql, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func ruleArgs(r *types.Rule) []any {
	return []any{r.ID, r.Name, r.Part, r.MinRepeats, r.MaxRepeats, r.StructuralID}
}

func runArgs(r *types.Run) []any {
	return []any{r.ID, r.RuleID, r.Part, r.InputID.Hex(), r.Ranges, r.Scanned, r.Count, r.Total, r.CreatedAt.UTC(), int64(r.Duration)}
}

func invalidIDArgs(v *types.InvalidID) []any {
	return []any{v.StructuralID, v.RunID, v.RuleID, v.Value, v.Unit, v.Repeats, v.RangeIndex}
}

func scanPostgresRun(row pgx.Row) (*types.Run, error) {
	var r types.Run
	var inputID string
	var durationNS int64
	err := row.Scan(&r.ID, &r.RuleID, &r.Part, &inputID, &r.Ranges, &r.Scanned, &r.Count, &r.Total, &r.CreatedAt, &durationNS)
	if err != nil {
		return nil, err
	}
	if r.InputID, err = types.ParseInputID(inputID); err != nil {
		return nil, err
	}
	r.Duration = time.Duration(durationNS)
	return &r, nil
}
