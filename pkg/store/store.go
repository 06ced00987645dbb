package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Flubio/giftshop/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store provides persistence for scan runs.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite, PostgreSQL).
type Store interface {
	// AddInput records a puzzle input by content hash.
	AddInput(in InputRecord) error

	// AddRule stores a rule definition.
	AddRule(r *types.Rule) error

	// AddRun stores a run summary. Re-adding a run ID is a no-op.
	AddRun(r *types.Run) error

	// AddInvalidID stores one flagged ID (deduplicated on structural ID).
	AddInvalidID(v *types.InvalidID) error

	// SaveRun stores a rule, one of its runs and every ID the run flagged
	// atomically: either all of them are written or none are.
	SaveRun(r *types.Rule, run *types.Run, invalid []*types.InvalidID) error

	// GetInputs retrieves all recorded inputs.
	GetInputs() ([]InputRecord, error)

	// GetRules retrieves all stored rules.
	GetRules() ([]*types.Rule, error)

	// GetRun retrieves a run by ID, or ErrNotFound.
	GetRun(id string) (*types.Run, error)

	// GetRuns retrieves all runs, oldest first.
	GetRuns() ([]*types.Run, error)

	// GetInvalidIDs retrieves the IDs flagged by a run in scan order.
	GetInvalidIDs(runID string) ([]*types.InvalidID, error)

	// RunExists checks if a run has already been stored.
	RunExists(id string) (bool, error)

	// Close releases the backend.
	Close() error
}

// InputRecord describes a stored puzzle input.
type InputRecord struct {
	ID     types.InputID `json:"id" yaml:"id"`
	Size   int64         `json:"size" yaml:"size"`
	Ranges int           `json:"ranges" yaml:"ranges"`
}

// Config for store initialization.
type Config struct {
	// Path selects the backend:
	//   ":memory:"                      in-process MemoryStore
	//   "postgres://..." or
	//   "postgresql://..."              PostgresStore
	//   anything else                   SQLite database file
	Path string
}

// New creates a Store for the configured path.
func New(cfg Config) (Store, error) {
	switch {
	case cfg.Path == "":
		return nil, fmt.Errorf("path is required")
	case cfg.Path == ":memory:":
		return NewMemory(), nil
	case IsPostgresDSN(cfg.Path):
		return NewPostgres(cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}

// IsPostgresDSN reports whether path is a PostgreSQL connection URL.
func IsPostgresDSN(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// checkRun rejects a run whose flagged IDs do not belong to it or do not
// match its count.
func checkRun(r *types.Rule, run *types.Run, invalid []*types.InvalidID) error {
	if run.RuleID != r.ID {
		return fmt.Errorf("run %s belongs to rule %s, not %s", run.ID, run.RuleID, r.ID)
	}
	if int64(len(invalid)) != run.Count {
		return fmt.Errorf("run %s counts %d invalid IDs, got %d", run.ID, run.Count, len(invalid))
	}
	for _, v := range invalid {
		if v.RunID != run.ID {
			return fmt.Errorf("invalid ID %d belongs to run %s, not %s", v.Value, v.RunID, run.ID)
		}
	}
	return nil
}
