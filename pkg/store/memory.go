package store

import (
	"sort"
	"sync"

	"github.com/Flubio/giftshop/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
// Used for ":memory:" paths and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	inputs   map[types.InputID]InputRecord
	rules    map[string]*types.Rule
	runs     map[string]*types.Run
	runOrder []string                      // run IDs in insertion order
	invalid  map[string][]*types.InvalidID // keyed by run ID
	seen     map[string]bool               // invalid ID structural IDs
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		inputs:  make(map[types.InputID]InputRecord),
		rules:   make(map[string]*types.Rule),
		runs:    make(map[string]*types.Run),
		invalid: make(map[string][]*types.InvalidID),
		seen:    make(map[string]bool),
	}
}

// AddInput records a puzzle input by content hash.
func (m *MemoryStore) AddInput(in InputRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.inputs[in.ID]; !exists {
		m.inputs[in.ID] = in
	}
	return nil
}

// AddRule stores a rule definition.
func (m *MemoryStore) AddRule(r *types.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addRule(r)
	return nil
}

// AddRun stores a run summary.
func (m *MemoryStore) AddRun(r *types.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addRun(r)
	return nil
}

// AddInvalidID stores one flagged ID (deduplicated).
func (m *MemoryStore) AddInvalidID(v *types.InvalidID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addInvalidID(v)
	return nil
}

// SaveRun checks the whole run before writing any of it, then writes it
// under a single lock.
func (m *MemoryStore) SaveRun(r *types.Rule, run *types.Run, invalid []*types.InvalidID) error {
	if err := checkRun(r, run, invalid); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.addRule(r)
	m.addRun(run)
	for _, v := range invalid {
		m.addInvalidID(v)
	}
	return nil
}

func (m *MemoryStore) addRule(r *types.Rule) {
	if _, exists := m.rules[r.ID]; !exists {
		copied := *r
		m.rules[r.ID] = &copied
	}
}

func (m *MemoryStore) addRun(r *types.Run) {
	if _, exists := m.runs[r.ID]; exists {
		return
	}
	copied := *r
	m.runs[r.ID] = &copied
	m.runOrder = append(m.runOrder, r.ID)
}

func (m *MemoryStore) addInvalidID(v *types.InvalidID) {
	if m.seen[v.StructuralID] {
		return
	}
	m.seen[v.StructuralID] = true
	copied := *v
	m.invalid[v.RunID] = append(m.invalid[v.RunID], &copied)
}

// GetInputs retrieves all recorded inputs, ordered by ID.
func (m *MemoryStore) GetInputs() ([]InputRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]InputRecord, 0, len(m.inputs))
	for _, in := range m.inputs {
		result = append(result, in)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.Hex() < result[j].ID.Hex()
	})
	return result, nil
}

// GetRules retrieves all stored rules, ordered by ID.
func (m *MemoryStore) GetRules() ([]*types.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		copied := *r
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetRun retrieves a run by ID.
func (m *MemoryStore) GetRun(id string) (*types.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

// GetRuns retrieves all runs in insertion order.
func (m *MemoryStore) GetRuns() ([]*types.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Run, 0, len(m.runOrder))
	for _, id := range m.runOrder {
		copied := *m.runs[id]
		result = append(result, &copied)
	}
	return result, nil
}

// GetInvalidIDs retrieves the IDs flagged by a run in scan order.
func (m *MemoryStore) GetInvalidIDs(runID string) ([]*types.InvalidID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.invalid[runID]
	result := make([]*types.InvalidID, 0, len(stored))
	for _, v := range stored {
		copied := *v
		result = append(result, &copied)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].RangeIndex != result[j].RangeIndex {
			return result[i].RangeIndex < result[j].RangeIndex
		}
		return result[i].Value < result[j].Value
	})
	return result, nil
}

// RunExists checks if a run has already been stored.
func (m *MemoryStore) RunExists(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.runs[id]
	return ok, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
