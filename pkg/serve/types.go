package serve

import (
	"encoding/json"

	"github.com/Flubio/giftshop/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "solve" | "scan" | "scan_batch" | "rules" | "close"
	Payload json.RawMessage `json:"payload"`
}

// SolvePayload is the payload for "solve" requests
type SolvePayload struct {
	Input string `json:"input"`
}

// ScanPayload is the payload for "scan" requests. Rule selects a rule by ID
// and takes precedence over Part.
type ScanPayload struct {
	Input string `json:"input"`
	Part  int    `json:"part,omitempty"`
	Rule  string `json:"rule,omitempty"`
	List  bool   `json:"list,omitempty"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []ScanPayload `json:"items"`
}

// ScanData is the data field for "scan" responses
type ScanData struct {
	Run        *types.Run        `json:"run"`
	InvalidIDs []types.InvalidID `json:"invalid_ids,omitempty"`
}

// ScanBatchResult is one item of a "scan_batch" response. Results line up
// with the request items; a failed item carries Error and no Run.
type ScanBatchResult struct {
	Run        *types.Run        `json:"run,omitempty"`
	InvalidIDs []types.InvalidID `json:"invalid_ids,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ScanBatchData is the data field for "scan_batch" responses
type ScanBatchData struct {
	Results []ScanBatchResult `json:"results"`
	Total   int64             `json:"total"` // invalid IDs across all items
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "solve" | "scan" | "scan_batch" | "rules" | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string   `json:"version"`
	Rules   []string `json:"rules"`
}
