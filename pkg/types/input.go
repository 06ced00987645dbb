package types

import (
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
)

// InputID is the SHA-1 of a raw puzzle input (20 bytes).
type InputID [20]byte

// ComputeInputID computes SHA-1(input).
func ComputeInputID(input []byte) InputID {
	return InputID(sha1.Sum(input))
}

// Hex returns 40-character hex string.
func (id InputID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements Stringer (returns Hex()).
func (id InputID) String() string {
	return id.Hex()
}

// ParseInputID parses 40-char hex string to InputID.
func ParseInputID(hexStr string) (InputID, error) {
	if len(hexStr) != 40 {
		return InputID{}, fmt.Errorf("invalid input ID length: expected 40, got %d", len(hexStr))
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return InputID{}, fmt.Errorf("invalid hex string: %w", err)
	}

	var id InputID
	copy(id[:], decoded)
	return id, nil
}

// MarshalText implements encoding.TextMarshaler, used by both JSON and YAML.
func (id InputID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *InputID) UnmarshalText(text []byte) error {
	parsed, err := ParseInputID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer for SQL serialization.
func (id InputID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for SQL deserialization.
func (id *InputID) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into InputID", value)
	}
}
