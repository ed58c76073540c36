package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuizAnswers is the opaque question-key to answer mapping captured by the
// quiz flow. Keys follow the client's positional convention; the projection
// layer owns their business meaning.
type QuizAnswers map[string]string

// Value serializes the mapping to jsonb.
func (q QuizAnswers) Value() (driver.Value, error) {
	if q == nil {
		return nil, nil
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz answers: %w", err)
	}
	return raw, nil
}

// Scan reads the mapping back from a jsonb column.
func (q *QuizAnswers) Scan(src any) error {
	if src == nil {
		*q = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported quiz answers type %T", src)
	}
	if len(raw) == 0 {
		*q = nil
		return nil
	}
	return json.Unmarshal(raw, q)
}

// Get returns the answer for key, empty when absent.
func (q QuizAnswers) Get(key string) string {
	if q == nil {
		return ""
	}
	return q[key]
}
