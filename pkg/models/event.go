package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is a single detection record as served by GET /events.
// Only the first six fields are shown in the feed table.
type Event struct {
	ID         Token    `json:"id" yaml:"id"`
	CameraID   Token    `json:"camera_id" yaml:"camera_id"`
	Rule       string   `json:"rule" yaml:"rule"`
	Zone       string   `json:"zone" yaml:"zone"`
	Confidence *float64 `json:"confidence" yaml:"confidence"`
	Timestamp  *float64 `json:"timestamp" yaml:"timestamp"` // seconds since epoch

	ObjectType   string   `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	BBox         string   `json:"bbox,omitempty" yaml:"bbox,omitempty"`
	DurationSec  *float64 `json:"duration_sec,omitempty" yaml:"duration_sec,omitempty"`
	SnapshotPath string   `json:"snapshot_path,omitempty" yaml:"snapshot_path,omitempty"`
}

// Token is an identifier the backend may send either as a JSON string or as
// a JSON number. It keeps the literal text and re-encodes it the same way.
// An empty string is a present value, distinct from absent or null.
type Token struct {
	text    string
	numeric bool
	present bool
}

// StringToken builds a Token that encodes as a JSON string.
func StringToken(s string) Token { return Token{text: s, present: true} }

// NumberToken builds a Token that encodes as a JSON number.
func NumberToken(n json.Number) Token {
	return Token{text: n.String(), numeric: true, present: true}
}

func (t Token) String() string { return t.text }

// IsZero reports whether the token was absent or null.
func (t Token) IsZero() bool { return !t.present }

func (t *Token) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Token{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = StringToken(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or a number, got %s", b)
	}
	*t = NumberToken(n)
	return nil
}

func (t Token) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.numeric {
		return []byte(t.text), nil
	}
	return json.Marshal(t.text)
}

// MarshalYAML emits the literal text so yaml output matches the table.
func (t Token) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	if t.numeric {
		return json.Number(t.text), nil
	}
	return t.text, nil
}
