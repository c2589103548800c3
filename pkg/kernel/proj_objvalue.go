package kernel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Email string

func (e Email) String() string { return string(e) }

// Domain returns the part after '@', empty when the address has none.
func (e Email) Domain() string {
	_, domain, ok := strings.Cut(string(e), "@")
	if !ok {
		return ""
	}
	return domain
}

// FlexID is an identifier the backend may encode either as a JSON number
// or as a JSON string. It is always kept in its string form.
type FlexID string

func (f FlexID) String() string { return string(f) }
func (f FlexID) IsEmpty() bool  { return string(f) == "" }

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}
