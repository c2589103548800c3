package matching

import (
	"bytes"
	"encoding/json"
	"strings"
)

type SkillKind int

const (
	SkillKindUnknown SkillKind = iota
	SkillKindText
	SkillKindObject
)

// RequiredSkill is a required-skills entry as sent by the backend: either a
// plain string or an object with a name. The raw entry is kept so that
// diagnostics see the original shape; the display string is derived on read.
type RequiredSkill struct {
	kind SkillKind
	raw  json.RawMessage
}

func TextSkill(name string) RequiredSkill {
	raw, _ := json.Marshal(name)
	return RequiredSkill{kind: SkillKindText, raw: raw}
}

func (s *RequiredSkill) UnmarshalJSON(b []byte) error {
	s.raw = append(json.RawMessage(nil), b...)

	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0:
		s.kind = SkillKindUnknown
	case trimmed[0] == '"':
		s.kind = SkillKindText
	case trimmed[0] == '{':
		s.kind = SkillKindObject
	default:
		s.kind = SkillKindUnknown
	}
	return nil
}

// MarshalJSON writes the entry back in its original shape.
func (s RequiredSkill) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

func (s RequiredSkill) Kind() SkillKind      { return s.kind }
func (s RequiredSkill) Raw() json.RawMessage { return s.raw }

// DisplayName returns the skill name, empty when the entry carries none.
func (s RequiredSkill) DisplayName() string {
	switch s.kind {
	case SkillKindText:
		var name string
		if err := json.Unmarshal(s.raw, &name); err != nil {
			return ""
		}
		return strings.TrimSpace(name)
	case SkillKindObject:
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(s.raw, &obj); err != nil {
			return ""
		}
		return strings.TrimSpace(obj.Name)
	default:
		return ""
	}
}

// DisplayNames resolves a list of entries, skipping the nameless ones.
func DisplayNames(skills []RequiredSkill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if name := s.DisplayName(); name != "" {
			out = append(out, name)
		}
	}
	return out
}
