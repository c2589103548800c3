package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	// KindReady carries a Result.
	KindReady Kind = "ready"
	// KindNotReady is the backend's "analysis not finished yet" reply.
	KindNotReady Kind = "not_ready"
	// KindMalformed is any payload that yields no usable result.
	KindMalformed Kind = "malformed"
)

// Payload is a decoded analysis response. Problems lists fields that were
// present but could not be read; they are left absent in Result.
type Payload struct {
	Kind     Kind     `json:"kind"`
	Result   *Result  `json:"result,omitempty"`
	Status   string   `json:"status,omitempty"`
	Message  string   `json:"message,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

var resultKeys = []string{
	"overall_score", "analysis_details", "word_count", "skills_found", "skill_matches",
	"recommendations", "improvement_suggestions", "structure_analysis",
}

// Decode reads either the nested {"analysis_results": {...}} form, the flat
// form with result fields at the top level, or a {status, message} reply.
// It never fails; unusable payloads come back as KindMalformed.
func Decode(raw []byte) Payload {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &top); err != nil || top == nil {
		return Payload{Kind: KindMalformed, Problems: []string{"payload is not a JSON object"}}
	}

	body := top
	if nested, ok := top["analysis_results"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err != nil || inner == nil {
			return Payload{Kind: KindMalformed, Problems: []string{"analysis_results is not an object"}}
		}
		body = inner
	} else if !hasAny(top, resultKeys) {
		status, hasStatus := stringField(top, "status")
		message, hasMessage := stringField(top, "message")
		if hasStatus || hasMessage {
			return Payload{Kind: KindNotReady, Status: status, Message: message}
		}
		return Payload{Kind: KindMalformed, Problems: []string{"no analysis fields found"}}
	}

	d := &decoder{}
	res := &Result{
		Skills:          []DetectedSkill{},
		Recommendations: []string{},
		Structure:       Structure{},
	}

	res.OverallScore = d.number(body, "overall_score")
	res.SubScores = d.subScores(body)
	if wc := d.number(body, "word_count"); wc != nil {
		n := int(*wc)
		res.WordCount = &n
	}
	res.Skills = d.skills(body["skills_found"])
	d.attachMatches(res, body["skill_matches"])

	res.Recommendations = d.stringList(body, "recommendations")
	if len(res.Recommendations) == 0 {
		res.Recommendations = d.stringList(body, "improvement_suggestions")
	}
	res.Structure = d.structure(body["structure_analysis"])

	text, ok := stringField(top, "extracted_text")
	if !ok {
		text, ok = stringField(body, "extracted_text")
	}
	if ok {
		res.ExtractedText = &text
	}

	return Payload{Kind: KindReady, Result: res, Problems: d.problems}
}

type decoder struct {
	problems []string
}

func (d *decoder) fail(field string, err error) {
	d.problems = append(d.problems, fmt.Sprintf("%s: %v", field, err))
}

func (d *decoder) number(obj map[string]json.RawMessage, key string) *float64 {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	f, err := parseNumber(raw)
	if err != nil {
		d.fail(key, err)
		return nil
	}
	return &f
}

func (d *decoder) subScores(body map[string]json.RawMessage) SubScores {
	details := body
	if raw, ok := body["analysis_details"]; ok && !isNull(raw) {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil {
			d.fail("analysis_details", err)
		} else {
			details = inner
		}
	}
	return SubScores{
		Content:      d.number(details, "content_score"),
		Format:       d.number(details, "format_score"),
		Completeness: d.number(details, "completeness_score"),
	}
}

func (d *decoder) skills(raw json.RawMessage) []DetectedSkill {
	out := []DetectedSkill{}
	if len(raw) == 0 || isNull(raw) {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail("skills_found", err)
		return out
	}

	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		switch {
		case len(trimmed) > 0 && trimmed[0] == '"':
			var name string
			if err := json.Unmarshal(trimmed, &name); err == nil && strings.TrimSpace(name) != "" {
				out = append(out, DetectedSkill{Name: strings.TrimSpace(name)})
				continue
			}
		case len(trimmed) > 0 && trimmed[0] == '{':
			var obj struct {
				Name         string `json:"name"`
				Alias        string `json:"alias"`
				MatchedAlias string `json:"matched_alias"`
			}
			if err := json.Unmarshal(trimmed, &obj); err == nil && strings.TrimSpace(obj.Name) != "" {
				alias := obj.Alias
				if alias == "" {
					alias = obj.MatchedAlias
				}
				out = append(out, DetectedSkill{Name: strings.TrimSpace(obj.Name), Alias: alias})
				continue
			}
		}
		d.fail(fmt.Sprintf("skills_found[%d]", i), fmt.Errorf("expected a name or an object with a name"))
	}
	return out
}

func (d *decoder) attachMatches(res *Result, raw json.RawMessage) {
	if len(raw) == 0 || isNull(raw) {
		return
	}

	var matches []struct {
		SkillName string       `json:"skill_name"`
		Matches   []Occurrence `json:"matches"`
	}
	if err := json.Unmarshal(raw, &matches); err != nil {
		d.fail("skill_matches", err)
		return
	}

	for _, m := range matches {
		name := strings.TrimSpace(m.SkillName)
		if name == "" {
			continue
		}
		s := res.skill(name)
		if s == nil {
			res.Skills = append(res.Skills, DetectedSkill{Name: name})
			s = &res.Skills[len(res.Skills)-1]
		}
		s.Occurrences = append(s.Occurrences, m.Matches...)
		if s.Alias == "" {
			for _, occ := range m.Matches {
				if occ.MatchedAlias != "" && !strings.EqualFold(occ.MatchedAlias, s.Name) {
					s.Alias = occ.MatchedAlias
					break
				}
			}
		}
	}
}

func (d *decoder) stringList(obj map[string]json.RawMessage, key string) []string {
	out := []string{}
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(key, err)
		return out
	}
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			d.fail(fmt.Sprintf("%s[%d]", key, i), err)
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) structure(raw json.RawMessage) Structure {
	out := Structure{}
	if len(raw) == 0 || isNull(raw) {
		return out
	}

	var flags map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flags); err != nil {
		d.fail("structure_analysis", err)
		return out
	}
	for key, v := range flags {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			d.fail("structure_analysis."+key, err)
			continue
		}
		canonical := canonicalFlag(key)
		if _, exists := out[canonical]; exists && canonical != key {
			continue
		}
		out[canonical] = b
	}
	return out
}

func hasAny(obj map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func parseNumber(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var f float64
	err := json.Unmarshal(trimmed, &f)
	return f, err
}
