// Package analysis models backend resume analysis results and decodes the
// payload variants the backend produces.
package analysis

import (
	"sort"
	"strings"
)

// Result is the analysis of one resume. Every score is optional; absence is
// kept distinct from zero.
type Result struct {
	OverallScore    *float64        `json:"overall_score,omitempty"`
	SubScores       SubScores       `json:"sub_scores"`
	WordCount       *int            `json:"word_count,omitempty"`
	Skills          []DetectedSkill `json:"skills"`
	Recommendations []string        `json:"recommendations"`
	Structure       Structure       `json:"structure"`
	ExtractedText   *string         `json:"extracted_text,omitempty"`
}

type SubScores struct {
	Content      *float64 `json:"content,omitempty"`
	Format       *float64 `json:"format,omitempty"`
	Completeness *float64 `json:"completeness,omitempty"`
}

type DetectedSkill struct {
	Name        string       `json:"name"`
	Alias       string       `json:"alias,omitempty"`
	Occurrences []Occurrence `json:"occurrences,omitempty"`
}

// Occurrence is a place in the resume text where a skill was matched.
type Occurrence struct {
	Text         string `json:"text"`
	MatchedAlias string `json:"matched_alias,omitempty"`
	Context      string `json:"context,omitempty"`
}

func (r *Result) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		names = append(names, s.Name)
	}
	return names
}

func (r *Result) skill(name string) *DetectedSkill {
	for i := range r.Skills {
		if strings.EqualFold(r.Skills[i].Name, name) {
			return &r.Skills[i]
		}
	}
	return nil
}

// Structure flags are a set: a flag missing from the map is unknown, not false.
type Structure map[string]bool

const (
	FlagContactInfo         = "has_contact_info"
	FlagEducation           = "has_education"
	FlagExperience          = "has_experience"
	FlagSkills              = "has_skills"
	FlagProfessionalSummary = "has_professional_summary"
)

// flagAliases maps alternative backend spellings onto the canonical flags.
var flagAliases = map[string]string{
	"has_work_experience": FlagExperience,
	"has_skills_section":  FlagSkills,
	"has_summary":         FlagProfessionalSummary,
}

type FlagDef struct {
	Key   string
	Label string
}

// KnownFlags is the display order of the structure checklist.
var KnownFlags = []FlagDef{
	{Key: FlagContactInfo, Label: "Contact information"},
	{Key: FlagEducation, Label: "Education"},
	{Key: FlagExperience, Label: "Work experience"},
	{Key: FlagSkills, Label: "Skills section"},
	{Key: FlagProfessionalSummary, Label: "Professional summary"},
}

func (s Structure) Flag(key string) (value, present bool) {
	value, present = s[key]
	return value, present
}

// Extra returns flags outside KnownFlags, sorted by key.
func (s Structure) Extra() []string {
	known := make(map[string]bool, len(KnownFlags))
	for _, f := range KnownFlags {
		known[f.Key] = true
	}
	var out []string
	for k := range s {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func canonicalFlag(key string) string {
	if c, ok := flagAliases[key]; ok {
		return c
	}
	return key
}
