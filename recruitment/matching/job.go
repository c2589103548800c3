package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Abraxas-365/resumelens/pkg/kernel"
)

// DefaultCurrency is shown when a salary range comes without a currency.
const DefaultCurrency = "руб."

// Job is a job posting the backend associated with a resume.
type Job struct {
	ID                  kernel.JobID    `json:"id"`
	Title               string          `json:"title"`
	CompanyName         *string         `json:"company_name,omitempty"`
	RequiredSkills      []RequiredSkill `json:"required_skills"`
	MatchingSkillsCount *int            `json:"matching_skills_count,omitempty"`
	Salary              *SalaryRange    `json:"salary,omitempty"`
	Location            *string         `json:"location,omitempty"`
	JobType             *string         `json:"job_type,omitempty"`
	Slug                string          `json:"slug,omitempty"`
}

// SalaryRange exists only when both bounds are known.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// NavigationKey is the slug when present, the id otherwise. It is empty
// for jobs that carry neither.
func (j Job) NavigationKey() string {
	if j.Slug != "" {
		return j.Slug
	}
	return j.ID.String()
}

func (j Job) Company() (string, bool) {
	if j.CompanyName == nil || *j.CompanyName == "" {
		return "", false
	}
	return *j.CompanyName, true
}

// jobReader pulls fields out of one job entry. A field that cannot be read
// is left absent and noted in problems.
type jobReader struct {
	obj      map[string]json.RawMessage
	problems []string
}

func (r *jobReader) fail(field string, err error) {
	r.problems = append(r.problems, fmt.Sprintf("%s: %v", field, err))
}

func (r *jobReader) raw(key string) (json.RawMessage, bool) {
	raw, ok := r.obj[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (r *jobReader) id(key string) kernel.FlexID {
	raw, ok := r.raw(key)
	if !ok {
		return ""
	}
	var id kernel.FlexID
	if err := json.Unmarshal(raw, &id); err != nil {
		r.fail(key, err)
		return ""
	}
	return id
}

func (r *jobReader) str(key string) *string {
	raw, ok := r.raw(key)
	if !ok {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		r.fail(key, errors.New("not a string"))
		return nil
	}
	return &v
}

func (r *jobReader) number(key string) *float64 {
	raw, ok := r.raw(key)
	if !ok {
		return nil
	}
	var n flexNumber
	if err := json.Unmarshal(raw, &n); err != nil {
		r.fail(key, err)
		return nil
	}
	f := float64(n)
	return &f
}

func (r *jobReader) skills(key string) []RequiredSkill {
	raw, ok := r.raw(key)
	if !ok {
		return []RequiredSkill{}
	}
	var skills []RequiredSkill
	if err := json.Unmarshal(raw, &skills); err != nil {
		r.fail(key, errors.New("not an array"))
		return []RequiredSkill{}
	}
	return skills
}

// decodeJob reads one entry. Only entries that are not JSON objects are
// rejected; malformed fields are reported in the returned problems.
func decodeJob(raw json.RawMessage) (Job, []string, error) {
	r := &jobReader{}
	if err := json.Unmarshal(raw, &r.obj); err != nil || r.obj == nil {
		return Job{}, nil, errors.New("job entry is not an object")
	}

	job := Job{
		ID:             kernel.NewJobID(r.id("id").String()),
		RequiredSkills: r.skills("required_skills"),
		Location:       nonEmpty(r.str("location")),
		JobType:        nonEmpty(r.str("job_type")),
	}
	if title := r.str("title"); title != nil {
		job.Title = *title
	}
	if slug := r.str("slug"); slug != nil {
		job.Slug = strings.TrimSpace(*slug)
	}
	company, _ := r.raw("company")
	job.CompanyName = companyName(company, r.str("company_name"))

	if n := r.number("matching_skills_count"); n != nil {
		count := int(*n)
		job.MatchingSkillsCount = &count
	}

	lo, hi := r.number("salary_min"), r.number("salary_max")
	if lo != nil && hi != nil {
		currency := DefaultCurrency
		if c := nonEmpty(r.str("salary_currency")); c != nil {
			currency = *c
		}
		job.Salary = &SalaryRange{Min: *lo, Max: *hi, Currency: currency}
	}

	return job, r.problems, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// companyName prefers company.name, then a string company, then company_name.
func companyName(company json.RawMessage, fallback *string) *string {
	trimmed := bytes.TrimSpace(company)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{':
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(trimmed, &obj); err == nil && obj.Name != "" {
				return &obj.Name
			}
		case '"':
			var name string
			if err := json.Unmarshal(trimmed, &name); err == nil && name != "" {
				return &name
			}
		}
	}
	return nonEmpty(fallback)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// flexNumber accepts JSON numbers and numeric strings ("120000.00").
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		*n = flexNumber(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}
