package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape is the envelope a job-match payload arrived in.
type Shape string

const (
	ShapeJobs         Shape = "jobs"
	ShapeResults      Shape = "results"
	ShapeArray        Shape = "array"
	ShapeUnrecognized Shape = "unrecognized"
)

// Result is a normalized job-match payload. Jobs is never nil.
type Result struct {
	Jobs     []Job           `json:"jobs"`
	Shape    Shape           `json:"shape"`
	Dropped  int             `json:"dropped,omitempty"`
	// Problems lists fields that could not be read, as "job[i].field: reason".
	Problems []string        `json:"problems,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// Anomalies lists what made the payload deviate from a clean decode.
func (r Result) Anomalies() []string {
	var out []string
	if r.Shape == ShapeUnrecognized {
		out = append(out, "unrecognized job-match envelope")
	}
	if r.Dropped > 0 {
		out = append(out, fmt.Sprintf("%d job entries are not objects", r.Dropped))
	}
	out = append(out, r.Problems...)
	return out
}

// Normalize reduces a job-match payload to a list of jobs. The envelope is
// tried in a fixed order: a "jobs" array, a "results" array, then a bare
// array. Anything else yields no jobs. Every object entry is kept; fields
// that cannot be read are left absent and listed in Problems. Non-object
// entries are dropped and counted. Normalize never fails.
func Normalize(raw []byte) Result {
	res := Result{
		Jobs:  []Job{},
		Shape: ShapeUnrecognized,
		Raw:   append(json.RawMessage(nil), raw...),
	}

	items, shape := extract(raw)
	res.Shape = shape

	for i, item := range items {
		job, problems, err := decodeJob(item)
		if err != nil {
			res.Dropped++
			continue
		}
		for _, p := range problems {
			res.Problems = append(res.Problems, fmt.Sprintf("job[%d].%s", i, p))
		}
		res.Jobs = append(res.Jobs, job)
	}
	return res
}

func extract(raw []byte) ([]json.RawMessage, Shape) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ShapeUnrecognized
	}

	switch trimmed[0] {
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, ShapeUnrecognized
		}
		if items, ok := asArray(envelope["jobs"]); ok {
			return items, ShapeJobs
		}
		if items, ok := asArray(envelope["results"]); ok {
			return items, ShapeResults
		}
	case '[':
		if items, ok := asArray(trimmed); ok {
			return items, ShapeArray
		}
	}
	return nil, ShapeUnrecognized
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}
