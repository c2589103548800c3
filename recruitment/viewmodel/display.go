package viewmodel

import (
	"math"
	"strconv"

	"github.com/Abraxas-365/resumelens/recruitment/analysis"
	"github.com/Abraxas-365/resumelens/recruitment/matching"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	NoData              = "no data"
	CompanyNotSpecified = "Company not specified"
	SalaryNotSpecified  = "Salary not specified"
	TextNotExtracted    = "Text was not extracted"
)

// ScoreView renders an optional 0-100 score. Progress treats an absent
// score as 0 for the progress indicator only; Text says "no data".
type ScoreView struct {
	Value    *float64    `json:"value"`
	Progress float64     `json:"progress"`
	Text     string      `json:"text"`
	Tone     resume.Tone `json:"tone"`
}

func Score(v *float64) ScoreView {
	if v == nil {
		return ScoreView{Progress: 0, Text: NoData, Tone: resume.ToneDefault}
	}
	return ScoreView{
		Value:    v,
		Progress: math.Max(0, math.Min(100, *v)),
		Text:     strconv.FormatFloat(*v, 'f', -1, 64),
		Tone:     ScoreTone(*v),
	}
}

func ScoreTone(v float64) resume.Tone {
	switch {
	case v > 70:
		return resume.ToneSuccess
	case v > 40:
		return resume.ToneWarning
	default:
		return resume.ToneError
	}
}

// StarRating maps a 0-100 score to 0-5 stars in half-star steps.
func StarRating(v *float64) *float64 {
	if v == nil {
		return nil
	}
	stars := math.Round(*v/20*2) / 2
	stars = math.Max(0, math.Min(5, stars))
	return &stars
}

type SkillView struct {
	Name        string                `json:"name"`
	Alias       string                `json:"alias,omitempty"`
	Occurrences []analysis.Occurrence `json:"occurrences,omitempty"`
}

type ChecklistItem struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Present *bool  `json:"present"`
	Text    string `json:"text"`
}

type AnalysisView struct {
	Overall         ScoreView       `json:"overall"`
	Rating          *float64        `json:"rating,omitempty"`
	Content         ScoreView       `json:"content"`
	Format          ScoreView       `json:"format"`
	Completeness    ScoreView       `json:"completeness"`
	WordCount       *int            `json:"word_count,omitempty"`
	WordCountText   string          `json:"word_count_text"`
	SkillsCount     int             `json:"skills_count"`
	Skills          []SkillView     `json:"skills"`
	Recommendations []string        `json:"recommendations"`
	Checklist       []ChecklistItem `json:"checklist"`
	ExtractedText   *string         `json:"extracted_text,omitempty"`
	ExtractedNotice string          `json:"extracted_notice,omitempty"`
}

func NewAnalysisView(r analysis.Result) AnalysisView {
	v := AnalysisView{
		Overall:         Score(r.OverallScore),
		Rating:          StarRating(r.OverallScore),
		Content:         Score(r.SubScores.Content),
		Format:          Score(r.SubScores.Format),
		Completeness:    Score(r.SubScores.Completeness),
		WordCount:       r.WordCount,
		WordCountText:   NoData,
		SkillsCount:     len(r.Skills),
		Skills:          make([]SkillView, 0, len(r.Skills)),
		Recommendations: append([]string{}, r.Recommendations...),
		Checklist:       checklist(r.Structure),
		ExtractedText:   r.ExtractedText,
	}
	if r.WordCount != nil {
		v.WordCountText = strconv.Itoa(*r.WordCount)
	}
	for _, s := range r.Skills {
		v.Skills = append(v.Skills, SkillView{Name: s.Name, Alias: s.Alias, Occurrences: s.Occurrences})
	}
	if r.ExtractedText == nil || *r.ExtractedText == "" {
		v.ExtractedNotice = TextNotExtracted
	}
	return v
}

func checklist(s analysis.Structure) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(analysis.KnownFlags))
	add := func(key, label string) {
		item := ChecklistItem{Key: key, Label: label, Text: NoData}
		if v, ok := s.Flag(key); ok {
			item.Present = &v
			item.Text = "no"
			if v {
				item.Text = "yes"
			}
		}
		items = append(items, item)
	}

	for _, f := range analysis.KnownFlags {
		add(f.Key, f.Label)
	}
	for _, key := range s.Extra() {
		add(key, key)
	}
	return items
}

type JobView struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	CompanyKnown   bool     `json:"company_known"`
	RequiredSkills []string `json:"required_skills"`
	MatchingSkills *int     `json:"matching_skills,omitempty"`
	Salary         string   `json:"salary"`
	HasSalary      bool     `json:"has_salary"`
	Location       *string  `json:"location,omitempty"`
	JobType        *string  `json:"job_type,omitempty"`
	NavigationKey  string   `json:"navigation_key"`
}

func NewJobView(j matching.Job) JobView {
	v := JobView{
		ID:             j.ID.String(),
		Title:          j.Title,
		Company:        CompanyNotSpecified,
		RequiredSkills: matching.DisplayNames(j.RequiredSkills),
		MatchingSkills: j.MatchingSkillsCount,
		Salary:         SalaryNotSpecified,
		Location:       j.Location,
		JobType:        j.JobType,
		NavigationKey:  j.NavigationKey(),
	}
	if name, ok := j.Company(); ok {
		v.Company = name
		v.CompanyKnown = true
	}
	if j.Salary != nil {
		v.Salary = FormatSalary(*j.Salary)
		v.HasSalary = true
	}
	return v
}

func NewJobViews(r matching.Result) []JobView {
	out := make([]JobView, 0, len(r.Jobs))
	for _, j := range r.Jobs {
		out = append(out, NewJobView(j))
	}
	return out
}

// FormatSalary renders "min – max currency" with grouped digits.
func FormatSalary(s matching.SalaryRange) string {
	p := message.NewPrinter(language.Russian)
	return p.Sprintf("%d – %d %s", int64(math.Round(s.Min)), int64(math.Round(s.Max)), s.Currency)
}
