// Package skill groups detected skill names into display categories.
//
// The grouping is a heuristic: a skill goes to the first category whose
// keyword list has an entry contained in the lower-cased skill name. The
// lists and their order are fixed.
package skill

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Category string

const (
	CategoryTechnical Category = "technical"
	CategorySoft      Category = "soft"
	CategoryLanguage  Category = "language"
	CategoryOther     Category = "other"
)

// Order is the priority and display order of the categories.
var Order = []Category{CategoryTechnical, CategorySoft, CategoryLanguage, CategoryOther}

var labels = map[Category]string{
	CategoryTechnical: "Technical skills",
	CategorySoft:      "Soft skills",
	CategoryLanguage:  "Languages",
	CategoryOther:     "Other",
}

func (c Category) Label() string { return labels[c] }

var keywords = []struct {
	category Category
	words    []string
}{
	{CategoryTechnical, []string{"python", "java", "javascript", "react", "angular", "django", "html", "css", "docker"}},
	{CategorySoft, []string{"коммуникабельность", "лидерство", "работа в команде", "тайм-менеджмент"}},
	{CategoryLanguage, []string{"английский", "немецкий", "французский", "китайский", "испанский"}},
}

// Categories maps a category to its skills in input order. Only non-empty
// categories are present.
type Categories map[Category][]string

type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Skills   []string `json:"skills"`
}

// Groups returns the non-empty categories in display order.
func (c Categories) Groups() []Group {
	out := make([]Group, 0, len(c))
	for _, cat := range Order {
		if skills := c[cat]; len(skills) > 0 {
			out = append(out, Group{Category: cat, Label: cat.Label(), Skills: skills})
		}
	}
	return out
}

// Categorize buckets skills. A nil or empty input gives an empty mapping.
func Categorize(skills []string) Categories {
	out := Categories{}
	if len(skills) == 0 {
		return out
	}

	// a Caser keeps state, one per call
	lower := cases.Lower(language.Und)
	for _, s := range skills {
		cat := classify(lower.String(s))
		out[cat] = append(out[cat], s)
	}
	return out
}

func classify(lowered string) Category {
	for _, list := range keywords {
		for _, w := range list.words {
			if strings.Contains(lowered, w) {
				return list.category
			}
		}
	}
	return CategoryOther
}
