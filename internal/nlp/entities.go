package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultPeriod = "30 days"
	DefaultLimit  = 10
)

// Entities are the structured values pulled out of a question.
// A zero Limit means no limit was requested.
type Entities struct {
	Period string `json:"period"`
	Region string `json:"region,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Brand  string `json:"brand,omitempty"`
}

type timeRule struct {
	pattern *regexp.Regexp
	extract func(m []string) string
}

// Regions are matched in this order; the first hit wins.
var DefaultRegions = []string{
	"NCR",
	"Metro Manila",
	"Cebu",
	"Davao",
	"Iloilo",
	"Baguio",
	"Central Luzon",
	"Visayas",
	"Mindanao",
}

var DefaultBrands = []string{"TBWA"}

var (
	limitPattern = regexp.MustCompile(`(?i)top (\d+)|(\d+) (stores?|locations?|brands?)`)
	brandPattern = regexp.MustCompile(`\b[Bb]rand\s+([A-Z][\w&-]*)`)
)

func relativeWindow(m []string) string {
	return m[1] + " " + strings.ToLower(m[2])
}

func fixedWindow(window string) func([]string) string {
	return func([]string) string { return window }
}

// Extractor applies ordered, greedy pattern rules. Ambiguous input resolves by
// rule order and never fails.
type Extractor struct {
	timeRules []timeRule
	regions   []string
	brands    []string
}

func NewExtractor() *Extractor {
	return &Extractor{
		timeRules: []timeRule{
			{regexp.MustCompile(`(?i)last (\d+) (days?|weeks?|months?|years?)`), relativeWindow},
			{regexp.MustCompile(`(?i)past (\d+) (days?|weeks?|months?|years?)`), relativeWindow},
			{regexp.MustCompile(`(?i)yesterday`), fixedWindow("1 day")},
			{regexp.MustCompile(`(?i)today`), fixedWindow("0 days")},
			{regexp.MustCompile(`(?i)this week`), fixedWindow("7 days")},
			{regexp.MustCompile(`(?i)this month`), fixedWindow("30 days")},
			{regexp.MustCompile(`(?i)this year`), fixedWindow("365 days")},
		},
		regions: DefaultRegions,
		brands:  DefaultBrands,
	}
}

var defaultExtractor = NewExtractor()

// Extract is the search-path extraction: the limit falls back to DefaultLimit.
func (e *Extractor) Extract(question string) Entities {
	entities := e.ExtractExplicit(question)
	if entities.Limit == 0 {
		entities.Limit = DefaultLimit
	}
	return entities
}

// ExtractExplicit leaves Limit unset unless the question asks for one.
func (e *Extractor) ExtractExplicit(question string) Entities {
	return Entities{
		Period: e.period(question),
		Region: e.region(question),
		Limit:  e.limit(question),
		Brand:  e.brand(question),
	}
}

func (e *Extractor) period(question string) string {
	for _, rule := range e.timeRules {
		if m := rule.pattern.FindStringSubmatch(question); m != nil {
			return rule.extract(m)
		}
	}
	return DefaultPeriod
}

func (e *Extractor) region(question string) string {
	lower := strings.ToLower(question)
	for _, region := range e.regions {
		if strings.Contains(lower, strings.ToLower(region)) {
			return region
		}
	}
	return ""
}

func (e *Extractor) limit(question string) int {
	m := limitPattern.FindStringSubmatch(question)
	if m == nil {
		return 0
	}

	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func (e *Extractor) brand(question string) string {
	upper := strings.ToUpper(question)
	for _, brand := range e.brands {
		if strings.Contains(upper, strings.ToUpper(brand)) {
			return brand
		}
	}
	if m := brandPattern.FindStringSubmatch(question); m != nil {
		return m[1]
	}
	return ""
}

// ExtractEntities runs the default extractor in search mode.
func ExtractEntities(question string) Entities {
	return defaultExtractor.Extract(question)
}

// ExtractExplicitEntities runs the default extractor without the limit default.
func ExtractExplicitEntities(question string) Entities {
	return defaultExtractor.ExtractExplicit(question)
}
