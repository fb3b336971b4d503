// Package templates holds the query template corpus and the typed parameter
// binding used to turn a template into literal SQL.
package templates

import (
	"regexp"
	"strconv"
	"strings"
)

// Param names a substitution slot inside a template's SQL.
type Param string

const (
	ParamPeriod       Param = "period"
	ParamLimit        Param = "limit"
	ParamRegionFilter Param = "region_filter"
)

// KnownParams is the closed set of slots the binding can fill.
var KnownParams = []Param{ParamPeriod, ParamLimit, ParamRegionFilter}

func (p Param) Known() bool {
	for _, k := range KnownParams {
		if p == k {
			return true
		}
	}
	return false
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// QueryTemplate maps a family of questions onto one parameterized query.
type QueryTemplate struct {
	ID         string   `json:"id"`
	Patterns   []string `json:"patterns"`
	Keywords   []string `json:"keywords"`
	SQL        string   `json:"sql"`
	Parameters []Param  `json:"parameters"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Examples   []string `json:"examples"`
}

func (t QueryTemplate) HasParam(p Param) bool {
	for _, declared := range t.Parameters {
		if declared == p {
			return true
		}
	}
	return false
}

// Placeholders lists the distinct slots referenced by the SQL, in order of
// first appearance.
func (t QueryTemplate) Placeholders() []Param {
	seen := make(map[Param]bool)
	var out []Param
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.SQL, -1) {
		p := Param(m[1])
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Binding carries the typed values for a render. Zero values mean "not
// provided", except for the region filter which renders empty.
type Binding struct {
	Period string
	Limit  int
	Region string
}

func (b Binding) value(p Param) (string, bool) {
	switch p {
	case ParamPeriod:
		if b.Period == "" {
			return "", false
		}
		return quoteLiteral(b.Period), true
	case ParamLimit:
		if b.Limit <= 0 {
			return "", false
		}
		return strconv.Itoa(b.Limit), true
	case ParamRegionFilter:
		if b.Region == "" {
			return "", true
		}
		return "AND region = '" + quoteLiteral(b.Region) + "'", true
	}
	return "", false
}

// Render substitutes every bound slot in one pass and normalizes whitespace.
// Slots without a value are left in place.
func (t QueryTemplate) Render(b Binding) string {
	sql := placeholderPattern.ReplaceAllStringFunc(t.SQL, func(ph string) string {
		if v, ok := b.value(Param(ph[2 : len(ph)-2])); ok {
			return v
		}
		return ph
	})
	return NormalizeWhitespace(sql)
}

// Unresolved returns the placeholders still present in rendered SQL.
func Unresolved(sql string) []string {
	return placeholderPattern.FindAllString(sql, -1)
}

func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
