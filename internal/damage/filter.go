package damage

import "strings"

// Filter composes client-visible facets over an already-authorized result
// set. Facets AND together. Deselecting every value on a dimension yields no
// results for that dimension, not "all".
type Filter struct {
	Severities   map[Severity]bool
	Types        map[DamageType]bool
	CrackSubtype string
}

// AllFilter returns a filter with every severity and damage type enabled.
func AllFilter() Filter {
	return Filter{
		Severities: map[Severity]bool{
			SeverityLow:    true,
			SeverityMedium: true,
			SeverityHigh:   true,
		},
		Types: map[DamageType]bool{
			Pothole: true,
			Crack:   true,
		},
	}
}

// Match reports whether the record passes every selected facet. The crack
// subtype facet only narrows cracks; potholes are unaffected by it.
func (f Filter) Match(r Record) bool {
	sevMatch := f.Severities[Severity(strings.ToLower(string(r.Severity)))]
	typeMatch := f.Types[r.DamageType]

	if f.CrackSubtype != "" && r.DamageType == Crack {
		return sevMatch && typeMatch && r.Subtype() == strings.ToLower(f.CrackSubtype)
	}
	return sevMatch && typeMatch
}

// Apply filters recs, preserving order.
func Apply(f Filter, recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
