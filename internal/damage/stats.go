package damage

// SeverityBreakdown counts records per severity grade.
type SeverityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (b *SeverityBreakdown) add(s Severity) {
	switch s {
	case SeverityHigh:
		b.High++
	case SeverityMedium:
		b.Medium++
	case SeverityLow:
		b.Low++
	}
}

// Summary aggregates an authorized result set for the dashboard.
type Summary struct {
	Total              int               `json:"total"`
	Potholes           int               `json:"potholes"`
	Cracks             int               `json:"cracks"`
	BySeverity         SeverityBreakdown `json:"by_severity"`
	PotholesBySeverity SeverityBreakdown `json:"potholes_by_severity"`
	CracksBySeverity   SeverityBreakdown `json:"cracks_by_severity"`
}

// Summarize reduces recs to dashboard totals. Pure; no additional access
// checks — it trusts the store only returned authorized rows.
func Summarize(recs []Record) Summary {
	var sum Summary
	sum.Total = len(recs)
	for _, r := range recs {
		sum.BySeverity.add(r.Severity)
		switch r.DamageType {
		case Pothole:
			sum.Potholes++
			sum.PotholesBySeverity.add(r.Severity)
		case Crack:
			sum.Cracks++
			sum.CracksBySeverity.add(r.Severity)
		}
	}
	return sum
}

// SubtypeBreakdown counts cracks of one subtype per severity grade.
type SubtypeBreakdown struct {
	Total    int               `json:"total"`
	Severity SeverityBreakdown `json:"severity"`
}

// CrackSubtypes groups cracks by their metadata subtype tag
// (longitudinal, transverse, block, fatigue). Untagged cracks are omitted.
func CrackSubtypes(recs []Record) map[string]SubtypeBreakdown {
	out := make(map[string]SubtypeBreakdown)
	for _, r := range recs {
		if r.DamageType != Crack {
			continue
		}
		sub := r.Subtype()
		if sub == "" {
			continue
		}
		b := out[sub]
		b.Total++
		b.Severity.add(r.Severity)
		out[sub] = b
	}
	return out
}
