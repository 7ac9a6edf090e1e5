package damage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roadwatch.org/internal/jurisdiction"
)

var (
	ErrNotFound     = errors.New("damage: not found")
	ErrInvalidInput = errors.New("damage: invalid input")

	// ErrAccessDenied signals a read or write targeting a record outside the
	// caller's scope. It is distinct from ErrNotFound so the store boundary
	// can enforce the policy; callers may still present it as "not found" to
	// avoid leaking existence.
	ErrAccessDenied = errors.New("damage: access denied")
)

// DamageType classifies a detection.
type DamageType string

const (
	Pothole DamageType = "pothole"
	Crack   DamageType = "crack"
)

// ParseDamageType normalizes and validates a raw damage type.
func ParseDamageType(raw string) (DamageType, error) {
	t := DamageType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case Pothole, Crack:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown damage type %q", ErrInvalidInput, raw)
}

// Severity grades a detection.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity normalizes and validates a raw severity.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, raw)
}

// Road categories as recorded by ingestion. Which administrative column owns
// a record follows from its category (autobahn -> autobahn_region, municipal
// and footway -> municipality, and so on).
const (
	CategoryAutobahn      = "autobahn"
	CategoryBundesstrasse = "bundesstrasse"
	CategoryLandesstrasse = "landesstrasse"
	CategoryKreisstrasse  = "kreisstrasse"
	CategoryMunicipal     = "municipal"
	CategoryFootway       = "footway"
)

// Metadata keys with store-wide meaning.
const (
	MetaSubtype = "subtype"
	MetaSource  = "source"
	MetaAddedBy = "added_by"
)

// Record is a single geotagged damage detection.
type Record struct {
	ID             string     `json:"id"`
	DamageType     DamageType `json:"damage_type"`
	Severity       Severity   `json:"severity"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	RoadName       string     `json:"road_name,omitempty"`
	RoadCategory   string     `json:"road_category,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	District       string     `json:"district,omitempty"`
	Municipality   string     `json:"municipality,omitempty"`
	AutobahnRegion string     `json:"autobahn_region,omitempty"`
	// ConfidenceScore is a percentage in [0,100].
	ConfidenceScore float64        `json:"confidence_score"`
	DetectedAt      time.Time      `json:"detected_at"`
	ImageURL        string         `json:"image_url,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ScopeValues exposes the administrative columns for policy evaluation.
func (r Record) ScopeValues() jurisdiction.ScopeValues {
	return jurisdiction.ScopeValues{
		AutobahnRegion: r.AutobahnRegion,
		State:          r.State,
		District:       r.District,
		Municipality:   r.Municipality,
	}
}

// Subtype returns the crack subtype tag from metadata, lower-cased, or "".
func (r Record) Subtype() string {
	if r.Metadata == nil {
		return ""
	}
	sub, _ := r.Metadata[MetaSubtype].(string)
	return strings.ToLower(sub)
}

// Validate checks field-level invariants before insertion.
func (r Record) Validate() error {
	if _, err := ParseDamageType(string(r.DamageType)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(r.Severity)); err != nil {
		return err
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, r.Longitude)
	}
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 100 {
		return fmt.Errorf("%w: confidence_score %v out of range", ErrInvalidInput, r.ConfidenceScore)
	}
	return nil
}

// Location groups the geospatial and administrative fields overwritten
// together when a record is relocated or relabeled.
type Location struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RoadName       string  `json:"road_name"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	District       string  `json:"district"`
	Municipality   string  `json:"municipality"`
	RoadCategory   string  `json:"road_category"`
	AutobahnRegion string  `json:"autobahn_region,omitempty"`
}

// ScopeValues exposes the administrative columns of a location.
func (l Location) ScopeValues() jurisdiction.ScopeValues {
	return jurisdiction.ScopeValues{
		AutobahnRegion: l.AutobahnRegion,
		State:          l.State,
		District:       l.District,
		Municipality:   l.Municipality,
	}
}

// ApplyTo overwrites the record's location fields with l.
func (l Location) ApplyTo(r *Record) {
	r.Latitude = l.Latitude
	r.Longitude = l.Longitude
	r.RoadName = l.RoadName
	r.City = l.City
	r.State = l.State
	r.District = l.District
	r.Municipality = l.Municipality
	r.RoadCategory = l.RoadCategory
	r.AutobahnRegion = l.AutobahnRegion
}

// AppliedTo reports whether the record already carries exactly this location.
func (l Location) AppliedTo(r Record) bool {
	return r.Latitude == l.Latitude &&
		r.Longitude == l.Longitude &&
		r.RoadName == l.RoadName &&
		r.City == l.City &&
		r.State == l.State &&
		r.District == l.District &&
		r.Municipality == l.Municipality &&
		r.RoadCategory == l.RoadCategory &&
		r.AutobahnRegion == l.AutobahnRegion
}
