package reconcile

import "roadwatch.org/internal/damage"

// Versioned reference data for reconciliation. These lists are maintained by
// hand against surveyed real-world locations; they are data, not runtime
// configuration.

// locationsToCorrect relabels clusters of noisy detections onto canonical
// surveyed points.
var locationsToCorrect = []damage.Location{
	{
		Latitude:       49.64662,
		Longitude:      11.02193,
		RoadName:       "A 73",
		City:           "Baiersdorf",
		State:          "Bayern",
		District:       "Landkreis Erlangen-Höchstadt",
		Municipality:   "Baiersdorf",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Süd",
	},
	{
		Latitude:       49.77658,
		Longitude:      10.30691,
		RoadName:       "A 3",
		City:           "Großlangheim",
		State:          "Bayern",
		District:       "Landkreis Kitzingen",
		Municipality:   "Großlangheim",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Süd",
	},
	{
		Latitude:     49.984847,
		Longitude:    9.808871,
		RoadName:     "Karlstadterstraße",
		City:         "Eußenheim",
		State:        "Bayern",
		District:     "Landkreis Main-Spessart",
		Municipality: "Eußenheim",
		RoadCategory: damage.CategoryMunicipal,
	},
	{
		Latitude:     48.15492,
		Longitude:    11.58334,
		RoadName:     "Leopoldstraße",
		City:         "München",
		State:        "Bayern",
		District:     "München",
		Municipality: "München",
		RoadCategory: damage.CategoryMunicipal,
	},
	{
		Latitude:     48.15465,
		Longitude:    11.57925,
		RoadName:     "Georgenstraße",
		City:         "München",
		State:        "Bayern",
		District:     "München",
		Municipality: "München",
		RoadCategory: damage.CategoryMunicipal,
	},
	{
		Latitude:     48.15297,
		Longitude:    11.58489,
		RoadName:     "Kaulbachstraße",
		City:         "München",
		State:        "Bayern",
		District:     "München",
		Municipality: "München",
		RoadCategory: damage.CategoryMunicipal,
	},
	{
		Latitude:       48.265419,
		Longitude:      11.646162,
		RoadName:       "A 9",
		City:           "Garching bei München",
		State:          "Bayern",
		District:       "Landkreis München",
		Municipality:   "Garching bei München",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Süd",
	},
	{
		Latitude:       52.56762,
		Longitude:      12.97082,
		RoadName:       "A 10",
		City:           "Wustermark",
		State:          "Brandenburg",
		District:       "Havelland",
		Municipality:   "Wustermark",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.49322,
		Longitude:      12.96267,
		RoadName:       "A 10",
		City:           "Potsdam",
		State:          "Brandenburg",
		District:       "Potsdam",
		Municipality:   "Potsdam",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.45712,
		Longitude:      12.93760,
		RoadName:       "A 10",
		City:           "Potsdam",
		State:          "Brandenburg",
		District:       "Potsdam",
		Municipality:   "Potsdam",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.393444,
		Longitude:      12.833920,
		RoadName:       "A 10",
		City:           "Werder (Havel)",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Werder (Havel)",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.36697,
		Longitude:      12.81572,
		RoadName:       "A 10",
		City:           "Kloster Lehnin",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Kloster Lehnin",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
}

// newEntries are verified locations known to be missing from the store.
var newEntries = []damage.Location{
	{
		Latitude:       52.32869,
		Longitude:      12.82362,
		RoadName:       "A 10",
		City:           "Kloster Lehnin",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Kloster Lehnin",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.236135,
		Longitude:      12.917283,
		RoadName:       "A 9",
		City:           "Beelitz",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Beelitz",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.17525,
		Longitude:      12.83180,
		RoadName:       "A 9",
		City:           "Niemegk",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Niemegk",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
	{
		Latitude:       52.087087,
		Longitude:      12.676528,
		RoadName:       "A 9",
		City:           "Niemegk",
		State:          "Brandenburg",
		District:       "Potsdam-Mittelmark",
		Municipality:   "Niemegk",
		RoadCategory:   damage.CategoryAutobahn,
		AutobahnRegion: "Ost",
	},
}

// PointFix relocates detections at one specific bad coordinate to a
// corrected location, not merely relabels them.
type PointFix struct {
	OldLat float64
	OldLon float64
	To     damage.Location
}

var pointFixes = []PointFix{
	{
		OldLat: 48.0700,
		OldLon: 11.4500,
		To: damage.Location{
			Latitude:       48.05215,
			Longitude:      11.45625,
			RoadName:       "A 95",
			City:           "Forstenrieder Park",
			State:          "Bayern",
			District:       "Landkreis München",
			Municipality:   "Landkreis München",
			RoadCategory:   damage.CategoryAutobahn,
			AutobahnRegion: "Süd",
		},
	},
	{
		OldLat: 48.2500,
		OldLon: 11.5500,
		To: damage.Location{
			Latitude:       48.27005,
			Longitude:      11.54133,
			RoadName:       "A 92",
			City:           "Unterschleißheim",
			State:          "Bayern",
			District:       "Landkreis München",
			Municipality:   "Unterschleißheim",
			RoadCategory:   damage.CategoryAutobahn,
			AutobahnRegion: "Süd",
		},
	},
}
