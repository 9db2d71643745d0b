// Package entities contains the core domain objects for the WASHGuard application
package entities

// YesNo is the boolean-as-enum value used on field forms
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// Bool reports whether the value is "Yes"
func (v YesNo) Bool() bool {
	return v == Yes
}

// RoadCondition describes access to a site for fuel and supply deliveries
type RoadCondition string

const (
	RoadGood    RoadCondition = "Good"
	RoadMuddy   RoadCondition = "Muddy"
	RoadFlooded RoadCondition = "Flooded"
)

// ChlorineReading represents one chlorine measurement at a tap stand
type ChlorineReading struct {
	ID         int64
	TapStandID string  // Identifier of the tap stand
	Date       string  // Measurement date, ISO 8601
	Time       string  // Measurement time, ISO 8601
	Level      float64 // Free chlorine in mg/L
}

// Chlorine level bands in mg/L. Readings outside the band get flagged
// on the dashboard but are stored as submitted.
const (
	ChlorineLowThreshold  = 0.2
	ChlorineHighThreshold = 0.5
)

// StatusLabel returns the dashboard band for the reading: Low, OK or High
func (r ChlorineReading) StatusLabel() string {
	switch {
	case r.Level < ChlorineLowThreshold:
		return "Low"
	case r.Level > ChlorineHighThreshold:
		return "High"
	default:
		return "OK"
	}
}

// QualityReading represents one water quality sample from a source
type QualityReading struct {
	ID           int64
	SourceID     string
	Turbidity    float64 // NTU
	OdourPresent YesNo
}

// TreatmentRecommendation returns the product recommended for the sample.
// Turbid water needs a flocculant, clear water only disinfection tablets.
func (r QualityReading) TreatmentRecommendation() string {
	if r.Turbidity > 5 {
		return "PUR"
	}
	return "Aqua Tabs"
}

// FeedbackEntry represents free-text community feedback from a household
type FeedbackEntry struct {
	ID          int64
	HouseholdID string
	Text        string
}

// InfrastructureStatus represents one status report for a site.
// This is the only reading kind feeding the alerting pipeline.
type InfrastructureStatus struct {
	ID                   int64
	Location             string
	GeneratorOK          YesNo
	PumpOK               YesNo
	PipeLeak             YesNo
	RoadCondition        RoadCondition
	Comments             string
	WaterAvailableLiters int
}
