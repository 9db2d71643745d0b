// Package risk classifies infrastructure status reports against fixed
// threshold rules. Classification is a pure function: rules are evaluated
// independently and no tag suppresses another.
package risk

import (
	"github.com/Aro-geo/washguard-prototype/internal/entities"
)

// IssueTag identifies one threshold rule that fired for a site
type IssueTag string

const (
	GeneratorFault      IssueTag = "GENERATOR_FAULT"
	PumpFault           IssueTag = "PUMP_FAULT"
	PipeLeak            IssueTag = "PIPE_LEAK"
	FuelDeliveryBlocked IssueTag = "FUEL_DELIVERY_BLOCKED"
	LowWaterReserve     IssueTag = "LOW_WATER_RESERVE"
)

// LowWaterThresholdLiters is the reserve below which a site is considered
// critically short of water. The same constant drives both the
// LOW_WATER_RESERVE tag and the high-risk predicate, so the high-risk set
// stays a subset of the alert-worthy set.
const LowWaterThresholdLiters = 10

// labels maps tags to the text shown in alert messages and on the dashboard
var labels = map[IssueTag]string{
	GeneratorFault:      "Generator Fault",
	PumpFault:           "Pump Fault",
	PipeLeak:            "Pipe Leak",
	FuelDeliveryBlocked: "Fuel Delivery Blocked",
	LowWaterReserve:     "Low Water Reserve",
}

// Label returns the human-readable form of the tag
func (t IssueTag) Label() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// Classify evaluates the threshold rules for one status report and returns
// every tag that fired, in rule order. An empty result means the site is OK.
//
// Fuel delivery only matters while the generator still runs: a dead
// generator is already reported on its own and burns no fuel.
func Classify(status entities.InfrastructureStatus) []IssueTag {
	var tags []IssueTag
	if !status.GeneratorOK.Bool() {
		tags = append(tags, GeneratorFault)
	}
	if !status.PumpOK.Bool() {
		tags = append(tags, PumpFault)
	}
	if status.PipeLeak.Bool() {
		tags = append(tags, PipeLeak)
	}
	if (status.RoadCondition == entities.RoadMuddy || status.RoadCondition == entities.RoadFlooded) && status.GeneratorOK.Bool() {
		tags = append(tags, FuelDeliveryBlocked)
	}
	if status.WaterAvailableLiters < LowWaterThresholdLiters {
		tags = append(tags, LowWaterReserve)
	}
	return tags
}

// AlertWorthy reports whether a tag set warrants a notification
func AlertWorthy(tags []IssueTag) bool {
	return len(tags) > 0
}

// HighRisk reports whether a site is both alert-worthy and below the
// low-water threshold
func HighRisk(status entities.InfrastructureStatus, tags []IssueTag) bool {
	return AlertWorthy(tags) && status.WaterAvailableLiters < LowWaterThresholdLiters
}
