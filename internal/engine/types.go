package engine

// TimeRange is a span of hours-of-day in [0, 24).
// When Start > End the range wraps across midnight, covering
// [Start, 24) plus [0, End). Start == End is an empty range.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// PowerSchedule lists the periods during which grid power is available.
// Overlapping periods are allowed and treated as a union.
// An empty list means grid power is never available.
type PowerSchedule struct {
	Periods []TimeRange `json:"periods"`
}

// BatterySettings holds the home battery parameters. Values are replaced
// wholesale on edit, never mutated in place.
type BatterySettings struct {
	CapacityKwh     float64 `json:"capacityKwh"`     // usable pack size, kWh
	MinDischarge    float64 `json:"minDischarge"`    // discharge floor, percent
	MaxCharge       float64 `json:"maxCharge"`       // charge ceiling, percent
	CurrentCharge   float64 `json:"currentCharge"`   // state of charge, percent
	ChargingPowerKw float64 `json:"chargingPowerKw"` // charger power, kW
}

// Appliance is a switchable household load.
// An empty Schedule means the appliance is active around the clock.
type Appliance struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Icon     string      `json:"icon"`
	Color    string      `json:"color"`
	PowerKw  float64     `json:"powerKw"`
	Enabled  bool        `json:"enabled"`
	Schedule []TimeRange `json:"schedule"`
}

// ActiveAt reports whether the appliance draws power at the given hour.
// The always-on sentinel (empty schedule) is resolved here so that the
// range algebra itself stays context-free.
func (a Appliance) ActiveAt(hour float64) bool {
	if len(a.Schedule) == 0 {
		return true
	}
	return InAnyRange(hour, a.Schedule)
}

// TimelinePoint is one simulated hour of the 24h projection.
type TimelinePoint struct {
	Hour         int      `json:"hour"`         // hour-of-day this slot starts at
	BatteryLevel float64  `json:"batteryLevel"` // percent, rounded to 1 decimal
	Consumption  float64  `json:"consumption"`  // kW drawn from the battery; 0 while grid is up
	Charging     bool     `json:"charging"`     // mirrors grid availability
	Appliances   []string `json:"appliances"`   // display names active this hour
}

// Simulation is the raw output of Simulate: the 24-point timeline and
// whether the battery stays strictly above the discharge floor.
type Simulation struct {
	Timeline         []TimelinePoint `json:"timeline"`
	CanSurviveOutage bool            `json:"canSurviveOutage"`
}

// CalculationResult aggregates the simulation with instantaneous metrics
// and advisory recommendations. It is recomputed fully on every input
// change, never patched.
type CalculationResult struct {
	UsableEnergyKwh        float64         `json:"usableEnergyKwh"`
	CurrentAvailableEnergy float64         `json:"currentAvailableEnergy"`
	CurrentConsumption     float64         `json:"currentConsumption"`
	HoursRemaining         float64         `json:"hoursRemaining"`
	ChargeTime             float64         `json:"chargeTime"`
	Timeline               []TimelinePoint `json:"timeline"`
	CanSurviveOutage       bool            `json:"canSurviveOutage"`
	Recommendations        []string        `json:"recommendations"`
}

// SituationSummary describes the next 24h of grid availability,
// independent of the appliance configuration.
type SituationSummary struct {
	BatteryPercent     float64 `json:"batteryPercent"`
	AvailableEnergyKwh float64 `json:"availableEnergyKwh"`
	TotalOutageHours   int     `json:"totalOutageHours"`
	IsPowerOnNow       bool    `json:"isPowerOnNow"`
	HoursToNextPowerOn int     `json:"hoursToNextPowerOn"`
	// HoursToNextOutage is only computed while power is on. When
	// IsPowerOnNow is false it is left at 0 and callers must treat
	// that as "not applicable".
	HoursToNextOutage int `json:"hoursToNextOutage"`
}

// ScenarioTier is a coarse priority classification for a candidate
// appliance configuration.
type ScenarioTier string

const (
	TierComfort   ScenarioTier = "comfort"
	TierBalanced  ScenarioTier = "balanced"
	TierEconomy   ScenarioTier = "economy"
	TierEmergency ScenarioTier = "emergency"
)

// Scenario is a named candidate appliance configuration together with its
// simulated outcome. Appliances is a full list ready to be applied verbatim.
type Scenario struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Tier            ScenarioTier `json:"tier"`
	Feasible        bool         `json:"feasible"`
	MinBatteryLevel float64      `json:"minBatteryLevel"`
	MinBatteryTime  int          `json:"minBatteryTime"`
	EnergyUsedKwh   float64      `json:"energyUsedKwh"`
	Appliances      []Appliance  `json:"appliances"`
}

// SentinelHours stands in for "effectively forever" in hour-denominated
// metrics, keeping results finite and serializable where a division by
// zero would otherwise produce an infinity.
const SentinelHours = 999.0
