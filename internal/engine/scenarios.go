package engine

import (
	"math"
	"sort"
)

// timeOfDay buckets cover the full day and are mutually exclusive.
type timeOfDay int

const (
	night   timeOfDay = iota // [23, 6)
	morning                  // [6, 10)
	day                      // [10, 17)
	evening                  // [17, 23)
)

func timeOfDayBucket(hour int) timeOfDay {
	switch {
	case hour >= 23 || hour < 6:
		return night
	case hour < 10:
		return morning
	case hour < 17:
		return day
	default:
		return evening
	}
}

// batteryBand buckets the state of charge. Critical implies low, which
// the ordering below encodes.
type batteryBand int

const (
	bandCritical batteryBand = iota // < 20%
	bandLow                         // < 40%
	bandMedium                      // [40, 70)
	bandHigh                        // >= 70%
)

func batteryBandBucket(chargePercent float64) batteryBand {
	switch {
	case chargePercent < 20:
		return bandCritical
	case chargePercent < 40:
		return bandLow
	case chargePercent < 70:
		return bandMedium
	default:
		return bandHigh
	}
}

// scenarioContext is what candidate applicability predicates see.
type scenarioContext struct {
	hour      int
	timeOfDay timeOfDay
	band      batteryBand
	situation SituationSummary
}

// applianceOverride adjusts one appliance on top of the base list.
// A nil Enabled keeps the base flag; SetSchedule distinguishes "replace
// the schedule" (possibly with the empty always-on list) from "keep it".
type applianceOverride struct {
	Enabled     *bool
	SetSchedule bool
	Schedule    []TimeRange
}

// scenarioCandidate is one declarative catalog entry. A nil applies
// predicate means the candidate is always included.
type scenarioCandidate struct {
	id          string
	name        string
	description string
	tier        ScenarioTier
	applies     func(scenarioContext) bool
	overrides   map[string]applianceOverride
}

func enabled() *bool  { b := true; return &b }
func disabled() *bool { b := false; return &b }

// scenarioCatalog is evaluated in declaration order, so ties after
// sorting preserve this order. "heating-only" and "max-comfort" are the
// two fixed reference points and carry no predicate.
var scenarioCatalog = []scenarioCandidate{
	{
		id:          "heating-only",
		name:        "Heating only",
		description: "Everything off except heating. The survival baseline.",
		tier:        TierEmergency,
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: disabled()},
			"elevator": {Enabled: disabled()},
			"lighting": {Enabled: disabled()},
		},
	},
	{
		id:          "deep-conserve",
		name:        "Deep conserve",
		description: "Heating in short morning and evening blocks only, for a critically low battery.",
		tier:        TierEmergency,
		applies:     func(c scenarioContext) bool { return c.band == bandCritical },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 6, End: 9}, {Start: 17, End: 22}}},
			"water":    {Enabled: disabled()},
			"elevator": {Enabled: disabled()},
			"lighting": {Enabled: disabled()},
		},
	},
	{
		id:          "night-economy",
		name:        "Night economy",
		description: "Heating around the clock, hot water in morning and evening blocks, lighting overnight.",
		tier:        TierEconomy,
		applies:     func(c scenarioContext) bool { return c.situation.TotalOutageHours > 6 },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 5, End: 8}, {Start: 17, End: 20}}},
			"elevator": {Enabled: disabled()},
			"lighting": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 20, End: 6}}},
		},
	},
	{
		id:          "battery-saver",
		name:        "Battery saver",
		description: "Heating plus a single morning hot-water block while the battery is low.",
		tier:        TierEconomy,
		applies:     func(c scenarioContext) bool { return c.band <= bandLow },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 6, End: 9}}},
			"elevator": {Enabled: disabled()},
			"lighting": {Enabled: disabled()},
		},
	},
	{
		id:          "balanced-day",
		name:        "Balanced",
		description: "Heating and hot water always on, elevator during commute peaks, lighting at night.",
		tier:        TierBalanced,
		applies:     func(c scenarioContext) bool { return c.band >= bandMedium },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 7, End: 9}, {Start: 18.5, End: 20.5}}},
			"lighting": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 18, End: 6}}},
		},
	},
	{
		id:          "morning-routine",
		name:        "Morning routine",
		description: "Full morning comfort: hot water and elevator through the morning rush.",
		tier:        TierBalanced,
		applies:     func(c scenarioContext) bool { return c.timeOfDay == morning },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 7, End: 10}}},
			"lighting": {Enabled: disabled()},
		},
	},
	{
		id:          "evening-peak",
		name:        "Evening peak",
		description: "Hot water, elevator and lighting through the evening hours.",
		tier:        TierBalanced,
		applies:     func(c scenarioContext) bool { return c.timeOfDay == evening },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 17, End: 21}}},
			"lighting": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 17, End: 23}}},
		},
	},
	{
		id:          "day-comfort",
		name:        "Day comfort",
		description: "All appliances available through the daytime hours.",
		tier:        TierComfort,
		applies:     func(c scenarioContext) bool { return c.timeOfDay == day && c.band >= bandMedium },
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 8, End: 21}}},
			"lighting": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 16, End: 0}}},
		},
	},
	{
		id:          "full-power",
		name:        "Full power",
		description: "Everything on with extended hours. Only offered with a well-charged battery and a short outage.",
		tier:        TierComfort,
		applies: func(c scenarioContext) bool {
			return c.band == bandHigh && c.situation.TotalOutageHours > 0 && c.situation.TotalOutageHours <= 8
		},
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 7, End: 22}}},
			"lighting": {Enabled: enabled(), SetSchedule: true, Schedule: []TimeRange{{Start: 16, End: 7}}},
		},
	},
	{
		id:          "max-comfort",
		name:        "Max comfort",
		description: "Every appliance on around the clock. The comfort ceiling.",
		tier:        TierComfort,
		overrides: map[string]applianceOverride{
			"heating":  {Enabled: enabled(), SetSchedule: true},
			"water":    {Enabled: enabled(), SetSchedule: true},
			"elevator": {Enabled: enabled(), SetSchedule: true},
			"lighting": {Enabled: enabled(), SetSchedule: true},
		},
	},
}

var tierRank = map[ScenarioTier]int{
	TierComfort:   0,
	TierBalanced:  1,
	TierEconomy:   2,
	TierEmergency: 3,
}

// GenerateScenarios evaluates the candidate catalog against the caller's
// base appliance list and ranks the results: feasible first, then by tier
// (comfort before balanced before economy before emergency), ties keeping
// catalog order. Deterministic for identical inputs.
func GenerateScenarios(battery BatterySettings, baseAppliances []Appliance, schedule PowerSchedule, referenceHour float64) []Scenario {
	hour := int(math.Floor(referenceHour)) % 24
	ctx := scenarioContext{
		hour:      hour,
		timeOfDay: timeOfDayBucket(hour),
		band:      batteryBandBucket(battery.CurrentCharge),
		situation: AnalyzeSituation(battery, schedule, referenceHour),
	}

	scenarios := make([]Scenario, 0, len(scenarioCatalog))
	for _, c := range scenarioCatalog {
		if c.applies != nil && !c.applies(ctx) {
			continue
		}

		apps := applyOverrides(baseAppliances, c.overrides)
		sim := Simulate(battery, apps, schedule.Periods, referenceHour)
		minLevel, minHour := timelineMinimum(sim.Timeline)

		energy := 0.0
		for _, p := range sim.Timeline {
			// Each point spans one hour, so summed kW approximates kWh.
			if !p.Charging {
				energy += p.Consumption
			}
		}

		scenarios = append(scenarios, Scenario{
			ID:              c.id,
			Name:            c.name,
			Description:     c.description,
			Tier:            c.tier,
			Feasible:        sim.CanSurviveOutage,
			MinBatteryLevel: round1(minLevel),
			MinBatteryTime:  minHour,
			EnergyUsedKwh:   round1(energy),
			Appliances:      apps,
		})
	}

	sort.SliceStable(scenarios, func(i, j int) bool {
		if scenarios[i].Feasible != scenarios[j].Feasible {
			return scenarios[i].Feasible
		}
		return tierRank[scenarios[i].Tier] < tierRank[scenarios[j].Tier]
	})

	return scenarios
}

// applyOverrides builds a candidate appliance list from the base list.
// Every appliance, named in the overrides or not, is deep-cloned so the
// candidate never aliases the base list or another candidate's list.
func applyOverrides(base []Appliance, overrides map[string]applianceOverride) []Appliance {
	apps := make([]Appliance, 0, len(base))
	for _, a := range base {
		clone := a
		clone.Schedule = cloneRanges(a.Schedule)

		if ov, ok := overrides[a.ID]; ok {
			if ov.Enabled != nil {
				clone.Enabled = *ov.Enabled
			}
			if ov.SetSchedule {
				clone.Schedule = cloneRanges(ov.Schedule)
			}
		}

		apps = append(apps, clone)
	}
	return apps
}

func cloneRanges(ranges []TimeRange) []TimeRange {
	if ranges == nil {
		return nil
	}
	out := make([]TimeRange, len(ranges))
	copy(out, ranges)
	return out
}

// timelineMinimum returns the lowest battery level in the timeline and
// the hour it first occurs at.
func timelineMinimum(timeline []TimelinePoint) (float64, int) {
	if len(timeline) == 0 {
		return 0, 0
	}
	minLevel := timeline[0].BatteryLevel
	minHour := timeline[0].Hour
	for _, p := range timeline[1:] {
		if p.BatteryLevel < minLevel {
			minLevel = p.BatteryLevel
			minHour = p.Hour
		}
	}
	return minLevel, minHour
}
