package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioIDs(scenarios []Scenario) []string {
	ids := make([]string, len(scenarios))
	for i, s := range scenarios {
		ids[i] = s.ID
	}
	return ids
}

func TestGenerateScenariosReferencePointsAlwaysPresent(t *testing.T) {
	cases := []struct {
		name     string
		battery  BatterySettings
		schedule PowerSchedule
		hour     float64
	}{
		{"medium battery, daytime", exampleBattery(), exampleSchedule(), 10},
		{"critical battery, night", BatterySettings{CapacityKwh: 82, MinDischarge: 10, MaxCharge: 95, CurrentCharge: 12, ChargingPowerKw: 20}, exampleSchedule(), 2},
		{"no grid at all", exampleBattery(), PowerSchedule{}, 15},
		{"high battery, evening", BatterySettings{CapacityKwh: 82, MinDischarge: 10, MaxCharge: 95, CurrentCharge: 90, ChargingPowerKw: 20}, exampleSchedule(), 19},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ids := scenarioIDs(GenerateScenarios(tc.battery, DefaultAppliances(), tc.schedule, tc.hour))
			assert.Contains(t, ids, "heating-only")
			assert.Contains(t, ids, "max-comfort")
		})
	}
}

func TestGenerateScenariosApplicability(t *testing.T) {
	// Medium battery (50%) at hour 10 (day bucket) with a 16-hour outage:
	// deep-conserve (critical only), battery-saver (low only),
	// morning-routine, evening-peak and full-power must all be excluded.
	ids := scenarioIDs(GenerateScenarios(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10))

	assert.ElementsMatch(t, []string{"heating-only", "night-economy", "balanced-day", "day-comfort", "max-comfort"}, ids)
}

func TestGenerateScenariosSortOrder(t *testing.T) {
	scenarios := GenerateScenarios(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10)
	require.NotEmpty(t, scenarios)

	// No infeasible scenario may precede a feasible one.
	seenInfeasible := false
	for _, s := range scenarios {
		if !s.Feasible {
			seenInfeasible = true
		} else {
			assert.False(t, seenInfeasible, "feasible scenario %q after an infeasible one", s.ID)
		}
	}

	// Within a feasibility class, tiers run comfort, balanced, economy,
	// emergency.
	for i := 1; i < len(scenarios); i++ {
		if scenarios[i-1].Feasible != scenarios[i].Feasible {
			continue
		}
		assert.LessOrEqual(t, tierRank[scenarios[i-1].Tier], tierRank[scenarios[i].Tier],
			"tier order violated between %q and %q", scenarios[i-1].ID, scenarios[i].ID)
	}
}

// Re-running the simulator on a scenario's appliance list must reproduce
// the outcome the generator reported.
func TestGenerateScenariosConsistentWithSimulator(t *testing.T) {
	battery := exampleBattery()
	schedule := exampleSchedule()
	scenarios := GenerateScenarios(battery, DefaultAppliances(), schedule, 10)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		sim := Simulate(battery, s.Appliances, schedule.Periods, 10)
		assert.Equal(t, s.Feasible, sim.CanSurviveOutage, "scenario %q", s.ID)

		minLevel, minHour := timelineMinimum(sim.Timeline)
		assert.InDelta(t, s.MinBatteryLevel, round1(minLevel), 0.001, "scenario %q", s.ID)
		assert.Equal(t, s.MinBatteryTime, minHour, "scenario %q", s.ID)
	}
}

func TestGenerateScenariosDoesNotAliasInputs(t *testing.T) {
	base := DefaultAppliances()
	scenarios := GenerateScenarios(exampleBattery(), base, exampleSchedule(), 10)
	require.NotEmpty(t, scenarios)

	// Mutating a scenario's appliances must not leak into the base list
	// or into any other scenario.
	target := scenarios[0]
	for i := range target.Appliances {
		target.Appliances[i].Enabled = !target.Appliances[i].Enabled
		for j := range target.Appliances[i].Schedule {
			target.Appliances[i].Schedule[j].Start = -1
		}
	}

	fresh := DefaultAppliances()
	assert.Equal(t, fresh, base, "base appliance list was mutated")

	for _, other := range scenarios[1:] {
		for _, a := range other.Appliances {
			for _, r := range a.Schedule {
				assert.NotEqual(t, -1.0, r.Start, "scenario %q shares schedule storage with %q", other.ID, target.ID)
			}
		}
	}
}

func TestGenerateScenariosDeterministic(t *testing.T) {
	a := GenerateScenarios(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10)
	b := GenerateScenarios(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10)
	assert.Equal(t, a, b)
}

func TestGenerateScenariosEnergyUsed(t *testing.T) {
	scenarios := GenerateScenarios(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10)

	for _, s := range scenarios {
		sim := Simulate(exampleBattery(), s.Appliances, exampleSchedule().Periods, 10)
		want := 0.0
		for _, p := range sim.Timeline {
			if !p.Charging {
				want += p.Consumption
			}
		}
		assert.InDelta(t, round1(want), s.EnergyUsedKwh, 0.001, "scenario %q", s.ID)
	}
}

func TestTimeOfDayBuckets(t *testing.T) {
	tests := []struct {
		hour int
		want timeOfDay
	}{
		{23, night}, {0, night}, {5, night},
		{6, morning}, {9, morning},
		{10, day}, {16, day},
		{17, evening}, {22, evening},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timeOfDayBucket(tt.hour), "hour %d", tt.hour)
	}
}

func TestBatteryBandBuckets(t *testing.T) {
	assert.Equal(t, bandCritical, batteryBandBucket(19.9))
	assert.Equal(t, bandLow, batteryBandBucket(20))
	assert.Equal(t, bandLow, batteryBandBucket(39.9))
	assert.Equal(t, bandMedium, batteryBandBucket(40))
	assert.Equal(t, bandMedium, batteryBandBucket(69.9))
	assert.Equal(t, bandHigh, batteryBandBucket(70))
}
