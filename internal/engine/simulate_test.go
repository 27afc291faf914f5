package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleBattery() BatterySettings {
	return BatterySettings{
		CapacityKwh:     82,
		MinDischarge:    10,
		MaxCharge:       95,
		CurrentCharge:   50,
		ChargingPowerKw: 20,
	}
}

func exampleSchedule() PowerSchedule {
	return PowerSchedule{Periods: []TimeRange{{Start: 6, End: 14}}}
}

// The reference trace: 20 kW charger on an 82 kWh pack gains ~24.4
// points per hour while the grid is up (06-14, clamped at 95), then
// heating (4 kW) + water (2 kW) drain ~7.3 points per hour, with the
// elevator adding 3 kW during 18:30-20:30. Every step is rounded to one
// decimal and fed forward.
func TestSimulateExampleTrace(t *testing.T) {
	sim := Simulate(exampleBattery(), DefaultAppliances(), exampleSchedule().Periods, 10)

	require.Len(t, sim.Timeline, 24)

	wantHours := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	wantLevels := []float64{
		74.4, 95, 95, 95, // charging, clamped at ceiling
		87.7, 80.4, 73.1, 65.8, 58.5, // 6 kW base draw
		47.5, 36.5, // elevator peak, 9 kW
		29.2, 21.9, 14.6, // 6 kW again
		10, 10, 10, 10, 10, 10, // clamped at floor
		34.4, 58.8, 83.2, 95, // recharging next morning
	}
	wantConsumption := []float64{
		0, 0, 0, 0,
		6, 6, 6, 6, 6,
		9, 9,
		6, 6, 6,
		6, 6, 6, 6, 6, 6,
		0, 0, 0, 0,
	}

	for i, p := range sim.Timeline {
		assert.Equal(t, wantHours[i], p.Hour, "hour at index %d", i)
		assert.InDelta(t, wantLevels[i], p.BatteryLevel, 0.001, "level at hour %d", p.Hour)
		assert.InDelta(t, wantConsumption[i], p.Consumption, 0.001, "consumption at hour %d", p.Hour)
		assert.Equal(t, wantConsumption[i] == 0, p.Charging, "charging at hour %d", p.Hour)
	}

	// The floor is touched at hour 0, so the window is not survivable.
	assert.False(t, sim.CanSurviveOutage)
}

func TestSimulateGridPrecedence(t *testing.T) {
	// Even an absurd draw never touches the battery while the grid is up.
	apps := []Appliance{{ID: "hog", Name: "Hog", PowerKw: 500, Enabled: true}}
	sim := Simulate(exampleBattery(), apps, exampleSchedule().Periods, 0)

	for _, p := range sim.Timeline {
		if p.Charging {
			assert.Zero(t, p.Consumption, "hour %d draws from battery while grid is up", p.Hour)
		}
	}
}

func TestSimulateClamping(t *testing.T) {
	b := BatterySettings{
		CapacityKwh:     10,
		MinDischarge:    20,
		MaxCharge:       80,
		CurrentCharge:   50,
		ChargingPowerKw: 50,
	}
	apps := []Appliance{{ID: "hog", Name: "Hog", PowerKw: 40, Enabled: true}}
	sim := Simulate(b, apps, []TimeRange{{Start: 0, End: 12}}, 0)

	for _, p := range sim.Timeline {
		assert.LessOrEqual(t, p.BatteryLevel, b.MaxCharge, "hour %d above ceiling", p.Hour)
		assert.GreaterOrEqual(t, p.BatteryLevel, b.MinDischarge, "hour %d below floor", p.Hour)
	}
}

func TestSimulateSurvivabilityStrict(t *testing.T) {
	// Landing exactly on the floor counts as failure.
	b := BatterySettings{CapacityKwh: 100, MinDischarge: 10, MaxCharge: 100, CurrentCharge: 34}
	apps := []Appliance{{ID: "load", Name: "Load", PowerKw: 1, Enabled: true}}
	sim := Simulate(b, apps, nil, 0)

	assert.InDelta(t, 10.0, sim.Timeline[23].BatteryLevel, 0.001)
	assert.False(t, sim.CanSurviveOutage)

	// One more point of charge keeps the last hour strictly above the floor.
	b.CurrentCharge = 35
	sim = Simulate(b, apps, nil, 0)
	assert.InDelta(t, 11.0, sim.Timeline[23].BatteryLevel, 0.001)
	assert.True(t, sim.CanSurviveOutage)
}

func TestSimulateIdempotent(t *testing.T) {
	a := Simulate(exampleBattery(), DefaultAppliances(), exampleSchedule().Periods, 10.5)
	b := Simulate(exampleBattery(), DefaultAppliances(), exampleSchedule().Periods, 10.5)
	assert.Equal(t, a, b)
}

func TestSimulateDisabledAppliancesIgnored(t *testing.T) {
	apps := []Appliance{
		{ID: "off", Name: "Off", PowerKw: 99, Enabled: false},
	}
	sim := Simulate(exampleBattery(), apps, nil, 0)
	for _, p := range sim.Timeline {
		assert.Zero(t, p.Consumption)
		assert.Empty(t, p.Appliances)
	}
}

func TestSimulateZeroCapacity(t *testing.T) {
	b := BatterySettings{CapacityKwh: 0, MinDischarge: 10, MaxCharge: 95, CurrentCharge: 50, ChargingPowerKw: 20}
	sim := Simulate(b, DefaultAppliances(), exampleSchedule().Periods, 0)
	for _, p := range sim.Timeline {
		assert.InDelta(t, 50.0, p.BatteryLevel, 0.001)
	}
}

func TestCalculateBatteryStatusMetrics(t *testing.T) {
	res := CalculateBatteryStatus(exampleBattery(), DefaultAppliances(), exampleSchedule(), 10)

	// 82 kWh * (95 - 10)% usable, 82 kWh * (50 - 10)% above the floor.
	assert.InDelta(t, 69.7, res.UsableEnergyKwh, 0.001)
	assert.InDelta(t, 32.8, res.CurrentAvailableEnergy, 0.001)

	// Grid is up at hour 10, so nothing draws from the battery and the
	// hours-remaining division is replaced with the finite sentinel.
	assert.Zero(t, res.CurrentConsumption)
	assert.Equal(t, SentinelHours, res.HoursRemaining)

	// 82 * 45% = 36.9 kWh to the ceiling at 20 kW.
	assert.InDelta(t, 1.845, res.ChargeTime, 0.001)

	assert.Len(t, res.Timeline, 24)
	assert.False(t, res.CanSurviveOutage)
	assert.NotEmpty(t, res.Recommendations)
}

func TestCalculateBatteryStatusOffGrid(t *testing.T) {
	res := CalculateBatteryStatus(exampleBattery(), DefaultAppliances(), exampleSchedule(), 15)

	// Heating + water draw 6 kW at hour 15; 32.8 kWh / 6 kW.
	assert.InDelta(t, 6.0, res.CurrentConsumption, 0.001)
	assert.InDelta(t, 32.8/6.0, res.HoursRemaining, 0.001)
}

func TestCalculateBatteryStatusSentinels(t *testing.T) {
	// No charger: charge time can never complete.
	b := exampleBattery()
	b.ChargingPowerKw = 0
	res := CalculateBatteryStatus(b, nil, PowerSchedule{}, 12)
	assert.Equal(t, SentinelHours, res.ChargeTime)

	// No appliances while off grid: the battery lasts "forever".
	assert.Equal(t, SentinelHours, res.HoursRemaining)

	// Already at the ceiling: likewise reported as the sentinel rather
	// than zero, so the field stays "time until usable" for displays.
	b = exampleBattery()
	b.CurrentCharge = b.MaxCharge
	res = CalculateBatteryStatus(b, nil, PowerSchedule{}, 12)
	assert.Equal(t, SentinelHours, res.ChargeTime)
}

func TestSimulateFractionalReferenceHourFloors(t *testing.T) {
	a := Simulate(exampleBattery(), DefaultAppliances(), exampleSchedule().Periods, 10.0)
	b := Simulate(exampleBattery(), DefaultAppliances(), exampleSchedule().Periods, 10.75)
	assert.Equal(t, a.Timeline, b.Timeline)
}
