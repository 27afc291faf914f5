package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSituationPowerOn(t *testing.T) {
	s := AnalyzeSituation(exampleBattery(), exampleSchedule(), 10)

	assert.Equal(t, 50.0, s.BatteryPercent)
	assert.InDelta(t, 32.8, s.AvailableEnergyKwh, 0.001)
	// Grid is up 06-14, eight of the next 24 hours.
	assert.Equal(t, 16, s.TotalOutageHours)
	assert.True(t, s.IsPowerOnNow)
	assert.Equal(t, 0, s.HoursToNextPowerOn)
	// Hours 11-13 are still on; 14 is the first outage hour.
	assert.Equal(t, 4, s.HoursToNextOutage)
}

func TestAnalyzeSituationPowerOff(t *testing.T) {
	s := AnalyzeSituation(exampleBattery(), exampleSchedule(), 20)

	assert.False(t, s.IsPowerOnNow)
	assert.Equal(t, 10, s.HoursToNextPowerOn)
	// Not computed while power is off; 0 means "not applicable".
	assert.Equal(t, 0, s.HoursToNextOutage)
}

func TestAnalyzeSituationNoGridAtAll(t *testing.T) {
	s := AnalyzeSituation(exampleBattery(), PowerSchedule{}, 3)

	assert.Equal(t, 24, s.TotalOutageHours)
	assert.False(t, s.IsPowerOnNow)
	// The scan is bounded; "never within the window" reports 24.
	assert.Equal(t, 24, s.HoursToNextPowerOn)
	assert.Equal(t, 0, s.HoursToNextOutage)
}

func TestAnalyzeSituationGridAlwaysOn(t *testing.T) {
	schedule := PowerSchedule{Periods: []TimeRange{{Start: 0, End: 12}, {Start: 12, End: 0}}}
	s := AnalyzeSituation(exampleBattery(), schedule, 9)

	assert.Equal(t, 0, s.TotalOutageHours)
	assert.True(t, s.IsPowerOnNow)
	assert.Equal(t, 0, s.HoursToNextPowerOn)
	assert.Equal(t, 24, s.HoursToNextOutage)
}

func TestAnalyzeSituationOverlappingPeriods(t *testing.T) {
	// Overlaps are a union, not double-counted.
	schedule := PowerSchedule{Periods: []TimeRange{{Start: 6, End: 14}, {Start: 10, End: 16}}}
	s := AnalyzeSituation(exampleBattery(), schedule, 0)

	assert.Equal(t, 14, s.TotalOutageHours)
	assert.Equal(t, 6, s.HoursToNextPowerOn)
}

func TestAnalyzeSituationFractionalHourFloors(t *testing.T) {
	a := AnalyzeSituation(exampleBattery(), exampleSchedule(), 20.0)
	b := AnalyzeSituation(exampleBattery(), exampleSchedule(), 20.9)
	assert.Equal(t, a, b)
}
