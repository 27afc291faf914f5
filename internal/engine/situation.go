package engine

import "math"

// AnalyzeSituation summarizes the next 24 hours of grid availability from
// floor(referenceHour), independent of the appliance configuration.
func AnalyzeSituation(battery BatterySettings, schedule PowerSchedule, referenceHour float64) SituationSummary {
	startHour := int(math.Floor(referenceHour)) % 24

	outageHours := 0
	for i := 0; i < 24; i++ {
		if !InAnyRange(float64((startHour+i)%24), schedule.Periods) {
			outageHours++
		}
	}

	onNow := InAnyRange(float64(startHour), schedule.Periods)

	// Bounded scans: never more than 24 steps, defaulting to 24 when no
	// transition is found inside the window.
	hoursToPowerOn := 0
	if !onNow {
		hoursToPowerOn = 24
		for i := 1; i <= 24; i++ {
			if InAnyRange(float64((startHour+i)%24), schedule.Periods) {
				hoursToPowerOn = i
				break
			}
		}
	}

	// The symmetric scan only runs while power is on; otherwise the field
	// stays 0 and means "not applicable".
	hoursToOutage := 0
	if onNow {
		hoursToOutage = 24
		for i := 1; i <= 24; i++ {
			if !InAnyRange(float64((startHour+i)%24), schedule.Periods) {
				hoursToOutage = i
				break
			}
		}
	}

	available := battery.CapacityKwh * math.Max(0, battery.CurrentCharge-battery.MinDischarge) / 100

	return SituationSummary{
		BatteryPercent:     battery.CurrentCharge,
		AvailableEnergyKwh: round1(available),
		TotalOutageHours:   outageHours,
		IsPowerOnNow:       onNow,
		HoursToNextPowerOn: hoursToPowerOn,
		HoursToNextOutage:  hoursToOutage,
	}
}
