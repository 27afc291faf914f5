package engine

import "math"

// Simulate advances the battery charge hour-by-hour for the 24 hours
// starting at floor(referenceHour). Appliances always prefer grid power:
// the battery only discharges while the grid is down, and only charges
// while it is up. The level is clamped to [MinDischarge, MaxCharge] and
// rounded to one decimal at every step; the rounded value feeds the next
// step, matching what downstream feasibility checks see.
func Simulate(battery BatterySettings, appliances []Appliance, powerPeriods []TimeRange, referenceHour float64) Simulation {
	startHour := int(math.Floor(referenceHour)) % 24
	level := battery.CurrentCharge

	timeline := make([]TimelinePoint, 0, 24)
	survives := true

	for i := 0; i < 24; i++ {
		hour := (startHour + i) % 24
		gridOn := InAnyRange(float64(hour), powerPeriods)

		var names []string
		draw := 0.0
		for _, a := range appliances {
			if !a.Enabled || !a.ActiveAt(float64(hour)) {
				continue
			}
			draw += a.PowerKw
			names = append(names, a.Name)
		}

		consumption := draw
		if gridOn {
			consumption = 0
		}

		// Division by zero is guarded up front; with a zero-capacity
		// pack the level simply never moves.
		if battery.CapacityKwh > 0 {
			if gridOn {
				level = math.Min(battery.MaxCharge, level+battery.ChargingPowerKw/battery.CapacityKwh*100)
			} else {
				level = math.Max(battery.MinDischarge, level-consumption/battery.CapacityKwh*100)
			}
		}
		level = round1(level)

		if level <= battery.MinDischarge {
			survives = false
		}

		timeline = append(timeline, TimelinePoint{
			Hour:         hour,
			BatteryLevel: level,
			Consumption:  consumption,
			Charging:     gridOn,
			Appliances:   names,
		})
	}

	return Simulation{Timeline: timeline, CanSurviveOutage: survives}
}

// CalculateBatteryStatus runs the full projection and derives the
// instantaneous metrics and recommendations for the reference hour.
func CalculateBatteryStatus(battery BatterySettings, appliances []Appliance, schedule PowerSchedule, referenceHour float64) CalculationResult {
	sim := Simulate(battery, appliances, schedule.Periods, referenceHour)

	refHour := math.Mod(referenceHour, 24)
	gridOn := InAnyRange(refHour, schedule.Periods)

	usable := battery.CapacityKwh * (battery.MaxCharge - battery.MinDischarge) / 100
	available := battery.CapacityKwh * math.Max(0, battery.CurrentCharge-battery.MinDischarge) / 100

	consumption := 0.0
	if !gridOn {
		for _, a := range appliances {
			if a.Enabled && a.ActiveAt(refHour) {
				consumption += a.PowerKw
			}
		}
	}

	hoursRemaining := SentinelHours
	if consumption > 0 {
		hoursRemaining = available / consumption
	}

	chargeTime := SentinelHours
	energyToFull := battery.CapacityKwh * (battery.MaxCharge - battery.CurrentCharge) / 100
	if battery.ChargingPowerKw > 0 && energyToFull > 0 {
		chargeTime = energyToFull / battery.ChargingPowerKw
	}

	return CalculationResult{
		UsableEnergyKwh:        usable,
		CurrentAvailableEnergy: available,
		CurrentConsumption:     consumption,
		HoursRemaining:         hoursRemaining,
		ChargeTime:             chargeTime,
		Timeline:               sim.Timeline,
		CanSurviveOutage:       sim.CanSurviveOutage,
		Recommendations:        Recommendations(battery, appliances, hoursRemaining, sim.CanSurviveOutage, schedule.Periods, referenceHour),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
