package engine

import (
	"fmt"
	"math"
	"strings"
)

// Recommendations inspects the simulated outcome and current state and
// returns advisory messages in a fixed evaluation order. Rules are
// independent: several can fire at once, and consumers display them in
// the order returned.
func Recommendations(battery BatterySettings, appliances []Appliance, hoursRemaining float64, canSurvive bool, powerPeriods []TimeRange, referenceHour float64) []string {
	recs := []string{}

	if !canSurvive {
		recs = append(recs, "Battery will deplete before grid power returns. Reduce consumption or disable appliances.")
	}

	if battery.CurrentCharge < 50 {
		recs = append(recs, "Battery charge is below 50%. Consider reducing consumption to preserve reserve.")
	}

	if hoursRemaining >= 0 && hoursRemaining < 4 {
		recs = append(recs, fmt.Sprintf("Less than 4 hours of battery left at the current draw (%.1f h).", hoursRemaining))
	}

	if battery.CurrentCharge < 40 {
		var heavy []string
		for _, a := range appliances {
			if a.Enabled && a.PowerKw > 1 {
				heavy = append(heavy, a.Name)
			}
		}
		if len(heavy) > 0 {
			recs = append(recs, fmt.Sprintf("High-power appliances are draining a low battery: %s. Consider switching them off.", strings.Join(heavy, ", ")))
		}
	}

	enabled := 0
	for _, a := range appliances {
		if a.Enabled {
			enabled++
		}
	}
	if hoursRemaining < hoursUntilPowerOn(powerPeriods, referenceHour) && enabled > 1 {
		recs = append(recs, "Battery will not last until grid power returns. Switch off non-essential appliances.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Battery and appliance configuration look good. No changes needed.")
	}

	return recs
}

// hoursUntilPowerOn returns 0 when the grid is up at the reference hour,
// otherwise the shortest forward distance to the start of any power
// period, measured modulo 24. With no periods at all the grid never
// comes back, which maps to the finite sentinel.
func hoursUntilPowerOn(powerPeriods []TimeRange, referenceHour float64) float64 {
	refHour := math.Mod(referenceHour, 24)
	if InAnyRange(refHour, powerPeriods) {
		return 0
	}
	if len(powerPeriods) == 0 {
		return SentinelHours
	}

	minHours := SentinelHours
	for _, p := range powerPeriods {
		d := p.Start - refHour
		if d <= 0 {
			d += 24
		}
		if d < minHours {
			minHours = d
		}
	}
	return minHours
}
