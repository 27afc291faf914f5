package engine

// DefaultBattery returns the battery parameters used until the user (or
// live telemetry) supplies their own.
func DefaultBattery() BatterySettings {
	return BatterySettings{
		CapacityKwh:     82,
		MinDischarge:    10,
		MaxCharge:       95,
		CurrentCharge:   50,
		ChargingPowerKw: 20,
	}
}

// DefaultAppliances returns the fixed starting catalog. The scenario
// catalog references these ids when applying overrides; appliances added
// later simply keep their base configuration in every scenario.
func DefaultAppliances() []Appliance {
	return []Appliance{
		{
			ID:      "water",
			Name:    "Water heater",
			Icon:    "water",
			Color:   "#3b82f6",
			PowerKw: 2,
			Enabled: true,
		},
		{
			ID:      "heating",
			Name:    "Heating",
			Icon:    "heat",
			Color:   "#ef4444",
			PowerKw: 4,
			Enabled: true,
		},
		{
			ID:      "elevator",
			Name:    "Elevator",
			Icon:    "elevator",
			Color:   "#8b5cf6",
			PowerKw: 3,
			Enabled: true,
			Schedule: []TimeRange{
				{Start: 7, End: 9},
				{Start: 18.5, End: 20.5},
			},
		},
		{
			ID:      "lighting",
			Name:    "Lighting",
			Icon:    "light",
			Color:   "#f59e0b",
			PowerKw: 0.4,
			Enabled: false,
			Schedule: []TimeRange{
				{Start: 18, End: 6},
			},
		},
	}
}
