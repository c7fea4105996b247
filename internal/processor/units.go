package processor

// Unit conversion factors for the fields served by the products.
const (
	// Wind speeds arrive in m/s.
	MetersPerSecondToKnots = 1.94384
	// Wave heights arrive in meters.
	MetersToFeet = 3.28084
	// Precipitation rates arrive in kg·m⁻²·s⁻¹, equivalent to mm/s.
	PrecipRateToMillimetersPerHour = 3600
	// Visibility arrives in meters.
	MetersPerNauticalMile = 1852
	// Temperatures arrive in kelvin.
	KelvinOffset = 273.15
)
