package physics

// ThermalEnergy is the internal energy of mass kilograms of a monatomic
// ideal gas with the given molar mass at temperature t:
// m/M · R · T · 3/2.
func ThermalEnergy(mass, molarMass, gasConstant, t float64) float64 {
	return mass / molarMass * gasConstant * t * 1.5
}

// Temperature inverts ThermalEnergy.
func Temperature(thermal, mass, molarMass, gasConstant float64) float64 {
	return thermal / (1.5 * mass / molarMass * gasConstant)
}
