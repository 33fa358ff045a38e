package domain

// IdentityFilter optionally restricts readings to one sensor ID. The zero
// value lets every reading through.
type IdentityFilter struct {
	target  uint32
	enabled bool
}

// Set enables the filter for id.
func (f *IdentityFilter) Set(id uint32) {
	f.target = id
	f.enabled = true
}

// Target returns the configured ID and whether the filter is enabled.
func (f IdentityFilter) Target() (uint32, bool) {
	return f.target, f.enabled
}

// Allow reports whether a reading from id passes.
func (f IdentityFilter) Allow(id uint32) bool {
	return !f.enabled || id == f.target
}

// IsWeather reports whether t is one of the weather station variants.
func IsWeather(t SensorType) bool {
	switch t {
	case SensorTypeWeather0, SensorTypeWeather1, SensorTypeWeather3, SensorTypeWeather8:
		return true
	default:
		return false
	}
}
