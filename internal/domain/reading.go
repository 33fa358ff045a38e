package domain

// SensorType tags the sensor family that produced a reading. Values mirror the
// decoder's s_type codes.
type SensorType int

const (
	SensorTypeWeather0    SensorType = 0
	SensorTypeWeather1    SensorType = 1
	SensorTypeThermoHygro SensorType = 2
	SensorTypeWeather3    SensorType = 3
	SensorTypeSoil        SensorType = 4
	SensorTypeLeakage     SensorType = 5
	SensorTypeWeather8    SensorType = 8
	SensorTypeLightning   SensorType = 9
	SensorTypeCO2         SensorType = 10
	SensorTypeAirQuality  SensorType = 11

	// SensorTypeUnknown marks a reading from a model the decoder could not map.
	SensorTypeUnknown SensorType = -1
)

var sensorTypeNames = map[SensorType]string{
	SensorTypeWeather0:    "weather0",
	SensorTypeWeather1:    "weather1",
	SensorTypeThermoHygro: "thermo_hygro",
	SensorTypeWeather3:    "weather3",
	SensorTypeSoil:        "soil",
	SensorTypeLeakage:     "leakage",
	SensorTypeWeather8:    "weather8",
	SensorTypeLightning:   "lightning",
	SensorTypeCO2:         "co2",
	SensorTypeAirQuality:  "air_quality",
}

func (t SensorType) String() string {
	if name, ok := sensorTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the type by name.
func (t SensorType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText. Unrecognized names
// decode to SensorTypeUnknown.
func (t *SensorType) UnmarshalText(text []byte) error {
	for k, name := range sensorTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	*t = SensorTypeUnknown
	return nil
}

// Outcome is the result of one decode attempt.
type Outcome int

const (
	// Decoded means one reading is available.
	Decoded Outcome = iota
	// NoData means nothing was received this tick.
	NoData
	// DecodeError means a message arrived but could not be used.
	DecodeError
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case NoData:
		return "no_data"
	default:
		return "decode_error"
	}
}

// RawReading is one decoded sensor message. A numeric field is meaningful only
// when its flag is true.
type RawReading struct {
	SensorID   uint32
	SensorType SensorType
	RSSI       float64
	BatteryOK  bool

	TempC  float64
	TempOK bool

	Humidity   float64
	HumidityOK bool

	// Gust, average and direction share WindOK.
	WindGust      float64
	WindAvg       float64
	WindDirection float64
	WindOK        bool

	RainMM float64
	RainOK bool

	UV   float64
	UVOK bool

	LightKlx float64
	LightOK  bool
}
