// Package domain models decoded readings from Bresser environmental sensors
// and the canonical record the bridge publishes for each of them.
//
// # Data Source
//
// Readings come from an external decoder shared by every Bresser sensor family
// on the 868 MHz band. The decoder handles the radio and the three incompatible
// weather message layouts and hands over one [RawReading] per received message.
//
// # Message Variants
//
// Weather stations transmit one of three layouts, and the fields a reading
// carries depend on which one produced it:
//
//	5-in-1: temperature, humidity, wind, rain
//	6-in-1: temperature, humidity, wind, rain, UV (alternating frames)
//	7-in-1: temperature, humidity, wind, rain, UV, illuminance
//
// Every physical quantity is paired with its own validity flag. Wind gust,
// average speed and direction travel together and share one flag.
//
// Other families (lightning detector, leakage sensor, thermo-hygrometer, soil
// probe, air quality) use the same decoder slots and are tagged with their own
// [SensorType]; only the weather variants are accepted by [IsWeather].
//
// # Units
//
//	temperature  °C
//	humidity     %
//	wind         m/s, direction in degrees
//	rain         mm (accumulated by the station)
//	UV           index
//	light        klx
//	rssi         dBm
//
// Values pass through unchanged; the bridge never converts, clamps or
// interpolates.
//
// # Not-available Values
//
// A field whose flag is false is carried as [NotAvailable] (NaN) with OK=false,
// and is encoded as JSON null.
package domain
