package decoder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
)

// MaxSensorIDs caps the include and exclude lists.
const MaxSensorIDs = 12

// maxLineSize bounds one rtl_433 event line.
const maxLineSize = 64 * 1024

// modelTypes maps rtl_433 model names onto sensor types.
var modelTypes = map[string]domain.SensorType{
	"Bresser-5in1":      domain.SensorTypeWeather0,
	"Bresser-6in1":      domain.SensorTypeWeather1,
	"Bresser-7in1":      domain.SensorTypeWeather3,
	"Bresser-8in1":      domain.SensorTypeWeather8,
	"Bresser-3CH":       domain.SensorTypeThermoHygro,
	"Bresser-Lightning": domain.SensorTypeLightning,
	"Bresser-Leakage":   domain.SensorTypeLeakage,
}

// rtl433Event is the subset of an rtl_433 "-F json" event the bridge reads.
// Pointer fields are nil when the message variant does not carry them.
type rtl433Event struct {
	Model        string          `json:"model"`
	ID           json.RawMessage `json:"id"`
	BatteryOK    *int            `json:"battery_ok"`
	TemperatureC *float64        `json:"temperature_C"`
	Humidity     *float64        `json:"humidity"`
	WindMax      *float64        `json:"wind_max_m_s"`
	WindAvg      *float64        `json:"wind_avg_m_s"`
	WindDir      *float64        `json:"wind_dir_deg"`
	RainMM       *float64        `json:"rain_mm"`
	UV           *float64        `json:"uv"`
	LightKlx     *float64        `json:"light_klx"`
	LightLux     *float64        `json:"light_lux"`
	RSSI         *float64        `json:"rssi"`
}

// RTL433Options configures an RTL433 decoder.
type RTL433Options struct {
	Buffer  int
	Include []uint32
	Exclude []uint32
}

// RTL433 decodes rtl_433 JSON lines from a stream. One reader goroutine
// buffers lines after Begin; GetMessage never blocks.
type RTL433 struct {
	src    io.Reader
	opts   RTL433Options
	logger *slog.Logger

	lines chan []byte

	mu      sync.Mutex
	slot    domain.RawReading
	full    bool
	drained bool
	readErr error
}

// NewRTL433 creates a decoder reading from src.
func NewRTL433(src io.Reader, opts RTL433Options, logger *slog.Logger) (*RTL433, error) {
	if len(opts.Include) > MaxSensorIDs || len(opts.Exclude) > MaxSensorIDs {
		return nil, fmt.Errorf("at most %d sensor IDs per list", MaxSensorIDs)
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	return &RTL433{src: src, opts: opts, logger: logger}, nil
}

// OpenInput opens the rtl_433 source at path; "-" is stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rtl_433 input: %w", err)
	}
	return f, nil
}

// Begin starts the reader goroutine.
func (d *RTL433) Begin() error {
	if d.src == nil {
		return errors.New("rtl_433 source is nil")
	}
	d.lines = make(chan []byte, d.opts.Buffer)
	go d.readLoop()
	return nil
}

// readLoop forwards one entry per non-blank line. A line longer than
// maxLineSize is discarded up to its newline and forwarded as nil, which
// decodes as a checksum error.
func (d *RTL433) readLoop() {
	defer close(d.lines)

	r := bufio.NewReaderSize(d.src, maxLineSize)
	for {
		line, err := r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			d.logger.Warn("rtl_433 line too long, skipping", "limit", maxLineSize)
			err = skipLine(r)
			d.lines <- nil
		} else if len(bytes.TrimSpace(line)) > 0 {
			d.lines <- slices.Clone(line)
		}

		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			d.mu.Lock()
			d.readErr = err
			d.mu.Unlock()
			d.logger.Error("rtl_433 source read failed", "error", err)
			return
		}
	}
}

// skipLine consumes the rest of the current line.
func skipLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

// ClearSlots empties the reading slot.
func (d *RTL433) ClearSlots() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slot = domain.RawReading{}
	d.full = false
}

// GetMessage takes at most one buffered line and decodes it into slot 0.
func (d *RTL433) GetMessage() Status {
	if d.lines == nil {
		return StatusDigestError
	}

	select {
	case line, ok := <-d.lines:
		if !ok {
			return d.drainedStatus()
		}
		return d.decode(line)
	default:
		return StatusInvalid
	}
}

// Exhausted reports whether the source has ended and every buffered line was
// taken by GetMessage.
func (d *RTL433) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drained
}

func (d *RTL433) drainedStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drained = true
	if d.readErr != nil {
		return StatusDigestError
	}
	return StatusInvalid
}

func (d *RTL433) decode(line []byte) Status {
	var ev rtl433Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return StatusChecksumError
	}
	id, err := parseEventID(ev.ID)
	if err != nil {
		return StatusChecksumError
	}
	if !d.wanted(id) {
		return StatusSkip
	}

	raw := readingFromEvent(ev)
	raw.SensorID = id

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return StatusFull
	}
	d.slot = raw
	d.full = true
	return StatusOK
}

// Slot returns the reading decoded by the last successful GetMessage.
func (d *RTL433) Slot(i int) (domain.RawReading, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i != 0 || !d.full {
		return domain.RawReading{}, false
	}
	return d.slot, true
}

func (d *RTL433) wanted(id uint32) bool {
	if slices.Contains(d.opts.Exclude, id) {
		return false
	}
	return len(d.opts.Include) == 0 || slices.Contains(d.opts.Include, id)
}

func readingFromEvent(ev rtl433Event) domain.RawReading {
	st, ok := modelTypes[ev.Model]
	if !ok {
		st = domain.SensorTypeUnknown
	}

	raw := domain.RawReading{
		SensorType: st,
		BatteryOK:  ev.BatteryOK != nil && *ev.BatteryOK == 1,
	}
	if ev.RSSI != nil {
		raw.RSSI = *ev.RSSI
	}
	if ev.TemperatureC != nil {
		raw.TempC, raw.TempOK = *ev.TemperatureC, true
	}
	if ev.Humidity != nil {
		raw.Humidity, raw.HumidityOK = *ev.Humidity, true
	}
	if ev.WindMax != nil && ev.WindAvg != nil && ev.WindDir != nil {
		raw.WindGust, raw.WindAvg, raw.WindDirection = *ev.WindMax, *ev.WindAvg, *ev.WindDir
		raw.WindOK = true
	}
	if ev.RainMM != nil {
		raw.RainMM, raw.RainOK = *ev.RainMM, true
	}
	if ev.UV != nil {
		raw.UV, raw.UVOK = *ev.UV, true
	}
	switch {
	case ev.LightKlx != nil:
		raw.LightKlx, raw.LightOK = *ev.LightKlx, true
	case ev.LightLux != nil:
		raw.LightKlx, raw.LightOK = *ev.LightLux/1000, true
	}
	return raw
}

// parseEventID accepts the id as a JSON number or a hex string.
func parseEventID(msg json.RawMessage) (uint32, error) {
	if len(msg) == 0 {
		return 0, errors.New("missing id")
	}
	var n uint32
	if err := json.Unmarshal(msg, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, fmt.Errorf("id: %w", err)
	}
	return ParseSensorID(s)
}

// ParseSensorID parses a hex sensor ID with or without a 0x prefix.
func ParseSensorID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, errors.New("empty sensor id")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid sensor id %q: %w", s, err)
	}
	return uint32(v), nil
}
