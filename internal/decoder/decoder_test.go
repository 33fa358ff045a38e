package decoder_test

import (
	"errors"
	"testing"

	"github.com/couchcryptid/weather-sensor-bridge/internal/decoder"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fakeDecoder struct {
	beginErr   error
	beginCalls int
	clearCalls int
	status     decoder.Status
	slots      []domain.RawReading
	cleared    bool
}

func (f *fakeDecoder) Begin() error {
	f.beginCalls++
	return f.beginErr
}

func (f *fakeDecoder) ClearSlots() {
	f.clearCalls++
	f.cleared = true
}

func (f *fakeDecoder) GetMessage() decoder.Status {
	f.cleared = false
	return f.status
}

func (f *fakeDecoder) Slot(i int) (domain.RawReading, bool) {
	if f.cleared || i >= len(f.slots) {
		return domain.RawReading{}, false
	}
	return f.slots[i], true
}

// --- tests ---

func TestAdapter_BeginOnce(t *testing.T) {
	fd := &fakeDecoder{}
	a := decoder.NewAdapter(fd)

	require.NoError(t, a.Begin())
	_, outcome := a.Poll()
	assert.Equal(t, domain.NoData, outcome)
	assert.Equal(t, 1, fd.clearCalls)

	err := a.Begin()
	require.ErrorIs(t, err, decoder.ErrAlreadyStarted)
	assert.Equal(t, 1, fd.beginCalls)
}

func TestAdapter_BeginFailure(t *testing.T) {
	fd := &fakeDecoder{beginErr: errors.New("radio not found")}
	a := decoder.NewAdapter(fd)

	require.EqualError(t, a.Begin(), "radio not found")

	_, outcome := a.Poll()
	assert.Equal(t, domain.DecodeError, outcome)
	assert.Zero(t, fd.clearCalls)
}

func TestAdapter_PollDecodedUsesSlotZero(t *testing.T) {
	fd := &fakeDecoder{
		status: decoder.StatusOK,
		slots: []domain.RawReading{
			{SensorID: 0x83750871, SensorType: domain.SensorTypeWeather0},
			{SensorID: 0x11111111, SensorType: domain.SensorTypeWeather1},
		},
	}
	a := decoder.NewAdapter(fd)
	require.NoError(t, a.Begin())

	raw, outcome := a.Poll()

	assert.Equal(t, domain.Decoded, outcome)
	assert.Equal(t, uint32(0x83750871), raw.SensorID)
	assert.Equal(t, 1, fd.clearCalls)
}

func TestAdapter_PollClearsEveryTick(t *testing.T) {
	fd := &fakeDecoder{status: decoder.StatusInvalid}
	a := decoder.NewAdapter(fd)
	require.NoError(t, a.Begin())

	for range 3 {
		_, outcome := a.Poll()
		assert.Equal(t, domain.NoData, outcome)
	}
	assert.Equal(t, 3, fd.clearCalls)
}

func TestAdapter_DecodedWithEmptySlot(t *testing.T) {
	fd := &fakeDecoder{status: decoder.StatusOK}
	a := decoder.NewAdapter(fd)
	require.NoError(t, a.Begin())

	_, outcome := a.Poll()
	assert.Equal(t, domain.DecodeError, outcome)
}

func TestMapStatus(t *testing.T) {
	cases := map[decoder.Status]domain.Outcome{
		decoder.StatusOK:            domain.Decoded,
		decoder.StatusInvalid:       domain.NoData,
		decoder.StatusSkip:          domain.NoData,
		decoder.StatusParityError:   domain.DecodeError,
		decoder.StatusChecksumError: domain.DecodeError,
		decoder.StatusDigestError:   domain.DecodeError,
		decoder.StatusFull:          domain.DecodeError,
		decoder.Status(99):          domain.DecodeError,
	}
	for status, want := range cases {
		assert.Equal(t, want, decoder.MapStatus(status), "status %d", status)
	}
}
