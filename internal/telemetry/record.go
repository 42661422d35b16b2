package telemetry

import (
	"bytes"
	"encoding/json"
	"strconv"

	"codeberg.org/mutker/meteostationd/internal/sensor"
)

// Record is one cycle's telemetry. Built fresh each cycle, serialized,
// discarded.
type Record struct {
	Timestamp   string // empty means clock unsynchronized
	UserID      string
	DeviceID    string
	Climate     sensor.ClimateReading
	NTCCelsius  float64
	Illuminance float64
}

// Topic returns the publish topic for this record's identity.
func (r *Record) Topic() string {
	return "sensors/" + r.UserID + "/" + r.DeviceID
}

// MarshalJSON writes the fixed wire shape. Field order and numeric precision
// are part of the contract: one decimal for temperatures and humidity, none
// for luminosity. An invalid climate reading serializes as JSON nulls, and a
// missing timestamp as the bare null token.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"timestamp":`)
	if r.Timestamp == "" {
		buf.WriteString("null")
	} else {
		writeString(&buf, r.Timestamp)
	}

	buf.WriteString(`,"user":`)
	writeString(&buf, r.UserID)

	buf.WriteString(`,"device":`)
	writeString(&buf, r.DeviceID)

	buf.WriteString(`,"dht_temperature":`)
	if r.Climate.Valid() {
		temperatureC, humidityPct := r.Climate.Values()
		writeNumber(&buf, temperatureC, 1)
		buf.WriteString(`,"dht_humidity":`)
		writeNumber(&buf, humidityPct, 1)
	} else {
		buf.WriteString(`null,"dht_humidity":null`)
	}

	buf.WriteString(`,"ntc_temperature":`)
	writeNumber(&buf, r.NTCCelsius, 1)

	buf.WriteString(`,"luminosity":`)
	writeNumber(&buf, r.Illuminance, 0)

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	quoted, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string cannot fail; keep the payload well-formed anyway.
		buf.WriteString(`""`)
		return
	}
	buf.Write(quoted)
}

func writeNumber(buf *bytes.Buffer, v float64, decimals int) {
	buf.WriteString(strconv.FormatFloat(v, 'f', decimals, 64))
}
