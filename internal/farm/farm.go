// Package farm models the simulated smart-agriculture estate: four zones,
// four sensor kinds per zone, a readings simulator with diurnal trends, and a
// background collector that persists readings on a fixed interval.
package farm

import (
	"context"
	"time"
)

// Zone identifies one of the four farm plots by its compass name.
type Zone string

const (
	ZoneNortheast Zone = "东北"
	ZoneNorthwest Zone = "西北"
	ZoneSoutheast Zone = "东南"
	ZoneSouthwest Zone = "西南"
)

// Zones lists all plots in canonical order.
var Zones = []Zone{ZoneNortheast, ZoneNorthwest, ZoneSoutheast, ZoneSouthwest}

// Sensor identifies a sensor kind.
type Sensor string

const (
	SensorTemperature Sensor = "temperature"
	SensorHumidity    Sensor = "humidity"
	SensorCO2         Sensor = "co2"
	SensorLight       Sensor = "light"
)

// Sensors lists all sensor kinds in canonical order.
var Sensors = []Sensor{SensorTemperature, SensorHumidity, SensorCO2, SensorLight}

// Units maps sensor kinds to their measurement units.
var Units = map[Sensor]string{
	SensorTemperature: "°C",
	SensorHumidity:    "%",
	SensorCO2:         "ppm",
	SensorLight:       "lux",
}

// Names maps sensor kinds to their Chinese display names.
var Names = map[Sensor]string{
	SensorTemperature: "温度",
	SensorHumidity:    "湿度",
	SensorCO2:         "CO₂浓度",
	SensorLight:       "光照强度",
}

// zoneOffset models orientation differences between plots: east-facing plots
// warm up more, the offset shifts every sensor curve by a fixed amount.
var zoneOffset = map[Zone]float64{
	ZoneNortheast: -2,
	ZoneNorthwest: -1,
	ZoneSoutheast: 1,
	ZoneSouthwest: 2,
}

// ValidZone reports whether z names a known plot.
func ValidZone(z Zone) bool {
	_, ok := zoneOffset[z]
	return ok
}

// ValidSensor reports whether s names a known sensor kind.
func ValidSensor(s Sensor) bool {
	_, ok := Units[s]
	return ok
}

// Reading is one sensor measurement.
type Reading struct {
	Time   time.Time
	Zone   Zone
	Sensor Sensor
	Value  float64
}

// LogEntry is one operation log record.
type LogEntry struct {
	Time     time.Time
	Op       string
	Detail   string
	Operator string
}

// DefaultOperator is recorded for log entries written by the assistant.
const DefaultOperator = "AI"

// Store persists sensor readings and operation logs. Implementations live in
// the store subpackage; all of them are safe for concurrent use.
type Store interface {
	// InsertReadings appends a batch of sensor readings.
	InsertReadings(ctx context.Context, readings []Reading) error

	// ReadingsSince returns readings for one zone and sensor at or after
	// since, ordered by time ascending.
	ReadingsSince(ctx context.Context, zone Zone, sensor Sensor, since time.Time) ([]Reading, error)

	// AppendLog records one operation log entry.
	AppendLog(ctx context.Context, entry LogEntry) error

	// RecentLogs returns up to limit log entries, newest first, optionally
	// filtered by operation type. An empty op matches everything.
	RecentLogs(ctx context.Context, limit int, op string) ([]LogEntry, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
