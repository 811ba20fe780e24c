package farm

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Simulator generates plausible sensor readings from the time of day and the
// zone's fixed orientation offset, plus gaussian noise. Temperature and light
// peak in the afternoon, humidity runs inverse to temperature, and CO₂ rises
// slightly overnight.
//
// A Simulator is safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a Simulator seeded from seed, so tests can fix the
// noise sequence.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// gauss draws one sample from a normal distribution with the given stddev.
func (s *Simulator) gauss(stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.NormFloat64() * stddev
}

// Reading produces the simulated value for zone and sensor at time t.
// Humidity is clamped to [0, 100]; light is zero outside 06:00-18:00 and
// never negative.
func (s *Simulator) Reading(zone Zone, sensor Sensor, t time.Time) float64 {
	h := float64(t.Hour()) + float64(t.Minute())/60
	z := zoneOffset[zone]

	switch sensor {
	case SensorTemperature:
		// Sinusoid peaking at 14:00, bottoming out at 02:00.
		base := 25 + 8*math.Sin((h-8)*math.Pi/12)
		return round1(base + z*0.5 + s.gauss(0.8))

	case SensorHumidity:
		base := 65 - 15*math.Sin((h-8)*math.Pi/12)
		return round1(clamp(base-z*1.5+s.gauss(1.5), 0, 100))

	case SensorCO2:
		base := 400 + 50*math.Cos((h-2)*math.Pi/12)
		return round1(base + z*5 + s.gauss(8))

	case SensorLight:
		var raw float64
		if h >= 6 && h <= 18 {
			raw = math.Max(0, 50000*math.Sin((h-6)*math.Pi/12))
		}
		return math.Round(math.Max(0, raw+z*1000+s.gauss(1500)))
	}
	return 0
}

// Snapshot produces one reading per sensor kind for every zone at time t,
// in canonical zone and sensor order.
func (s *Simulator) Snapshot(t time.Time) []Reading {
	out := make([]Reading, 0, len(Zones)*len(Sensors))
	for _, z := range Zones {
		for _, sn := range Sensors {
			out = append(out, Reading{Time: t, Zone: z, Sensor: sn, Value: s.Reading(z, sn, t)})
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
