package farm

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 6, 15, hour, minute, 0, 0, time.Local)
}

func TestSimulatorTemperatureRange(t *testing.T) {
	sim := NewSimulator(1)
	for _, zone := range Zones {
		for h := 0; h < 24; h++ {
			v := sim.Reading(zone, SensorTemperature, at(h, 0))
			if v < 10 || v > 40 {
				t.Errorf("temperature %s %02d:00 = %v, outside plausible range", zone, h, v)
			}
		}
	}
}

func TestSimulatorTemperaturePeaksAfternoon(t *testing.T) {
	sim := NewSimulator(1)
	// Average out the noise over repeated samples.
	avg := func(hour int) float64 {
		var sum float64
		for i := 0; i < 50; i++ {
			sum += sim.Reading(ZoneSoutheast, SensorTemperature, at(hour, 0))
		}
		return sum / 50
	}
	if afternoon, night := avg(14), avg(2); afternoon <= night {
		t.Errorf("temperature at 14:00 (%v) not above 02:00 (%v)", afternoon, night)
	}
}

func TestSimulatorHumidityClamped(t *testing.T) {
	sim := NewSimulator(2)
	for _, zone := range Zones {
		for h := 0; h < 24; h++ {
			for i := 0; i < 20; i++ {
				v := sim.Reading(zone, SensorHumidity, at(h, 30))
				if v < 0 || v > 100 {
					t.Fatalf("humidity %s %02d:30 = %v, outside [0,100]", zone, h, v)
				}
			}
		}
	}
}

func TestSimulatorLightDarkAtNight(t *testing.T) {
	sim := NewSimulator(3)
	for i := 0; i < 20; i++ {
		night := sim.Reading(ZoneSouthwest, SensorLight, at(23, 0))
		if night < 0 {
			t.Fatalf("light at night = %v, want >= 0", night)
		}
		if night > 10000 {
			t.Fatalf("light at night = %v, want near zero", night)
		}
	}
	noon := sim.Reading(ZoneSouthwest, SensorLight, at(12, 0))
	if noon < 30000 {
		t.Errorf("light at noon = %v, want strong daylight", noon)
	}
}

func TestSimulatorZoneOffsets(t *testing.T) {
	sim := NewSimulator(4)
	// Southwest carries +2, northeast -2; averaged over noise the southwest
	// plot must read warmer.
	avg := func(zone Zone) float64 {
		var sum float64
		for i := 0; i < 100; i++ {
			sum += sim.Reading(zone, SensorTemperature, at(12, 0))
		}
		return sum / 100
	}
	if sw, ne := avg(ZoneSouthwest), avg(ZoneNortheast); sw <= ne {
		t.Errorf("southwest avg %v not above northeast avg %v", sw, ne)
	}
}

func TestSimulatorSnapshot(t *testing.T) {
	sim := NewSimulator(5)
	batch := sim.Snapshot(at(9, 0))
	if len(batch) != len(Zones)*len(Sensors) {
		t.Fatalf("snapshot size = %d, want %d", len(batch), len(Zones)*len(Sensors))
	}
	seen := make(map[string]bool)
	for _, r := range batch {
		seen[string(r.Zone)+"/"+string(r.Sensor)] = true
	}
	if len(seen) != len(batch) {
		t.Errorf("snapshot contains duplicate zone/sensor pairs")
	}
}

func TestValidZoneAndSensor(t *testing.T) {
	if !ValidZone(ZoneNortheast) || ValidZone("中部") {
		t.Error("ValidZone misclassifies")
	}
	if !ValidSensor(SensorCO2) || ValidSensor("ph") {
		t.Error("ValidSensor misclassifies")
	}
}
