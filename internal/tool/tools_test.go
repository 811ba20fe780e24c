package tool

import (
	"context"
	"testing"
	"time"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
	"github.com/nongzhi-ai/nongzhi/internal/farm/store"
)

// fixedNow pins the clock to a Saturday morning in summer, expressed in the
// default tool timezone so time_info assertions are host-independent.
func fixedNow() time.Time {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return time.Date(2026, 8, 29, 10, 30, 0, 0, loc)
}

func newFarmFixture() (FarmTools, *store.Memory) {
	mem := store.NewMemory()
	return FarmTools{
		Sim:   farm.NewSimulator(42),
		Store: mem,
		Now:   fixedNow,
	}, mem
}

func dispatch(t *testing.T, r *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	res := r.Dispatch(context.Background(), name, args)
	if p, isErr := res.(ErrorPayload); isErr {
		t.Fatalf("%s returned error payload: %+v", name, p)
	}
	m, ok := res.(map[string]any)
	if !ok {
		t.Fatalf("%s result type = %T, want map", name, res)
	}
	return m
}

func TestFarmRegistryToolSet(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	want := []string{
		"get_current_sensor_data",
		"get_historical_sensor_data",
		"get_zone_overview",
		"water_zone",
		"write_log",
		"read_logs",
		"get_current_time",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("tool names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tool names = %v, want %v", got, want)
		}
	}
}

func TestSensorCurrentPersistsReading(t *testing.T) {
	ft, mem := newFarmFixture()
	r := NewFarmRegistry(ft)

	res := dispatch(t, r, "get_current_sensor_data", map[string]any{
		"zone": "东北", "sensor_type": "temperature",
	})
	if res["zone"] != "东北" || res["sensor"] != "温度" || res["unit"] != "°C" {
		t.Errorf("result = %v", res)
	}
	if _, ok := res["value"].(float64); !ok {
		t.Errorf("value = %v, want float64", res["value"])
	}

	stored, err := mem.ReadingsSince(context.Background(),
		farm.ZoneNortheast, farm.SensorTemperature, fixedNow().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReadingsSince: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored readings = %d, want 1", len(stored))
	}
}

func TestSensorCurrentRejectsUnknownZone(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	res := r.Dispatch(context.Background(), "get_current_sensor_data", map[string]any{
		"zone": "中部", "sensor_type": "temperature",
	})
	p, ok := res.(ErrorPayload)
	if !ok {
		t.Fatalf("result type = %T, want ErrorPayload", res)
	}
	if p.Kind != FailureHandler {
		t.Errorf("kind = %q, want handler_error", p.Kind)
	}
}

func TestSensorHistoryFromStore(t *testing.T) {
	ft, mem := newFarmFixture()
	r := NewFarmRegistry(ft)

	// Seed six stored readings inside the window so the database wins.
	var batch []farm.Reading
	for i := 0; i < 6; i++ {
		batch = append(batch, farm.Reading{
			Time:   fixedNow().Add(-time.Duration(6-i) * 30 * time.Minute),
			Zone:   farm.ZoneSoutheast,
			Sensor: farm.SensorHumidity,
			Value:  60 + float64(i),
		})
	}
	if err := mem.InsertReadings(context.Background(), batch); err != nil {
		t.Fatalf("InsertReadings: %v", err)
	}

	res := dispatch(t, r, "get_historical_sensor_data", map[string]any{
		"zone": "东南", "sensor_type": "humidity", "hours": float64(6),
	})
	if res["data_source"] != "数据库" {
		t.Errorf("data_source = %v, want 数据库", res["data_source"])
	}
	if res["count"] != 6 {
		t.Errorf("count = %v, want 6", res["count"])
	}
	if res["min"] != 60.0 || res["max"] != 65.0 {
		t.Errorf("min/max = %v/%v, want 60/65", res["min"], res["max"])
	}
	if res["avg"] != 62.5 {
		t.Errorf("avg = %v, want 62.5", res["avg"])
	}
}

func TestSensorHistorySimulatedBackfill(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	// Empty store: a 6 hour window at 30 minute steps yields 12 points.
	res := dispatch(t, r, "get_historical_sensor_data", map[string]any{
		"zone": "西北", "sensor_type": "co2", "hours": float64(6),
	})
	if res["data_source"] != "模拟" {
		t.Errorf("data_source = %v, want 模拟", res["data_source"])
	}
	if res["count"] != 12 {
		t.Errorf("count = %v, want 12", res["count"])
	}

	// Beyond a day the step widens to an hour.
	res = dispatch(t, r, "get_historical_sensor_data", map[string]any{
		"zone": "西北", "sensor_type": "co2", "hours": float64(48),
	})
	if res["count"] != 48 {
		t.Errorf("count = %v, want 48", res["count"])
	}
}

func TestZoneOverview(t *testing.T) {
	ft, mem := newFarmFixture()
	r := NewFarmRegistry(ft)

	res := dispatch(t, r, "get_zone_overview", map[string]any{"zone": "西南"})
	readings, ok := res["readings"].(map[string]any)
	if !ok {
		t.Fatalf("readings type = %T", res["readings"])
	}
	for _, name := range []string{"温度", "湿度", "CO₂浓度", "光照强度"} {
		if _, ok := readings[name]; !ok {
			t.Errorf("readings missing %s", name)
		}
	}

	for _, s := range farm.Sensors {
		stored, err := mem.ReadingsSince(context.Background(),
			farm.ZoneSouthwest, s, fixedNow().Add(-time.Minute))
		if err != nil {
			t.Fatalf("ReadingsSince: %v", err)
		}
		if len(stored) != 1 {
			t.Errorf("sensor %s stored %d readings, want 1", s, len(stored))
		}
	}
}

func TestWaterZoneWritesLog(t *testing.T) {
	ft, mem := newFarmFixture()
	r := NewFarmRegistry(ft)

	res := dispatch(t, r, "water_zone", map[string]any{
		"zone": "东北", "amount_liters": float64(10),
	})
	if res["status"] != "success" {
		t.Errorf("status = %v", res["status"])
	}
	if res["message"] != "已向东北区域浇水 10 升" {
		t.Errorf("message = %v", res["message"])
	}

	logs, err := mem.RecentLogs(context.Background(), 10, "浇水")
	if err != nil {
		t.Fatalf("RecentLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("log entries = %d, want 1", len(logs))
	}
	if logs[0].Detail != "东北区域 浇水 10L" {
		t.Errorf("detail = %q", logs[0].Detail)
	}
	if logs[0].Operator != farm.DefaultOperator {
		t.Errorf("operator = %q, want AI", logs[0].Operator)
	}
}

func TestWaterZoneRejectsNonPositiveAmount(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	res := r.Dispatch(context.Background(), "water_zone", map[string]any{
		"zone": "东北", "amount_liters": float64(0),
	})
	if _, ok := res.(ErrorPayload); !ok {
		t.Errorf("result = %v, want error payload", res)
	}
}

func TestLogWriteAndRead(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	dispatch(t, r, "write_log", map[string]any{
		"operation_type": "施肥", "details": "西南区域 追肥一次",
	})
	dispatch(t, r, "write_log", map[string]any{
		"operation_type": "巡检", "details": "全场巡视正常",
	})

	res := dispatch(t, r, "read_logs", map[string]any{})
	if res["count"] != 2 {
		t.Errorf("count = %v, want 2", res["count"])
	}

	res = dispatch(t, r, "read_logs", map[string]any{"operation_type": "施肥"})
	if res["count"] != 1 {
		t.Fatalf("filtered count = %v, want 1", res["count"])
	}
	logs := res["logs"].([]map[string]any)
	if logs[0]["detail"] != "西南区域 追肥一次" {
		t.Errorf("detail = %v", logs[0]["detail"])
	}
}

func TestTimeInfo(t *testing.T) {
	ft, _ := newFarmFixture()
	r := NewFarmRegistry(ft)

	// 2026-08-29 10:30 local is a Saturday morning in summer.
	res := dispatch(t, r, "get_current_time", map[string]any{})
	if res["period"] != "上午" {
		t.Errorf("period = %v, want 上午", res["period"])
	}
	if res["season"] != "夏季" {
		t.Errorf("season = %v, want 夏季", res["season"])
	}
	if res["weekday"] != "星期六" {
		t.Errorf("weekday = %v, want 星期六", res["weekday"])
	}
	if res["timezone"] != "Asia/Shanghai" {
		t.Errorf("timezone = %v, want default Asia/Shanghai", res["timezone"])
	}
}
