package tool

import (
	"fmt"
	"math"
	"time"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// FarmTools bundles the dependencies shared by the farm tool handlers.
type FarmTools struct {
	// Sim generates readings when live values are requested or history must
	// be backfilled.
	Sim *farm.Simulator

	// Store persists readings and operation logs.
	Store farm.Store

	// Now supplies the current time; tests pin it. Nil means time.Now.
	Now func() time.Time
}

// NewFarmRegistry builds the full tool set offered to the model. The list
// below is the single source of truth for which tools exist.
func NewFarmRegistry(ft FarmTools) *Registry {
	if ft.Now == nil {
		ft.Now = time.Now
	}
	r := NewRegistry()
	r.Register(ft.sensorCurrent())
	r.Register(ft.sensorHistory())
	r.Register(ft.zoneOverview())
	r.Register(ft.waterZone())
	r.Register(ft.writeLog())
	r.Register(ft.readLogs())
	r.Register(ft.timeInfo())
	return r
}

// Reusable schema fragments for zone and sensor parameters.
var (
	zoneParam = map[string]any{
		"type":        "string",
		"enum":        []string{"东北", "西北", "东南", "西南"},
		"description": "区域：东北/西北/东南/西南",
	}
	sensorParam = map[string]any{
		"type":        "string",
		"enum":        []string{"temperature", "humidity", "co2", "light"},
		"description": "传感器：temperature/humidity/co2/light",
	}
)

// --- argument helpers (JSON decodes numbers as float64) ---

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("缺少参数: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("参数 %s 应为字符串", key)
	}
	return s, nil
}

func numberArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("缺少参数: %s", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("参数 %s 应为数字", key)
	}
	return f, nil
}

func optionalString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func optionalInt(args map[string]any, key string, def int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return def
}

func zoneArg(args map[string]any) (farm.Zone, error) {
	s, err := stringArg(args, "zone")
	if err != nil {
		return "", err
	}
	z := farm.Zone(s)
	if !farm.ValidZone(z) {
		return "", fmt.Errorf("未知区域: %s", s)
	}
	return z, nil
}

func sensorArg(args map[string]any) (farm.Sensor, error) {
	s, err := stringArg(args, "sensor_type")
	if err != nil {
		return "", err
	}
	sn := farm.Sensor(s)
	if !farm.ValidSensor(sn) {
		return "", fmt.Errorf("未知传感器类型: %s", s)
	}
	return sn, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
