package tool

import (
	"context"
	"fmt"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// sensorCurrent reads one sensor live and persists the reading, so the
// history tools see it later.
func (ft FarmTools) sensorCurrent() Definition {
	return Definition{
		Name:        "get_current_sensor_data",
		DisplayName: "📡 查询传感器数据",
		Description: "获取指定区域某个传感器的实时数据",
		Parameters: map[string]any{
			"zone":        zoneParam,
			"sensor_type": sensorParam,
		},
		Required: []string{"zone", "sensor_type"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			zone, err := zoneArg(args)
			if err != nil {
				return nil, err
			}
			sensor, err := sensorArg(args)
			if err != nil {
				return nil, err
			}

			now := ft.Now()
			val := ft.Sim.Reading(zone, sensor, now)
			if err := ft.Store.InsertReadings(ctx, []farm.Reading{
				{Time: now, Zone: zone, Sensor: sensor, Value: val},
			}); err != nil {
				return nil, fmt.Errorf("记录读数失败: %w", err)
			}

			return map[string]any{
				"zone":   string(zone),
				"sensor": farm.Names[sensor],
				"value":  val,
				"unit":   farm.Units[sensor],
				"time":   now.Format("2006-01-02 15:04:05"),
			}, nil
		},
	}
}
