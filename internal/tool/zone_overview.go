package tool

import (
	"context"
	"fmt"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// zoneOverview samples every sensor of one zone at once and persists the
// batch.
func (ft FarmTools) zoneOverview() Definition {
	return Definition{
		Name:        "get_zone_overview",
		DisplayName: "📋 获取区域概览",
		Description: "一次性获取指定区域全部传感器（温度/湿度/CO₂/光照）的当前读数",
		Parameters:  map[string]any{"zone": zoneParam},
		Required:    []string{"zone"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			zone, err := zoneArg(args)
			if err != nil {
				return nil, err
			}

			now := ft.Now()
			batch := make([]farm.Reading, 0, len(farm.Sensors))
			readings := make(map[string]any, len(farm.Sensors))
			for _, s := range farm.Sensors {
				v := ft.Sim.Reading(zone, s, now)
				batch = append(batch, farm.Reading{Time: now, Zone: zone, Sensor: s, Value: v})
				readings[farm.Names[s]] = map[string]any{
					"value": v,
					"unit":  farm.Units[s],
				}
			}
			if err := ft.Store.InsertReadings(ctx, batch); err != nil {
				return nil, fmt.Errorf("记录读数失败: %w", err)
			}

			return map[string]any{
				"zone":     string(zone),
				"time":     now.Format("2006-01-02 15:04:05"),
				"readings": readings,
			}, nil
		},
	}
}
