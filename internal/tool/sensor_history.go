package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// minStoredReadings is the threshold below which the history tool falls back
// to simulated backfill instead of the sparse stored data.
const minStoredReadings = 5

// sensorHistory returns the trend of one sensor over the past N hours with
// min/max/avg statistics. Stored readings are preferred; when the store holds
// too few points for the window, the series is synthesised at a step that
// widens with the window (30 min up to a day, 60 min up to a week, 180 min
// beyond).
func (ft FarmTools) sensorHistory() Definition {
	return Definition{
		Name:        "get_historical_sensor_data",
		DisplayName: "📈 查询历史趋势",
		Description: "获取指定区域某个传感器过去 N 小时的历史数据（含最小/最大/平均值）",
		Parameters: map[string]any{
			"zone":        zoneParam,
			"sensor_type": sensorParam,
			"hours":       map[string]any{"type": "number", "description": "过去多少小时"},
		},
		Required: []string{"zone", "sensor_type", "hours"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			zone, err := zoneArg(args)
			if err != nil {
				return nil, err
			}
			sensor, err := sensorArg(args)
			if err != nil {
				return nil, err
			}
			hours, err := numberArg(args, "hours")
			if err != nil {
				return nil, err
			}
			if hours <= 0 {
				return nil, fmt.Errorf("hours 必须为正数")
			}

			now := ft.Now()
			since := now.Add(-time.Duration(hours * float64(time.Hour)))

			stored, err := ft.Store.ReadingsSince(ctx, zone, sensor, since)
			if err != nil {
				return nil, fmt.Errorf("查询历史数据失败: %w", err)
			}

			type point struct {
				Time  string  `json:"time"`
				Value float64 `json:"value"`
			}
			var data []point
			source := "数据库"
			if len(stored) >= minStoredReadings {
				data = make([]point, len(stored))
				for i, r := range stored {
					data[i] = point{Time: r.Time.Format("01-02 15:04"), Value: r.Value}
				}
			} else {
				source = "模拟"
				step := 30
				switch {
				case hours > 168:
					step = 180
				case hours > 24:
					step = 60
				}
				n := int(hours * 60 / float64(step))
				data = make([]point, 0, n)
				for i := n; i > 0; i-- {
					ts := now.Add(-time.Duration(i*step) * time.Minute)
					data = append(data, point{
						Time:  ts.Format("01-02 15:04"),
						Value: ft.Sim.Reading(zone, sensor, ts),
					})
				}
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("时间窗口过短，没有数据点")
			}

			minV, maxV, sum := data[0].Value, data[0].Value, 0.0
			for _, d := range data {
				if d.Value < minV {
					minV = d.Value
				}
				if d.Value > maxV {
					maxV = d.Value
				}
				sum += d.Value
			}

			return map[string]any{
				"zone":        string(zone),
				"sensor":      farm.Names[sensor],
				"unit":        farm.Units[sensor],
				"period":      fmt.Sprintf("过去%v小时", hours),
				"count":       len(data),
				"min":         minV,
				"max":         maxV,
				"avg":         round1(sum / float64(len(data))),
				"data_source": source,
				"data":        data,
			}, nil
		},
	}
}
