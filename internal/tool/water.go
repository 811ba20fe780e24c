package tool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// waterZone irrigates one zone and records the action in the operation log.
func (ft FarmTools) waterZone() Definition {
	return Definition{
		Name:        "water_zone",
		DisplayName: "💧 执行浇水操作",
		Description: "对指定区域进行浇水，需指定水量（升）",
		Parameters: map[string]any{
			"zone":          zoneParam,
			"amount_liters": map[string]any{"type": "number", "description": "浇水量（升）"},
		},
		Required: []string{"zone", "amount_liters"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			zone, err := zoneArg(args)
			if err != nil {
				return nil, err
			}
			amount, err := numberArg(args, "amount_liters")
			if err != nil {
				return nil, err
			}
			if amount <= 0 {
				return nil, fmt.Errorf("浇水量必须为正数")
			}

			now := ft.Now()
			liters := strconv.FormatFloat(amount, 'f', -1, 64)
			if err := ft.Store.AppendLog(ctx, farm.LogEntry{
				Time:   now,
				Op:     "浇水",
				Detail: fmt.Sprintf("%s区域 浇水 %sL", zone, liters),
			}); err != nil {
				return nil, fmt.Errorf("写入日志失败: %w", err)
			}

			return map[string]any{
				"status":  "success",
				"message": fmt.Sprintf("已向%s区域浇水 %s 升", zone, liters),
				"time":    now.Format("2006-01-02 15:04:05"),
			}, nil
		},
	}
}
