package tool

import (
	"context"
	"fmt"
)

// readLogs lists the newest operation log entries, optionally filtered by
// operation type.
func (ft FarmTools) readLogs() Definition {
	return Definition{
		Name:        "read_logs",
		DisplayName: "📖 读取操作日志",
		Description: "查询系统操作日志，可按类型筛选",
		Parameters: map[string]any{
			"limit":          map[string]any{"type": "integer", "description": "返回条数，默认 10"},
			"operation_type": map[string]any{"type": "string", "description": "按操作类型筛选（可选）"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			limit := optionalInt(args, "limit", 10)
			op := optionalString(args, "operation_type")

			entries, err := ft.Store.RecentLogs(ctx, limit, op)
			if err != nil {
				return nil, fmt.Errorf("查询日志失败: %w", err)
			}

			logs := make([]map[string]any, len(entries))
			for i, e := range entries {
				logs[i] = map[string]any{
					"time":     e.Time.Format("2006-01-02 15:04:05"),
					"type":     e.Op,
					"detail":   e.Detail,
					"operator": e.Operator,
				}
			}
			return map[string]any{"count": len(logs), "logs": logs}, nil
		},
	}
}
