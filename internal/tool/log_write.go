package tool

import (
	"context"
	"fmt"

	"github.com/nongzhi-ai/nongzhi/internal/farm"
)

// writeLog appends one operation record to the system log.
func (ft FarmTools) writeLog() Definition {
	return Definition{
		Name:        "write_log",
		DisplayName: "📝 写入操作日志",
		Description: "向系统日志写入一条操作记录",
		Parameters: map[string]any{
			"operation_type": map[string]any{"type": "string", "description": "操作类型，如：施肥、巡检、告警"},
			"details":        map[string]any{"type": "string", "description": "操作详情"},
		},
		Required: []string{"operation_type", "details"},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			op, err := stringArg(args, "operation_type")
			if err != nil {
				return nil, err
			}
			details, err := stringArg(args, "details")
			if err != nil {
				return nil, err
			}

			if err := ft.Store.AppendLog(ctx, farm.LogEntry{
				Time:   ft.Now(),
				Op:     op,
				Detail: details,
			}); err != nil {
				return nil, fmt.Errorf("写入日志失败: %w", err)
			}
			return map[string]any{"status": "success", "message": "日志已写入"}, nil
		},
	}
}
