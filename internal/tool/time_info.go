package tool

import (
	"context"
	"time"
)

// Time-of-day periods with their farming hints.
var periods = []struct {
	from, to int
	name     string
	hint     string
}{
	{5, 7, "清晨", "适合巡田、查看露水情况"},
	{7, 9, "早晨", "适合施肥、喷药（风小、蒸发少）"},
	{9, 11, "上午", "光照渐强，注意观察作物状态"},
	{11, 13, "中午", "高温时段，避免浇水和喷药"},
	{13, 15, "下午早段", "温度最高，注意遮阳和通风"},
	{15, 17, "下午", "温度回落，可恢复田间作业"},
	{17, 19, "傍晚", "适合浇水（蒸发少、夜间吸收好）"},
	{19, 21, "晚间", "检查灌溉设备和夜间防护"},
}

var seasons = map[time.Month]struct {
	name string
	hint string
}{
	time.March: {"春季", "春耕播种期，注意倒春寒"}, time.April: {"春季", "春耕播种期，注意倒春寒"}, time.May: {"春季", "春耕播种期，注意倒春寒"},
	time.June: {"夏季", "生长旺季，注意防暑、防涝、病虫害"}, time.July: {"夏季", "生长旺季，注意防暑、防涝、病虫害"}, time.August: {"夏季", "生长旺季，注意防暑、防涝、病虫害"},
	time.September: {"秋季", "收获季节，注意适时采收"}, time.October: {"秋季", "收获季节，注意适时采收"}, time.November: {"秋季", "收获季节，注意适时采收"},
	time.December: {"冬季", "休耕/大棚管理期，注意防冻保温"}, time.January: {"冬季", "休耕/大棚管理期，注意防冻保温"}, time.February: {"冬季", "休耕/大棚管理期，注意防冻保温"},
}

var weekdays = map[time.Weekday]string{
	time.Monday: "星期一", time.Tuesday: "星期二", time.Wednesday: "星期三",
	time.Thursday: "星期四", time.Friday: "星期五", time.Saturday: "星期六",
	time.Sunday: "星期日",
}

// timeInfo reports the current date, time of day, season, and matching
// farming advice.
func (ft FarmTools) timeInfo() Definition {
	return Definition{
		Name:        "get_current_time",
		DisplayName: "🕐 获取当前时间",
		Description: "获取当前日期、时间、星期、季节，以及对应的农事建议提示。" +
			"当用户询问现在几点、今天几号、什么季节等时间相关问题时使用。",
		Parameters: map[string]any{
			"timezone": map[string]any{
				"type":        "string",
				"description": "时区名称，默认 Asia/Shanghai",
				"default":     "Asia/Shanghai",
			},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			tz := optionalString(args, "timezone")
			if tz == "" {
				tz = "Asia/Shanghai"
			}
			now := ft.Now()
			if loc, err := time.LoadLocation(tz); err == nil {
				now = now.In(loc)
			}

			period, farmHint := "夜间", "作物休息期，注意低温防护"
			for _, p := range periods {
				if h := now.Hour(); p.from <= h && h < p.to {
					period, farmHint = p.name, p.hint
					break
				}
			}
			season := seasons[now.Month()]

			return map[string]any{
				"date":          now.Format("2006年01月02日"),
				"time":          now.Format("15:04:05"),
				"weekday":       weekdays[now.Weekday()],
				"period":        period,
				"season":        season.name,
				"datetime_full": now.Format("2006-01-02 15:04:05"),
				"timestamp":     now.Unix(),
				"farm_hint":     farmHint,
				"season_hint":   season.hint,
				"timezone":      tz,
			}, nil
		},
	}
}
