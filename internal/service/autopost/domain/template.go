// autopost-service/internal/domain/template.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// TemplateData 是渲染发帖内容时可用的促销字段。
type TemplateData struct {
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	DiscountLabel string // 例如 "₱50 OFF" 或 "20% OFF"
}

// DefaultTemplates 是各类任务在页面未配置模板时的缺省文案。
var DefaultTemplates = map[JobKind]string{
	KindAnnouncement: "🌱 {title} — {discount}! {description} Valid {start_date} to {end_date}.",
	KindReminder:     "⏰ Reminder: {title} ({discount}) ends on {end_date}. Don't miss out!",
	KindEndingSoon:   "🔥 Last day tomorrow! {title} — {discount} ends {end_date}.",
}

// RenderTemplate 用促销字段填充模板占位符。纯函数，未知占位符原样保留。
func RenderTemplate(tpl string, data TemplateData) string {
	r := strings.NewReplacer(
		"{title}", data.Title,
		"{description}", data.Description,
		"{discount}", data.DiscountLabel,
		"{start_date}", data.StartDate.Format("Jan 2, 2006"),
		"{end_date}", data.EndDate.Format("Jan 2, 2006"),
	)
	return r.Replace(tpl)
}

// DiscountLabel 把折扣定义渲染成人类可读的标签。
func DiscountLabel(kind string, value float64) string {
	if kind == "PERCENTAGE" {
		return fmt.Sprintf("%.0f%% OFF", value)
	}
	return fmt.Sprintf("₱%.0f OFF", value)
}
