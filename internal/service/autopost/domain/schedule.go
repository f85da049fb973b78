// autopost-service/internal/domain/schedule.go
package domain

import (
	"fmt"
	"time"
)

// Frequency 是周期发帖的频率。
type Frequency string

const (
	FreqHourly  Frequency = "HOURLY"
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
)

// PageSettings 是每个社交页面的自动发帖配置（settings-per-page 表）。
type PageSettings struct {
	PageID          string
	Enabled         bool
	Frequency       Frequency
	PostTime        string // "HH:MM"，页面所在时区的本地时间
	Timezone        string // IANA 时区名，如 "Asia/Manila"
	ExcludeWeekends bool
	ContentTemplate string
	UpdatedAt       time.Time
}

// NextFireTime 计算下一次周期发帖的触发时间。
//
// 计算顺序是刻意固定的：先定位今天的发帖时刻，已过则顺延到明天，
// 再逐天跳过周末，最后才叠加频率偏移。先跳周末再加偏移，决定了
// 每周任务落在星期几——调换顺序会改变结果，所以不要动这个顺序。
func NextFireTime(settings PageSettings, now time.Time) (time.Time, error) {
	loc := time.UTC
	if settings.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(settings.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimezone, settings.Timezone)
		}
	}
	localNow := now.In(loc)

	// HOURLY 不基于当天的时间槽，直接从 now 起算
	if settings.Frequency == FreqHourly {
		return localNow.Add(time.Hour), nil
	}

	var hour, minute int
	if _, err := fmt.Sscanf(settings.PostTime, "%d:%d", &hour, &minute); err != nil ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPostTime, settings.PostTime)
	}

	candidate := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hour, minute, 0, 0, loc)
	if !candidate.After(localNow) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	if settings.ExcludeWeekends {
		for candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}

	switch settings.Frequency {
	case FreqDaily:
		// 不再叠加偏移
	case FreqWeekly:
		candidate = candidate.AddDate(0, 0, 7)
	case FreqMonthly:
		candidate = candidate.AddDate(0, 1, 0)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, settings.Frequency)
	}
	return candidate, nil
}
