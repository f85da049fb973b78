// orchestrator-service/internal/domain/report.go
package domain

import "time"

// StageReport 记录一个编排阶段的执行结果。
// Error 非空表示该阶段失败，但不影响其他阶段。
type StageReport struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// TickReport 是一次完整 tick 的结构化结果。
// Skipped 为 true 时表示本轮被重入保护或分布式锁挡下，未执行任何阶段。
type TickReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Skipped    bool          `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Stages     []StageReport `json:"stages"`
}

// AddStage 追加一个阶段结果。
func (r *TickReport) AddStage(name string, count int, err error) {
	stage := StageReport{Name: name, Count: count}
	if err != nil {
		stage.Error = err.Error()
	}
	r.Stages = append(r.Stages, stage)
}

// FailedStages 返回失败阶段的数量。
func (r *TickReport) FailedStages() int {
	n := 0
	for _, s := range r.Stages {
		if s.Error != "" {
			n++
		}
	}
	return n
}
