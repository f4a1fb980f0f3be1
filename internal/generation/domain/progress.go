package domain

import "time"

// Progress is a point-in-time snapshot of a batch. At every observable
// point Completed == Successful+Failed, InProgress >= 0 and
// Completed <= Total.
type Progress struct {
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	InProgress int       `json:"in_progress"`
	StartTime  time.Time `json:"start_time"`

	Percentage         float64       `json:"progress_percentage"`
	Elapsed            time.Duration `json:"elapsed_time"`
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
}

// Derive fills the computed fields relative to now.
func (p *Progress) Derive(now time.Time) {
	if p.Total > 0 {
		p.Percentage = float64(p.Completed) / float64(p.Total) * 100
	}
	p.Elapsed = now.Sub(p.StartTime)
	if p.Completed > 0 {
		avg := p.Elapsed / time.Duration(p.Completed)
		p.EstimatedRemaining = avg * time.Duration(p.Total-p.Completed)
	}
}
