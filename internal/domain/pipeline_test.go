package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Fraction(t *testing.T) {
	tests := []struct {
		name string
		p    Progress
		want float64
	}{
		{"not started", Progress{Completed: 0, Total: PipelineStageCount}, 0},
		{"one stage", Progress{Completed: 1, Total: PipelineStageCount}, 1.0 / 3},
		{"done", Progress{Completed: 3, Total: PipelineStageCount}, 1},
		{"zero total", Progress{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.p.Fraction(), 1e-9)
		})
	}
}
