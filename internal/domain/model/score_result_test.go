package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/risk-service/internal/domain/model"
)

func TestScoreFromProbability(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.123456, 12.35},
		{0.12344, 12.34},
		{0.99964, 99.96},
		{0.4, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.ScoreFromProbability(tt.p), "p=%v", tt.p)
	}
}
