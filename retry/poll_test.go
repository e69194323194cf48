package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextPollInterval(t *testing.T) {
	base := 5 * time.Second
	justOverEta := 61.0

	tests := []struct {
		name     string
		eta      float64
		expected time.Duration
	}{
		{name: "no estimate uses base", eta: 0, expected: base},
		{name: "short job uses base", eta: 30, expected: base},
		{name: "exactly at threshold uses base", eta: 60, expected: base},
		{name: "just over threshold stretches", eta: 61, expected: time.Duration(justOverEta / 3 * float64(time.Second))},
		{name: "long job stretches to a third", eta: 90, expected: 30 * time.Second},
		{name: "very long job capped at 30s", eta: 120, expected: 30 * time.Second},
		{name: "hour-long job capped at 30s", eta: 3600, expected: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextPollInterval(base, tt.eta))
		})
	}
}
