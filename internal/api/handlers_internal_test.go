package api

import (
	"math"
	"testing"
	"time"

	"github.com/neox5/o11ybox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowDelay_Bounds(t *testing.T) {
	cfg, err := config.Resolve(&config.RawConfig{})
	require.NoError(t, err)

	tests := []struct {
		name string
		draw float64
	}{
		{"lowest draw", 0},
		{"midpoint", 0.5},
		{"highest draw", math.Nextafter(1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &API{
				endpoints: cfg.Endpoints,
				randFloat: func() float64 { return tt.draw },
			}

			d := a.slowDelay()
			assert.GreaterOrEqual(t, d, 500*time.Millisecond)
			assert.Less(t, d, 2*time.Second)
		})
	}
}

func TestSlowDelay_LowestDrawIsMin(t *testing.T) {
	cfg, err := config.Resolve(&config.RawConfig{})
	require.NoError(t, err)

	a := &API{
		endpoints: cfg.Endpoints,
		randFloat: func() float64 { return 0 },
	}
	assert.Equal(t, config.DefaultSlowMin, a.slowDelay())
}
