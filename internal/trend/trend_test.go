package trend_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/order-catalog/internal/trend"
)

func TestFit_TwoPoints(t *testing.T) {
	line, ok := trend.Fit([]trend.Point{{X: 0, Y: 10}, {X: 10, Y: 20}})
	require.True(t, ok)

	assert.InDelta(t, 1.0, line.Slope, 1e-12)
	assert.InDelta(t, 10.0, line.Intercept, 1e-12)
	assert.InDelta(t, 15.0, line.At(5), 1e-12)
}

func TestFit_TooFewPoints(t *testing.T) {
	_, ok := trend.Fit(nil)
	assert.False(t, ok)

	_, ok = trend.Fit([]trend.Point{{X: 1, Y: 1}})
	assert.False(t, ok)
}

func TestFit_IdenticalX(t *testing.T) {
	_, ok := trend.Fit([]trend.Point{{X: 5, Y: 1}, {X: 5, Y: 9}})
	assert.False(t, ok)

	ts := float64(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	_, ok = trend.Fit([]trend.Point{{X: ts, Y: 1}, {X: ts, Y: 2}, {X: ts, Y: 3}})
	assert.False(t, ok)
}

func TestFit_FlatPrices(t *testing.T) {
	line, ok := trend.Fit([]trend.Point{{X: 1, Y: 7}, {X: 2, Y: 7}, {X: 3, Y: 7}})
	require.True(t, ok)
	assert.InDelta(t, 0.0, line.Slope, 1e-12)
	assert.InDelta(t, 7.0, line.Intercept, 1e-12)
}

func TestFit_MillisecondTimestamps(t *testing.T) {
	jan := float64(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	jun := float64(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli())

	line, ok := trend.Fit([]trend.Point{{X: jan, Y: 20}, {X: jun, Y: 22}})
	require.True(t, ok)
	assert.Greater(t, line.Slope, 0.0)
	assert.InDelta(t, 20.0, line.At(jan), 1e-6)
	assert.InDelta(t, 22.0, line.At(jun), 1e-6)
}

func TestFit_RecoversKnownLine(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]trend.Point, 0, 50)
	for i := 0; i < 50; i++ {
		x := float64(i) + rng.Float64()
		points = append(points, trend.Point{X: x, Y: -0.5*x + 3})
	}

	line, ok := trend.Fit(points)
	require.True(t, ok)
	assert.InDelta(t, -0.5, line.Slope, 1e-9)
	assert.InDelta(t, 3.0, line.Intercept, 1e-9)
}

func TestFit_LeastSquares(t *testing.T) {
	// Points (0,1) (1,3) (2,2): slope 0.5, intercept 1.5.
	line, ok := trend.Fit([]trend.Point{{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 2}})
	require.True(t, ok)
	assert.InDelta(t, 0.5, line.Slope, 1e-12)
	assert.InDelta(t, 1.5, line.Intercept, 1e-12)
}

func TestLine_Endpoints(t *testing.T) {
	line := trend.Line{Slope: 2, Intercept: 1}
	start, end, ok := line.Endpoints([]trend.Point{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 4, Y: 0}})
	require.True(t, ok)
	assert.Equal(t, trend.Point{X: 1, Y: 3}, start)
	assert.Equal(t, trend.Point{X: 4, Y: 9}, end)

	_, _, ok = line.Endpoints(nil)
	assert.False(t, ok)
}
