package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/accel-dashboard-go/internal/models"
)

func sample(ts string, x, y, z float64) models.RawSample {
	return models.RawSample{Timestamp: ts, X: x, Y: y, Z: z}
}

func threeSampleDataset() models.RawDataset {
	return models.RawDataset{
		ID: "test-dataset-id",
		Samples: []models.RawSample{
			sample("2025-03-10T12:00:00.000Z", 0.1, 0.2, 0.9),
			sample("2025-03-10T12:00:00.020Z", 0.2, 0.3, 0.8),
			sample("2025-03-10T12:00:00.040Z", 0.15, 0.25, 0.85),
		},
	}
}

func TestNormalizeValidData(t *testing.T) {
	p := NewAccelerationProcessor()

	out, err := p.Normalize(threeSampleDataset())
	require.NoError(t, err)
	require.Len(t, out, 3)

	want := []float64{math.Sqrt(0.86), math.Sqrt(0.77), math.Sqrt(0.8075)}
	for i, s := range out {
		assert.Equal(t, i, s.SequenceIndex)
		assert.InDelta(t, want[i], s.Magnitude, 1e-12)
	}
	assert.InDelta(t, 0.9327, out[0].Magnitude, 1e-4)
	assert.InDelta(t, 0.8775, out[1].Magnitude, 1e-4)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 40*int(time.Millisecond), time.UTC), out[2].Timestamp)
}

func TestNormalizeSortsByTimestamp(t *testing.T) {
	p := NewAccelerationProcessor()
	dataset := models.RawDataset{Samples: []models.RawSample{
		sample("2025-03-10T12:00:02Z", 3, 0, 0),
		sample("2025-03-10T12:00:00Z", 1, 0, 0),
		sample("2025-03-10T12:00:03Z", 4, 0, 0),
		sample("2025-03-10T12:00:01Z", 2, 0, 0),
	}}

	out, err := p.Normalize(dataset)
	require.NoError(t, err)

	for i, s := range out {
		assert.Equal(t, i, s.SequenceIndex)
		assert.Equal(t, float64(i+1), s.X)
		if i > 0 {
			assert.False(t, s.Timestamp.Before(out[i-1].Timestamp))
		}
	}
	assert.Equal(t, "2025-03-10T12:00:02Z", dataset.Samples[0].Timestamp, "input must not be reordered")
}

func TestNormalizeKeepsOrderOfEqualTimestamps(t *testing.T) {
	p := NewAccelerationProcessor()
	dataset := models.RawDataset{Samples: []models.RawSample{
		sample("2025-03-10T12:00:01Z", 10, 0, 0),
		sample("2025-03-10T12:00:00Z", 0, 0, 1),
		sample("2025-03-10T12:00:01Z", 20, 0, 0),
		sample("2025-03-10T12:00:01Z", 30, 0, 0),
	}}

	out, err := p.Normalize(dataset)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, []float64{0, 10, 20, 30}, []float64{out[0].X, out[1].X, out[2].X, out[3].X})
}

func TestNormalizeMixedTimestampFormats(t *testing.T) {
	p := NewAccelerationProcessor()
	dataset := models.RawDataset{Samples: []models.RawSample{
		sample("2025-03-10T13:00:00+01:00", 2, 0, 0), // 12:00:00Z
		sample("2025-03-10 11:59:59", 1, 0, 0),
		sample("2025-03-10T12:00:01", 3, 0, 0),
	}}

	out, err := p.Normalize(dataset)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, []float64{out[0].X, out[1].X, out[2].X})
}

func TestNormalizeEmptyAndMissingSamples(t *testing.T) {
	p := NewAccelerationProcessor()

	var missing models.RawDataset
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	var empty models.RawDataset
	require.NoError(t, json.Unmarshal([]byte(`{"data": {"samples": []}}`), &empty))

	for name, dataset := range map[string]models.RawDataset{"missing": missing, "empty": empty} {
		out, err := p.Normalize(dataset)
		require.NoError(t, err, name)
		require.NotNil(t, out, name)
		assert.Empty(t, out, name)

		body, err := json.Marshal(out)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(body), name)
	}
}

func TestNormalizedSampleFieldShape(t *testing.T) {
	body, err := json.Marshal(models.NormalizedSample{})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &fields))
	for _, col := range models.NormalizedColumns {
		assert.Contains(t, fields, col)
	}
	assert.Len(t, fields, len(models.NormalizedColumns))
}

func TestNormalizeMalformedTimestamp(t *testing.T) {
	p := NewAccelerationProcessor()

	cases := map[string]models.RawDataset{
		"unparseable": {Samples: []models.RawSample{
			sample("2025-03-10T12:00:00Z", 0, 0, 1),
			sample("yesterday", 0, 0, 1),
		}},
		"missing": {Samples: []models.RawSample{
			sample("2025-03-10T12:00:00Z", 0, 0, 1),
			sample("", 0, 0, 1),
		}},
	}

	for name, dataset := range cases {
		out, err := p.Normalize(dataset)
		assert.Nil(t, out, name)

		var malformed *MalformedSampleError
		require.True(t, errors.As(err, &malformed), name)
		assert.Equal(t, 1, malformed.Index, name)
		assert.Equal(t, "timestamp", malformed.Field, name)
		assert.Contains(t, err.Error(), "index 1", name)
	}
}

func TestNormalizeNonFiniteComponent(t *testing.T) {
	p := NewAccelerationProcessor()
	dataset := models.RawDataset{Samples: []models.RawSample{
		sample("2025-03-10T12:00:00Z", 0, math.Inf(1), 1),
	}}

	_, err := p.Normalize(dataset)
	var malformed *MalformedSampleError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Index)
	assert.Equal(t, "y", malformed.Field)
}

func TestMetricsEmpty(t *testing.T) {
	p := NewAccelerationProcessor()

	assert.Equal(t, models.ActivityMetrics{}, p.Metrics(nil))
	assert.Equal(t, models.ActivityMetrics{}, p.Metrics([]models.NormalizedSample{}))
	assert.Equal(t, models.MagnitudeStats{}, p.MagnitudeSummary(nil))
}

func TestMetricsShortRecording(t *testing.T) {
	p := NewAccelerationProcessor()

	samples, err := p.Normalize(threeSampleDataset())
	require.NoError(t, err)
	m := p.Metrics(samples)

	assert.Equal(t, 0.93, m.PeakMagnitude)
	assert.Equal(t, 0.0, m.Duration)
	assert.Equal(t, 0, m.ActiveSamples)
	assert.Equal(t, 0.0, m.AvgIntensity)
}

func TestMetricsTwoSecondSpacing(t *testing.T) {
	p := NewAccelerationProcessor()
	xs := []float64{0.1, 0.2, 0.15, 0.3, 0.25}
	ys := []float64{0.2, 0.3, 0.25, 0.4, 0.35}
	zs := []float64{0.9, 0.8, 0.85, 0.7, 0.75}

	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var dataset models.RawDataset
	for i := range xs {
		ts := start.Add(time.Duration(i) * 2 * time.Second).Format(time.RFC3339Nano)
		dataset.Samples = append(dataset.Samples, sample(ts, xs[i], ys[i], zs[i]))
	}

	samples, err := p.Normalize(dataset)
	require.NoError(t, err)
	m := p.Metrics(samples)

	assert.Equal(t, 0.1, m.Duration)
	assert.Greater(t, m.PeakMagnitude, 0.0)
	assert.Equal(t, 0.93, m.PeakMagnitude)
	assert.GreaterOrEqual(t, m.AvgIntensity, 0.0)
	assert.LessOrEqual(t, m.AvgIntensity, 100.0)
	assert.Equal(t, 0, m.ActiveSamples)
}

func TestMetricsSingleSample(t *testing.T) {
	p := NewAccelerationProcessor()
	samples, err := p.Normalize(models.RawDataset{Samples: []models.RawSample{
		sample("2025-03-10T12:00:00Z", 0, 0, 1.1),
	}})
	require.NoError(t, err)

	m := p.Metrics(samples)
	assert.Equal(t, 0.0, m.Duration)
	assert.InDelta(t, 20.0, m.AvgIntensity, 1e-9)
	assert.Equal(t, 1.1, m.PeakMagnitude)
	assert.Equal(t, 0, m.ActiveSamples)
}

func TestMetricsIntensityIsClamped(t *testing.T) {
	p := NewAccelerationProcessor()
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	still := []models.NormalizedSample{
		{SequenceIndex: 0, Timestamp: ts, Magnitude: 0},
		{SequenceIndex: 1, Timestamp: ts.Add(time.Minute), Magnitude: 0},
	}
	violent := []models.NormalizedSample{
		{SequenceIndex: 0, Timestamp: ts, X: 100, Magnitude: 100},
		{SequenceIndex: 1, Timestamp: ts.Add(90 * time.Second), X: 100, Magnitude: 100},
	}

	m := p.Metrics(still)
	assert.Equal(t, 0.0, m.AvgIntensity)
	assert.Equal(t, 2, m.ActiveSamples, "a magnitude of 0 deviates from rest by 1g")
	assert.Equal(t, 1.0, m.Duration)

	m = p.Metrics(violent)
	assert.Equal(t, 100.0, m.AvgIntensity)
	assert.Equal(t, 2, m.ActiveSamples)
	assert.Equal(t, 100.0, m.PeakMagnitude)
	assert.Equal(t, 1.5, m.Duration)
}

func TestMetricsActiveSamplesBothDirections(t *testing.T) {
	p := NewAccelerationProcessor()
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := []models.NormalizedSample{
		{SequenceIndex: 0, Timestamp: ts, Magnitude: 0.7},
		{SequenceIndex: 1, Timestamp: ts, Magnitude: 1.0},
		{SequenceIndex: 2, Timestamp: ts, Magnitude: 1.1},
		{SequenceIndex: 3, Timestamp: ts, Magnitude: 1.5},
	}

	m := p.Metrics(samples)
	assert.Equal(t, 2, m.ActiveSamples)
	assert.InDelta(t, (1.075-1.0)/0.5*100, m.AvgIntensity, 1e-9)
}

func TestMetricsIsDeterministic(t *testing.T) {
	p := NewAccelerationProcessor()

	first, err := p.Normalize(threeSampleDataset())
	require.NoError(t, err)
	second, err := p.Normalize(threeSampleDataset())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, p.Metrics(first), p.Metrics(second))
	assert.Equal(t, p.Metrics(first), p.Metrics(first))
}

func TestMagnitudeSummary(t *testing.T) {
	p := NewAccelerationProcessor()
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := []models.NormalizedSample{
		{Timestamp: ts, Magnitude: 1},
		{Timestamp: ts, Magnitude: 2},
		{Timestamp: ts, Magnitude: 3},
	}

	s := p.MagnitudeSummary(samples)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 2.0, s.Median)
	assert.InDelta(t, 2.9, s.P95, 1e-9)
	assert.InDelta(t, 1.0, s.StdDev, 1e-9)
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t, 5.0, Magnitude(3, 4, 0))
	assert.Equal(t, 0.0, Magnitude(0, 0, 0))
	assert.InDelta(t, math.Sqrt(3), Magnitude(-1, -1, -1), 1e-12)
}

func TestMetricsRoundsHalvesToEven(t *testing.T) {
	p := NewAccelerationProcessor()
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		span         time.Duration
		peakZ        float64
		wantDuration float64
		wantPeak     float64
	}{
		{"15s", 15 * time.Second, 1.125, 0.2, 1.12},
		{"45s", 45 * time.Second, 1.375, 0.8, 1.38},
		{"75s", 75 * time.Second, 1.125, 1.2, 1.12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dataset := models.RawDataset{Samples: []models.RawSample{
				sample(start.Format(time.RFC3339Nano), 0, 0, 1),
				sample(start.Add(tc.span).Format(time.RFC3339Nano), 0, 0, tc.peakZ),
			}}

			samples, err := p.Normalize(dataset)
			require.NoError(t, err)
			m := p.Metrics(samples)

			assert.Equal(t, tc.wantDuration, m.Duration)
			assert.Equal(t, tc.wantPeak, m.PeakMagnitude)
		})
	}
}
