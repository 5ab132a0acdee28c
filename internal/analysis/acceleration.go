// Package analysis turns recorded accelerometer datasets into an ordered series
// with a derived magnitude channel and summary activity metrics.
//
// Everything here is a pure function of its input: no I/O, no shared state, safe
// for concurrent use by request handlers.
package analysis

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r3"
	"github.com/jengzang/accel-dashboard-go/internal/models"
	"github.com/jengzang/accel-dashboard-go/internal/stats"
)

const (
	// GravityOffset is the nominal magnitude of a sensor at rest (g)
	GravityOffset = 1.0
	// IntensitySpan is the deviation above rest that maps to 100% intensity (g)
	IntensitySpan = 0.5
	// ActiveThreshold is the deviation from rest beyond which a sample counts as active (g)
	ActiveThreshold = 0.2
)

// AccelerationProcessor normalizes datasets and computes activity metrics
type AccelerationProcessor struct{}

// NewAccelerationProcessor creates a new processor
func NewAccelerationProcessor() *AccelerationProcessor {
	return &AccelerationProcessor{}
}

type parsedSample struct {
	raw models.RawSample
	ts  time.Time
}

// Normalize sorts the dataset's samples by timestamp and derives their magnitude.
// Samples with equal timestamps keep their input order. A dataset with no samples
// yields an empty, non-nil series.
func (p *AccelerationProcessor) Normalize(dataset models.RawDataset) ([]models.NormalizedSample, error) {
	if len(dataset.Samples) == 0 {
		return []models.NormalizedSample{}, nil
	}

	parsed := make([]parsedSample, len(dataset.Samples))
	for i, s := range dataset.Samples {
		if s.Timestamp == "" {
			return nil, &MalformedSampleError{Index: i, Field: "timestamp", Err: errors.New("missing timestamp")}
		}
		ts, err := models.ParseTime(s.Timestamp)
		if err != nil {
			return nil, &MalformedSampleError{Index: i, Field: "timestamp", Value: s.Timestamp, Err: err}
		}
		if err := checkFinite(i, s); err != nil {
			return nil, err
		}
		parsed[i] = parsedSample{raw: s, ts: ts}
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].ts.Before(parsed[j].ts)
	})

	out := make([]models.NormalizedSample, len(parsed))
	for i, ps := range parsed {
		out[i] = models.NormalizedSample{
			SequenceIndex: i,
			Timestamp:     ps.ts,
			X:             ps.raw.X,
			Y:             ps.raw.Y,
			Z:             ps.raw.Z,
			Magnitude:     Magnitude(ps.raw.X, ps.raw.Y, ps.raw.Z),
		}
	}
	return out, nil
}

// Magnitude returns the Euclidean norm of an acceleration vector
func Magnitude(x, y, z float64) float64 {
	return r3.Vector{X: x, Y: y, Z: z}.Norm()
}

func checkFinite(index int, s models.RawSample) error {
	for _, c := range []struct {
		name  string
		value float64
	}{{"x", s.X}, {"y", s.Y}, {"z", s.Z}} {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &MalformedSampleError{
				Index: index,
				Field: c.name,
				Value: strconv.FormatFloat(c.value, 'g', -1, 64),
				Err:   errors.New("not a finite number"),
			}
		}
	}
	return nil
}

// Metrics computes activity metrics over a normalized series.
// The empty series yields all-zero metrics.
func (p *AccelerationProcessor) Metrics(samples []models.NormalizedSample) models.ActivityMetrics {
	if len(samples) == 0 {
		return models.ActivityMetrics{}
	}

	magnitudes := magnitudesOf(samples)
	avgMagnitude := stats.Mean(magnitudes)

	first, last := samples[0].Timestamp, samples[0].Timestamp
	active := 0
	for _, s := range samples {
		if s.Timestamp.Before(first) {
			first = s.Timestamp
		}
		if s.Timestamp.After(last) {
			last = s.Timestamp
		}
		if math.Abs(s.Magnitude-GravityOffset) > ActiveThreshold {
			active++
		}
	}

	return models.ActivityMetrics{
		AvgIntensity:  stats.Clamp((avgMagnitude-GravityOffset)/IntensitySpan, 0, 1) * 100,
		Duration:      stats.Round(last.Sub(first).Minutes(), 1),
		ActiveSamples: active,
		PeakMagnitude: stats.Round(stats.Max(magnitudes), 2),
	}
}

// MagnitudeSummary describes the distribution of magnitudes in a normalized series
func (p *AccelerationProcessor) MagnitudeSummary(samples []models.NormalizedSample) models.MagnitudeStats {
	if len(samples) == 0 {
		return models.MagnitudeStats{}
	}

	magnitudes := magnitudesOf(samples)
	return models.MagnitudeStats{
		Min:    stats.Min(magnitudes),
		Max:    stats.Max(magnitudes),
		Mean:   stats.Mean(magnitudes),
		Median: stats.Median(magnitudes),
		P95:    stats.Percentile(magnitudes, 95),
		StdDev: stats.StdDev(magnitudes),
	}
}

func magnitudesOf(samples []models.NormalizedSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Magnitude
	}
	return out
}
