package models

import (
	"encoding/json"
	"strings"
	"time"
)

// NormalizedColumns is the stable field set of a normalized series, in display order.
// It holds for empty series too, so renderers can address columns uniformly.
var NormalizedColumns = []string{"index", "timestamp", "x", "y", "z", "magnitude"}

// RawSample represents one accelerometer reading as returned by the health API
type RawSample struct {
	Timestamp string  `json:"timestamp"` // ISO-8601
	X         float64 `json:"x"`         // g
	Y         float64 `json:"y"`         // g
	Z         float64 `json:"z"`         // g
}

// DeviceInfo describes the recording device. It is passed through unexamined.
type DeviceInfo struct {
	DeviceType string `json:"device_type,omitempty"`
	Model      string `json:"model,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	DeviceID   string `json:"device_id,omitempty"`
}

// RawDataset represents a recorded acceleration dataset
type RawDataset struct {
	ID             string                 `json:"id"`
	DataType       string                 `json:"data_type"`
	DeviceInfo     DeviceInfo             `json:"device_info"`
	SamplingRateHz int                    `json:"sampling_rate_hz"` // informational only
	StartTime      string                 `json:"start_time"`
	CreatedAt      string                 `json:"created_at"`
	Samples        []RawSample            `json:"-"` // order not guaranteed by the source
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// samplePayload is the nested "data" object the health API wraps samples in
type samplePayload struct {
	Samples []RawSample `json:"samples"`
}

type rawDatasetWire struct {
	ID             string                 `json:"id"`
	DataType       string                 `json:"data_type"`
	DeviceInfo     DeviceInfo             `json:"device_info"`
	SamplingRateHz int                    `json:"sampling_rate_hz"`
	StartTime      string                 `json:"start_time"`
	CreatedAt      string                 `json:"created_at"`
	Data           *samplePayload         `json:"data,omitempty"`
	Samples        []RawSample            `json:"samples,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts samples either nested under "data" (the health API shape)
// or as a top-level "samples" array. A dataset without either has no samples.
func (d *RawDataset) UnmarshalJSON(b []byte) error {
	var w rawDatasetWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*d = RawDataset{
		ID:             w.ID,
		DataType:       w.DataType,
		DeviceInfo:     w.DeviceInfo,
		SamplingRateHz: w.SamplingRateHz,
		StartTime:      w.StartTime,
		CreatedAt:      w.CreatedAt,
		Metadata:       w.Metadata,
	}
	if w.Data != nil && w.Data.Samples != nil {
		d.Samples = w.Data.Samples
	} else {
		d.Samples = w.Samples
	}
	return nil
}

// MarshalJSON writes samples back in the health API shape
func (d RawDataset) MarshalJSON() ([]byte, error) {
	samples := d.Samples
	if samples == nil {
		samples = []RawSample{}
	}
	return json.Marshal(rawDatasetWire{
		ID:             d.ID,
		DataType:       d.DataType,
		DeviceInfo:     d.DeviceInfo,
		SamplingRateHz: d.SamplingRateHz,
		StartTime:      d.StartTime,
		CreatedAt:      d.CreatedAt,
		Data:           &samplePayload{Samples: samples},
		Metadata:       d.Metadata,
	})
}

// CreatedTime returns created_at as a time, or the zero time if it cannot be parsed
func (d RawDataset) CreatedTime() time.Time {
	t, err := ParseTime(d.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NormalizedSample is a RawSample placed in time order with its derived magnitude
type NormalizedSample struct {
	SequenceIndex int       `json:"index"`
	Timestamp     time.Time `json:"timestamp"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	Z             float64   `json:"z"`
	Magnitude     float64   `json:"magnitude"` // sqrt(x²+y²+z²), g
}

// ActivityMetrics summarises a normalized series
type ActivityMetrics struct {
	AvgIntensity  float64 `json:"avg_intensity"`  // percent, 0-100
	Duration      float64 `json:"duration"`       // minutes, 1 decimal
	ActiveSamples int     `json:"active_samples"` // |magnitude - 1g| > 0.2g
	PeakMagnitude float64 `json:"peak_magnitude"` // g, 2 decimals
}

// MagnitudeStats describes the distribution of magnitudes in a series
type MagnitudeStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	StdDev float64 `json:"stddev"`
}

// DatasetSummary is the list view of a dataset, without its samples
type DatasetSummary struct {
	ID             string     `json:"id"`
	DataType       string     `json:"data_type"`
	DeviceInfo     DeviceInfo `json:"device_info"`
	SamplingRateHz int        `json:"sampling_rate_hz"`
	StartTime      string     `json:"start_time"`
	CreatedAt      string     `json:"created_at"`
	SampleCount    int        `json:"sample_count"`
}

// Summary returns the list view of the dataset
func (d RawDataset) Summary() DatasetSummary {
	return DatasetSummary{
		ID:             d.ID,
		DataType:       d.DataType,
		DeviceInfo:     d.DeviceInfo,
		SamplingRateHz: d.SamplingRateHz,
		StartTime:      d.StartTime,
		CreatedAt:      d.CreatedAt,
		SampleCount:    len(d.Samples),
	}
}

// Label is a short human readable name used by the dataset picker
func (d RawDataset) Label() string {
	parts := make([]string, 0, 3)
	if d.CreatedAt != "" {
		parts = append(parts, d.CreatedAt)
	}
	if d.DeviceInfo.Model != "" {
		parts = append(parts, d.DeviceInfo.Model)
	} else if d.DeviceInfo.DeviceType != "" {
		parts = append(parts, d.DeviceInfo.DeviceType)
	}
	if len(parts) == 0 {
		return d.ID
	}
	return strings.Join(parts, " · ")
}

// AccelerationDataResponse is the envelope of GET /health/acceleration_data
type AccelerationDataResponse struct {
	Status  string       `json:"status"`
	Data    []RawDataset `json:"data"`
	Message string       `json:"message,omitempty"`
}
