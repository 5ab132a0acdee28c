package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/jengzang/accel-dashboard-go/internal/analysis"
	"github.com/jengzang/accel-dashboard-go/internal/charts"
	"github.com/jengzang/accel-dashboard-go/internal/export"
	"github.com/jengzang/accel-dashboard-go/internal/models"
	"github.com/jengzang/accel-dashboard-go/internal/observability"
)

// ErrDatasetNotFound is returned when a requested dataset id is not in the upstream list
var ErrDatasetNotFound = errors.New("dataset not found")

// AccelerationSource supplies raw datasets for an authenticated user
type AccelerationSource interface {
	GetAccelerationData(ctx context.Context, token string) ([]models.RawDataset, error)
}

// ProcessResult is a normalized dataset with its derived figures
type ProcessResult struct {
	Dataset   models.DatasetSummary     `json:"dataset"`
	Samples   []models.NormalizedSample `json:"samples"`
	Metrics   models.ActivityMetrics    `json:"metrics"`
	Magnitude models.MagnitudeStats     `json:"magnitude"`
}

// DashboardView is everything the dashboard page renders
type DashboardView struct {
	Datasets       []models.RawDataset
	Selected       models.RawDataset
	Result         *ProcessResult
	XYZChart       charts.Figure
	MagnitudeChart charts.Figure
}

// DashboardService handles acceleration dashboard business logic
type DashboardService struct {
	source    AccelerationSource
	processor *analysis.AccelerationProcessor
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source AccelerationSource) *DashboardService {
	return &DashboardService{
		source:    source,
		processor: analysis.NewAccelerationProcessor(),
	}
}

// List returns dataset summaries, newest first
func (s *DashboardService) List(ctx context.Context, token string) ([]models.DatasetSummary, error) {
	datasets, err := s.fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.DatasetSummary, len(datasets))
	for i, d := range datasets {
		summaries[i] = d.Summary()
	}
	return summaries, nil
}

// Load builds the dashboard view. An empty id or an unknown id selects the newest dataset.
// A nil view with a nil error means the user has no datasets.
func (s *DashboardService) Load(ctx context.Context, token, selectedID string) (*DashboardView, error) {
	datasets, err := s.fetch(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return nil, nil
	}

	selected := SelectDataset(datasets, selectedID)
	result, err := s.Process(selected)
	if err != nil {
		return nil, err
	}

	return &DashboardView{
		Datasets:       datasets,
		Selected:       selected,
		Result:         result,
		XYZChart:       charts.XYZChart(result.Samples),
		MagnitudeChart: charts.MagnitudeChart(result.Samples),
	}, nil
}

// Dataset processes the dataset with the given id
func (s *DashboardService) Dataset(ctx context.Context, token, id string) (*ProcessResult, error) {
	datasets, err := s.fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	dataset, ok := FindDataset(datasets, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return s.Process(dataset)
}

// Export encodes the selected dataset's normalized series as Parquet.
// Selection follows the same fallback as Load.
func (s *DashboardService) Export(ctx context.Context, token, selectedID string) (string, []byte, error) {
	datasets, err := s.fetch(ctx, token)
	if err != nil {
		return "", nil, err
	}
	if len(datasets) == 0 {
		return "", nil, ErrDatasetNotFound
	}

	selected := SelectDataset(datasets, selectedID)
	result, err := s.Process(selected)
	if err != nil {
		return "", nil, err
	}

	data, err := export.Parquet(result.Samples)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export dataset %s: %w", selected.ID, err)
	}
	return export.Filename(selected.ID), data, nil
}

// Process normalizes a dataset and computes its metrics
func (s *DashboardService) Process(dataset models.RawDataset) (*ProcessResult, error) {
	samples, err := s.processor.Normalize(dataset)
	if err != nil {
		observability.RecordDataset(observability.OutcomeMalformed, 0)
		log.Printf("[Dashboard] dataset %s rejected: %v", dataset.ID, err)
		return nil, err
	}

	if len(samples) == 0 {
		observability.RecordDataset(observability.OutcomeEmpty, 0)
	} else {
		observability.RecordDataset(observability.OutcomeOK, len(samples))
	}

	return &ProcessResult{
		Dataset:   dataset.Summary(),
		Samples:   samples,
		Metrics:   s.processor.Metrics(samples),
		Magnitude: s.processor.MagnitudeSummary(samples),
	}, nil
}

func (s *DashboardService) fetch(ctx context.Context, token string) ([]models.RawDataset, error) {
	datasets, err := s.source.GetAccelerationData(ctx, token)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(datasets)
	return datasets, nil
}

// SortNewestFirst orders datasets by created_at descending. Ties keep their
// upstream order and unparseable dates sort last.
func SortNewestFirst(datasets []models.RawDataset) {
	sort.SliceStable(datasets, func(i, j int) bool {
		return datasets[i].CreatedTime().After(datasets[j].CreatedTime())
	})
}

// SelectDataset returns the dataset with the given id, or the first one.
// datasets must not be empty.
func SelectDataset(datasets []models.RawDataset, id string) models.RawDataset {
	if d, ok := FindDataset(datasets, id); ok {
		return d
	}
	return datasets[0]
}

// FindDataset looks up a dataset by id
func FindDataset(datasets []models.RawDataset, id string) (models.RawDataset, bool) {
	if id == "" {
		return models.RawDataset{}, false
	}
	for _, d := range datasets {
		if d.ID == id {
			return d, true
		}
	}
	return models.RawDataset{}, false
}
