package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/jengzang/accel-dashboard-go/internal/models"
)

func TestParquetRoundTrip(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	samples := []models.NormalizedSample{
		{SequenceIndex: 0, Timestamp: base, X: 0.1, Y: 0.2, Z: 0.9, Magnitude: 0.93},
		{SequenceIndex: 1, Timestamp: base.Add(1500 * time.Millisecond), X: 0.2, Y: 0.1, Z: 0.85, Magnitude: 0.88},
	}

	b, err := Parquet(samples)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.Equal(t, "PAR1", string(b[:4]))

	pr, err := reader.NewParquetReader(buffer.NewBufferFileFromBytes(b), new(sampleRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())
	rows := make([]sampleRow, 2)
	require.NoError(t, pr.Read(&rows))

	assert.Equal(t, int64(0), rows[0].SequenceIndex)
	assert.Equal(t, "2024-01-15T10:30:00Z", rows[0].Timestamp)
	assert.Equal(t, "2024-01-15T10:30:01.5Z", rows[1].Timestamp)
	assert.Equal(t, 0.85, rows[1].Z)
	assert.Equal(t, 0.88, rows[1].Magnitude)
}

func TestParquetEmpty(t *testing.T) {
	b, err := Parquet(nil)
	require.NoError(t, err)

	pr, err := reader.NewParquetReader(buffer.NewBufferFileFromBytes(b), new(sampleRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	assert.Equal(t, int64(0), pr.GetNumRows())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "acceleration_abc.parquet", Filename("abc"))
	assert.Equal(t, "acceleration_dataset.parquet", Filename(""))
}
