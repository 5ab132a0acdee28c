// Package export serializes normalized acceleration series for download.
package export

import (
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/jengzang/accel-dashboard-go/internal/models"
)

// ContentType for Parquet downloads
const ContentType = "application/vnd.apache.parquet"

// sampleRow is one Parquet row
type sampleRow struct {
	SequenceIndex int64   `parquet:"name=sequence_index, type=INT64"`
	Timestamp     string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	X             float64 `parquet:"name=x, type=DOUBLE"`
	Y             float64 `parquet:"name=y, type=DOUBLE"`
	Z             float64 `parquet:"name=z, type=DOUBLE"`
	Magnitude     float64 `parquet:"name=magnitude, type=DOUBLE"`
}

// Parquet encodes samples as a SNAPPY-compressed Parquet file held in memory
func Parquet(samples []models.NormalizedSample) ([]byte, error) {
	fw := buffer.NewBufferFile()

	pw, err := writer.NewParquetWriter(fw, new(sampleRow), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range samples {
		row := sampleRow{
			SequenceIndex: int64(s.SequenceIndex),
			Timestamp:     s.Timestamp.UTC().Format(time.RFC3339Nano),
			X:             s.X,
			Y:             s.Y,
			Z:             s.Z,
			Magnitude:     s.Magnitude,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("failed to write row %d: %w", s.SequenceIndex, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}

	return append([]byte(nil), fw.Bytes()...), nil
}

// Filename builds the download name for a dataset export
func Filename(datasetID string) string {
	if datasetID == "" {
		datasetID = "dataset"
	}
	return fmt.Sprintf("acceleration_%s.parquet", datasetID)
}
