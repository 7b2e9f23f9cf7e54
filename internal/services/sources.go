package services

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/aristath/riskscope/internal/clients/s3"
	"github.com/aristath/riskscope/internal/modules/history"
	"github.com/aristath/riskscope/internal/modules/panel"
	"github.com/aristath/riskscope/internal/utils"
)

// RecordSource supplies the price records for one analysis run.
type RecordSource interface {
	Load(ctx context.Context) ([]panel.PriceRecord, error)
	Name() string
}

// CSVSource reads price records from a local CSV file.
type CSVSource struct {
	Path string
	Log  zerolog.Logger
}

// Name implements RecordSource.
func (s CSVSource) Name() string { return "csv" }

// Load implements RecordSource.
func (s CSVSource) Load(ctx context.Context) ([]panel.PriceRecord, error) {
	defer utils.OperationTimer("load_csv", s.Log)()

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return panel.ParseRecords(f)
}

// SQLiteSource reads price records from the local history store.
type SQLiteSource struct {
	Store *history.Store
}

// Name implements RecordSource.
func (s SQLiteSource) Name() string { return "sqlite" }

// Load implements RecordSource.
func (s SQLiteSource) Load(ctx context.Context) ([]panel.PriceRecord, error) {
	return s.Store.LoadRecords(ctx)
}

// S3Source downloads a CSV object from object storage and parses it.
type S3Source struct {
	Client *s3.Client
	Bucket string
	Key    string
	Log    zerolog.Logger
}

// Name implements RecordSource.
func (s S3Source) Name() string { return "s3" }

// Load implements RecordSource.
func (s S3Source) Load(ctx context.Context) ([]panel.PriceRecord, error) {
	defer utils.OperationTimer("load_s3", s.Log)()

	data, err := s.Client.Download(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, err
	}

	return panel.ParseRecords(bytes.NewReader(data))
}
