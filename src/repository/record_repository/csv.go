package record_repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/endpointops/android-app-importer/src/entity/application"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/use_case"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("record_repository")

type file struct{}

// Header names the input file must carry. "mininumandroidversion" keeps the
// historical misspelling that existing input files were written against; the
// corrected spelling is accepted as an alias.
const (
	colName        = "name"
	colURL         = "url"
	colPublisher   = "publisher"
	colDescription = "description"
	colMinVersion  = "mininumandroidversion"
	colMinVersionA = "minimumandroidversion"
	colIcon        = "icon"
)

func (f file) Import(ctx context.Context, path string, delimiter rune) ([]application.Record, error) {
	ctx, span := tracer.Start(ctx, "record_repository.Import")
	defer span.End()

	fh, err := os.Open(path)
	if err != nil {
		zap.L().Error("open input file failed", logger.WithTraceId(ctx), zap.Any("error", err), zap.Any("path", path))
		span.SetStatus(codes.Error, fmt.Sprintf("open input file failed: %s", err))
		return nil, fmt.Errorf("%s: %w", path, use_case.ErrImportingRecords)
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.Comma = delimiter

	header, err := reader.Read()
	if err != nil {
		zap.L().Error("read header failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("read header failed: %s", err))
		return nil, fmt.Errorf("read header: %w", use_case.ErrImportingRecords)
	}

	columns, err := mapColumns(header)
	if err != nil {
		zap.L().Error("invalid header", logger.WithTraceId(ctx), zap.Any("error", err), zap.Any("header", header))
		span.SetStatus(codes.Error, fmt.Sprintf("invalid header: %s", err))
		return nil, fmt.Errorf("%s: %w", err, use_case.ErrImportingRecords)
	}

	var records []application.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			zap.L().Error("read row failed", logger.WithTraceId(ctx), zap.Any("error", err))
			span.SetStatus(codes.Error, fmt.Sprintf("read row failed: %s", err))
			return nil, fmt.Errorf("row %d: %w", len(records)+1, use_case.ErrImportingRecords)
		}

		record, err := toRecord(row, columns)
		if err != nil {
			// A bad minimum version downgrades that record, never the batch.
			zap.L().Warn("row has invalid minimum version, importing without it",
				logger.WithTraceId(ctx),
				zap.Any("error", err),
				zap.Any("row", len(records)+1),
			)
		}
		records = append(records, record)
	}

	zap.L().Info("records imported", logger.WithTraceId(ctx), zap.Any("count", len(records)))
	return records, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if alias, ok := columns[colMinVersionA]; ok {
		columns[colMinVersion] = alias
	}

	for _, required := range []string{colName, colURL, colPublisher, colDescription, colMinVersion, colIcon} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return columns, nil
}

func toRecord(row []string, columns map[string]int) (application.Record, error) {
	record := application.Record{
		Name:        row[columns[colName]],
		URL:         row[columns[colURL]],
		Publisher:   row[columns[colPublisher]],
		Description: row[columns[colDescription]],
		IconPath:    row[columns[colIcon]],
	}

	version, err := application.ParseAndroidVersion(row[columns[colMinVersion]])
	if err != nil {
		return record, err
	}
	record.MinimumAndroidVersion = version
	return record, nil
}

func NewFile() use_case.RecordRepository {
	return file{}
}
