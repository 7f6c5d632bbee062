package use_case

import (
	"context"
	"fmt"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/application"
	"github.com/endpointops/android-app-importer/src/entity/icon"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/entity/policy"
	"github.com/endpointops/android-app-importer/src/entity/session"
	"github.com/endpointops/android-app-importer/src/metrics"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ImportApplications runs the batch: parse the input file, connect a
// session, then attempt one creation call per record in file order. Only
// the import and connect stages can abort the run, and only when their
// policy is fatal. Record failures never do.
func (u UseCase) ImportApplications(
	ctx context.Context,
	csvPath string,
	delimiter rune,
) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("use_case.ImportApplications(%s)", csvPath))
	defer span.End()
	zap.L().Info("use_case.ImportApplications",
		logger.WithTraceId(ctx),
		zap.Any("csvPath", csvPath),
	)

	records, err := u.recordRepository.Import(ctx, csvPath, delimiter)
	if err != nil {
		if u.policies.Import == policy.FailurePolicyFatal {
			span.SetStatus(codes.Error, fmt.Sprintf("%s", err))
			return err
		}
		zap.L().Error("record import failed, continuing with empty batch",
			logger.WithTraceId(ctx),
			zap.Any("error", err),
		)
		records = nil
	}
	metrics.RecordsImported(len(records))

	var sess session.Session
	sess, err = u.sessionRepository.Connect(ctx)
	if err != nil {
		if u.policies.Connect == policy.FailurePolicyFatal {
			span.SetStatus(codes.Error, fmt.Sprintf("%s", err))
			return err
		}
		zap.L().Error("session connect failed, downstream calls will fail individually",
			logger.WithTraceId(ctx),
			zap.Any("error", err),
		)
		sess = session.Session{}
	}

	runID := time.Now().Format("20060102-150405")
	for i, record := range records {
		u.publishRecord(ctx, sess, runID, i, record)
	}

	zap.L().Info("use_case.ImportApplications finished",
		logger.WithTraceId(ctx),
		zap.Any("records", len(records)),
	)
	return nil
}

// publishRecord attempts one creation call. It never returns an error: a
// failing record is logged, persisted and counted, and the loop moves on.
func (u UseCase) publishRecord(
	ctx context.Context,
	sess session.Session,
	runID string,
	index int,
	record application.Record,
) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("use_case.publishRecord(%d)", index))
	defer span.End()

	outcome := ImportOutcome{
		RunID:       runID,
		RecordIndex: index,
		Record:      record,
		DateTime:    time.Now(),
	}

	ic, err := icon.Load(record.IconPath)
	if err == nil {
		err = u.appRepository.CreateAndroidStoreApp(ctx, sess, record, ic)
	}

	if err != nil {
		zap.L().Error("creation failed for record",
			logger.WithTraceId(ctx),
			logger.WithRecord(index, record.Name),
			zap.Any("error", err),
		)
		span.SetStatus(codes.Error, fmt.Sprintf("record %d: %s", index, err))
		metrics.PublishFailed()
		outcome.Error = err.Error()
		u.saveOutcome(ctx, outcome)
		return
	}

	zap.L().Info("application created",
		logger.WithTraceId(ctx),
		logger.WithRecord(index, record.Name),
	)
	metrics.PublishSucceeded()
	outcome.Success = true
	u.saveOutcome(ctx, outcome)

	if err := u.importEventRepository.PublishImported(ctx, outcome); err != nil {
		zap.L().Error("import event publish failed",
			logger.WithTraceId(ctx),
			logger.WithRecord(index, record.Name),
			zap.Any("error", err),
		)
	}
}

func (u UseCase) saveOutcome(ctx context.Context, outcome ImportOutcome) {
	if err := u.historyRepository.Create(ctx, outcome); err != nil {
		zap.L().Error("saving outcome failed",
			logger.WithTraceId(ctx),
			zap.Any("error", err),
		)
	}
}
