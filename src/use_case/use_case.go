package use_case

import (
	"context"
	"errors"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/application"
	"github.com/endpointops/android-app-importer/src/entity/clientmodule"
	"github.com/endpointops/android-app-importer/src/entity/icon"
	"github.com/endpointops/android-app-importer/src/entity/policy"
	"github.com/endpointops/android-app-importer/src/entity/session"
	"go.opentelemetry.io/otel"
)

var (
	ErrLoadingModule       = errors.New("failed to load client module")
	ErrImportingRecords    = errors.New("failed to import application records")
	ErrConnectingSession   = errors.New("failed to connect session")
	ErrCreatingApplication = errors.New("failed to create application")
	ErrSavingOutcome       = errors.New("failed to save import outcome")
	ErrEventPublish        = errors.New("cannot publish import event")
)

var tracer = otel.Tracer("use_case")

type UseCase struct {
	recordRepository      RecordRepository
	sessionRepository     SessionRepository
	appRepository         AppRepository
	historyRepository     HistoryRepository
	importEventRepository ImportEventRepository
	policies              Policies
}

type RecordRepository interface {
	Import(ctx context.Context, path string, delimiter rune) ([]application.Record, error)
}

type ModuleRepository interface {
	Load(ctx context.Context, path string) (clientmodule.Module, error)
}

type SessionRepository interface {
	Connect(ctx context.Context) (session.Session, error)
}

type AppRepository interface {
	HealthCheck(ctx context.Context) error
	CreateAndroidStoreApp(ctx context.Context, s session.Session, record application.Record, ic icon.Icon) error
}

type HistoryRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, outcome ImportOutcome) error
}

type ImportEventRepository interface {
	PublishImported(ctx context.Context, outcome ImportOutcome) error
}

// Policies fixes, once at startup, how the import and connect stages react
// to failure. Per-record publish failures are always isolated and never
// consult a policy.
type Policies struct {
	Import  policy.FailurePolicy
	Connect policy.FailurePolicy
}

// ImportOutcome is the per-record result of one creation attempt.
type ImportOutcome struct {
	RunID       string
	RecordIndex int
	Record      application.Record
	Success     bool
	Error       string
	DateTime    time.Time
}

func New(
	recordRepo RecordRepository,
	sessionRepo SessionRepository,
	appRepo AppRepository,
	historyRepo HistoryRepository,
	importEventRepo ImportEventRepository,
	policies Policies,
) *UseCase {
	return &UseCase{
		recordRepository:      recordRepo,
		sessionRepository:     sessionRepo,
		appRepository:         appRepo,
		historyRepository:     historyRepo,
		importEventRepository: importEventRepo,
		policies:              policies,
	}
}
