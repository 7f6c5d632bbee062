package use_case

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/endpointops/android-app-importer/src/entity/application"
	"github.com/endpointops/android-app-importer/src/entity/icon"
	"github.com/endpointops/android-app-importer/src/entity/policy"
	"github.com/endpointops/android-app-importer/src/entity/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	records []application.Record
	err     error
}

func (f fakeRecordRepo) Import(ctx context.Context, path string, delimiter rune) ([]application.Record, error) {
	return f.records, f.err
}

type fakeSessionRepo struct {
	err error
}

func (f fakeSessionRepo) Connect(ctx context.Context) (session.Session, error) {
	if f.err != nil {
		return session.Session{}, f.err
	}
	return session.Session{AccessToken: "tok", TokenType: "Bearer"}, nil
}

type fakeAppRepo struct {
	created []string
	failOn  map[string]error
}

func (f *fakeAppRepo) CreateAndroidStoreApp(ctx context.Context, s session.Session, record application.Record, ic icon.Icon) error {
	f.created = append(f.created, record.Name)
	if err, ok := f.failOn[record.Name]; ok {
		return err
	}
	return nil
}

func (f *fakeAppRepo) HealthCheck(ctx context.Context) error { return nil }

type fakeHistoryRepo struct {
	outcomes []ImportOutcome
}

func (f *fakeHistoryRepo) Create(ctx context.Context, outcome ImportOutcome) error {
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

func (f *fakeHistoryRepo) HealthCheck(ctx context.Context) error { return nil }

type fakeEventRepo struct {
	published []string
	err       error
}

func (f *fakeEventRepo) PublishImported(ctx context.Context, outcome ImportOutcome) error {
	f.published = append(f.published, outcome.Record.Name)
	return f.err
}

func fatalPolicies() Policies {
	return Policies{Import: policy.FailurePolicyFatal, Connect: policy.FailurePolicyFatal}
}

// writeIcon gives a record a real icon file, since the publish loop reads it
// from disk per iteration.
func writeIcon(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))
	return path
}

func testRecords(t *testing.T, names ...string) []application.Record {
	t.Helper()
	dir := t.TempDir()
	records := make([]application.Record, len(names))
	for i, name := range names {
		records[i] = application.Record{
			Name:                  name,
			URL:                   "https://play.google.com/" + name,
			Publisher:             "Acme",
			MinimumAndroidVersion: application.AndroidVersionV4_0,
			IconPath:              writeIcon(t, dir, name+".png"),
		}
	}
	return records
}

func TestImportApplicationsAttemptsEveryRecordInOrder(t *testing.T) {
	appRepo := &fakeAppRepo{}
	history := &fakeHistoryRepo{}
	events := &fakeEventRepo{}
	u := New(
		fakeRecordRepo{records: testRecords(t, "one", "two", "three")},
		fakeSessionRepo{},
		appRepo,
		history,
		events,
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, appRepo.created)
	assert.Equal(t, []string{"one", "two", "three"}, events.published)
	require.Len(t, history.outcomes, 3)
	for i, outcome := range history.outcomes {
		assert.Equal(t, i, outcome.RecordIndex)
		assert.True(t, outcome.Success)
	}
}

func TestImportApplicationsIsolatesPublishFailure(t *testing.T) {
	appRepo := &fakeAppRepo{failOn: map[string]error{"two": ErrCreatingApplication}}
	history := &fakeHistoryRepo{}
	events := &fakeEventRepo{}
	u := New(
		fakeRecordRepo{records: testRecords(t, "one", "two", "three")},
		fakeSessionRepo{},
		appRepo,
		history,
		events,
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, appRepo.created)
	assert.Equal(t, []string{"one", "three"}, events.published)
	assert.False(t, history.outcomes[1].Success)
	assert.NotEmpty(t, history.outcomes[1].Error)
}

func TestImportApplicationsIsolatesMissingIcon(t *testing.T) {
	records := testRecords(t, "one", "two", "three")
	records[1].IconPath = filepath.Join(t.TempDir(), "gone.png")

	appRepo := &fakeAppRepo{}
	history := &fakeHistoryRepo{}
	u := New(
		fakeRecordRepo{records: records},
		fakeSessionRepo{},
		appRepo,
		history,
		&fakeEventRepo{},
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	// The record with the missing icon never reaches the API, the others do.
	assert.Equal(t, []string{"one", "three"}, appRepo.created)
	require.Len(t, history.outcomes, 3)
	assert.False(t, history.outcomes[1].Success)
}

func TestImportApplicationsImportFailureFatal(t *testing.T) {
	appRepo := &fakeAppRepo{}
	u := New(
		fakeRecordRepo{err: ErrImportingRecords},
		fakeSessionRepo{},
		appRepo,
		&fakeHistoryRepo{},
		&fakeEventRepo{},
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	assert.ErrorIs(t, err, ErrImportingRecords)
	assert.Empty(t, appRepo.created)
}

func TestImportApplicationsImportFailureContinueDegraded(t *testing.T) {
	appRepo := &fakeAppRepo{}
	u := New(
		fakeRecordRepo{err: ErrImportingRecords},
		fakeSessionRepo{},
		appRepo,
		&fakeHistoryRepo{},
		&fakeEventRepo{},
		Policies{Import: policy.FailurePolicyContinueDegraded, Connect: policy.FailurePolicyFatal},
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	assert.Empty(t, appRepo.created)
}

func TestImportApplicationsConnectFailureFatal(t *testing.T) {
	appRepo := &fakeAppRepo{}
	u := New(
		fakeRecordRepo{records: testRecords(t, "one")},
		fakeSessionRepo{err: ErrConnectingSession},
		appRepo,
		&fakeHistoryRepo{},
		&fakeEventRepo{},
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	assert.ErrorIs(t, err, ErrConnectingSession)
	assert.Empty(t, appRepo.created)
}

func TestImportApplicationsConnectFailureContinueDegraded(t *testing.T) {
	appRepo := &fakeAppRepo{failOn: map[string]error{"one": ErrCreatingApplication}}
	u := New(
		fakeRecordRepo{records: testRecords(t, "one")},
		fakeSessionRepo{err: ErrConnectingSession},
		appRepo,
		&fakeHistoryRepo{},
		&fakeEventRepo{},
		Policies{Import: policy.FailurePolicyFatal, Connect: policy.FailurePolicyContinueDegraded},
	)

	// The original behavior: keep going with an unusable session, every
	// record fails on its own.
	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, appRepo.created)
}

func TestImportApplicationsEventFailureDoesNotAbort(t *testing.T) {
	appRepo := &fakeAppRepo{}
	u := New(
		fakeRecordRepo{records: testRecords(t, "one", "two")},
		fakeSessionRepo{},
		appRepo,
		&fakeHistoryRepo{},
		&fakeEventRepo{err: errors.New("broker down")},
		fatalPolicies(),
	)

	err := u.ImportApplications(context.Background(), "apps.csv", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, appRepo.created)
}
