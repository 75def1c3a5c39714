package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"providerpulse/internal/config"
	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/shared/testutil"
	"providerpulse/pkg/contracts/domain"
	"providerpulse/pkg/contracts/events"
)

// MockPublisher is a testify mock for EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, t events.MessageType, data interface{}) {
	m.Called(ctx, t, data)
}

// recordingPublisher keeps published message types for goroutine tests
type recordingPublisher struct {
	mu    sync.Mutex
	types []events.MessageType
}

func (p *recordingPublisher) Publish(_ context.Context, t events.MessageType, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, t)
}

func (p *recordingPublisher) count(t events.MessageType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, got := range p.types {
		if got == t {
			n++
		}
	}
	return n
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		Threshold:        20,
		MaxUploadBytes:   config.DefaultMaxUploadBytes,
		BatchConcurrency: 2,
	}
}

func newTestService(t *testing.T, cfg config.IngestConfig, pub EventPublisher) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDatasetService(cfg, pub, nil, logger)
}

func ingestSample(t *testing.T, s *DatasetService) *domain.Dataset {
	t.Helper()
	ds, err := s.Ingest(context.Background(), "weekly.xlsx", bytes.NewReader(testutil.WorkbookBytes(t, testutil.SampleWeeklyRows)))
	require.NoError(t, err)
	return ds
}

func TestDatasetServiceIngest(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, events.MessageTypeDatasetLoaded, mock.AnythingOfType("events.DatasetEvent")).Return().Once()

	s := newTestService(t, testIngestConfig(), pub)
	ds := ingestSample(t, s)

	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, "weekly.xlsx", ds.Name)
	assert.Equal(t, domain.DatasetSourceUpload, ds.Source)
	assert.Equal(t, 20.0, ds.Threshold)
	assert.Equal(t, []string{"Week of 12/30", "Week of 1/6"}, ds.Weeks)
	assert.Equal(t, []string{"Dr. Adams", "Dr. Baker"}, ds.Providers)
	assert.Len(t, ds.Records, 3)
	assert.Equal(t, 1, s.Count())

	pub.AssertExpectations(t)
}

func TestDatasetServiceIngestRejections(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		body      func(t *testing.T) []byte
		maxBytes  int64
		wantErr   error
		rejection bool
	}{
		{
			name:    "wrong extension",
			file:    "weekly.csv",
			body:    func(t *testing.T) []byte { return []byte("a,b") },
			wantErr: ErrInvalidWorkbook,
		},
		{
			name:    "lock file",
			file:    "~$weekly.xlsx",
			body:    func(t *testing.T) []byte { return testutil.WorkbookBytes(t, testutil.SampleWeeklyRows) },
			wantErr: ErrInvalidWorkbook,
		},
		{
			name:     "too large",
			file:     "weekly.xlsx",
			body:     func(t *testing.T) []byte { return testutil.WorkbookBytes(t, testutil.SampleWeeklyRows) },
			maxBytes: 16,
			wantErr:  ErrWorkbookTooLarge,
		},
		{
			name:      "not a workbook",
			file:      "weekly.xlsx",
			body:      func(t *testing.T) []byte { return []byte("plain text") },
			wantErr:   ErrInvalidWorkbook,
			rejection: true,
		},
		{
			name: "no recognisable layout",
			file: "weekly.xlsx",
			body: func(t *testing.T) []byte {
				return testutil.WorkbookBytes(t, [][]any{{"hello", "world"}, {"foo", "bar"}})
			},
			wantErr:   ErrNoDataFound,
			rejection: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			cfg := testIngestConfig()
			if tt.maxBytes > 0 {
				cfg.MaxUploadBytes = tt.maxBytes
			}
			s := newTestService(t, cfg, pub)

			ds, err := s.Ingest(context.Background(), tt.file, bytes.NewReader(tt.body(t)))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, ds)
			assert.Equal(t, 0, s.Count())

			want := 0
			if tt.rejection {
				want = 1
			}
			assert.Equal(t, want, pub.count(events.MessageTypeDatasetRejected))
		})
	}
}

func TestDatasetServiceGetListDelete(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return()

	s := newTestService(t, testIngestConfig(), pub)
	first := ingestSample(t, s)
	second := ingestSample(t, s)

	infos := s.List(context.Background())
	require.Len(t, infos, 2)
	assert.Equal(t, first.ID, infos[0].ID)
	assert.Equal(t, second.ID, infos[1].ID)
	assert.Equal(t, 3, infos[0].RecordCount)

	got, err := s.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Same(t, first, got)

	require.NoError(t, s.Delete(context.Background(), first.ID))
	pub.AssertCalled(t, "Publish", mock.Anything, events.MessageTypeDatasetDeleted, mock.Anything)

	_, err = s.Get(context.Background(), first.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), first.ID), ErrDatasetNotFound)
	assert.Len(t, s.List(context.Background()), 1)
}

func TestDatasetServiceRecords(t *testing.T) {
	s := newTestService(t, testIngestConfig(), nil)
	ds := ingestSample(t, s)
	ctx := context.Background()

	minPct := 15.0
	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string // provider@week
		wantErr  error
	}{
		{
			name:     "no criteria sorts by week then provider",
			criteria: domain.FilterCriteria{},
			want:     []string{"Dr. Adams@Week of 12/30", "Dr. Baker@Week of 12/30", "Dr. Adams@Week of 1/6"},
		},
		{
			name:     "provider",
			criteria: domain.FilterCriteria{Providers: []string{"Dr. Baker"}},
			want:     []string{"Dr. Baker@Week of 12/30"},
		},
		{
			name:     "min percent",
			criteria: domain.FilterCriteria{MinPercent: &minPct},
			want:     []string{"Dr. Adams@Week of 12/30", "Dr. Baker@Week of 12/30"},
		},
		{
			name:     "bare token range",
			criteria: domain.FilterCriteria{WeekRange: &domain.WeekRange{From: "1/6", To: "1/6"}},
			want:     []string{"Dr. Adams@Week of 1/6"},
		},
		{
			name:     "range across year boundary",
			criteria: domain.FilterCriteria{WeekRange: &domain.WeekRange{From: "Week of 12/23", To: "Week of 1/13"}},
			want:     []string{"Dr. Adams@Week of 12/30", "Dr. Baker@Week of 12/30", "Dr. Adams@Week of 1/6"},
		},
		{
			name:     "reversed range",
			criteria: domain.FilterCriteria{WeekRange: &domain.WeekRange{From: "Week of 1/6", To: "Week of 12/30"}},
			wantErr:  ErrInvalidWeekRange,
		},
		{
			name:     "unknown bound",
			criteria: domain.FilterCriteria{WeekRange: &domain.WeekRange{From: "Week of never", To: "Week of 1/6"}},
			wantErr:  ErrInvalidWeekRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.Records(ctx, ds.ID, tt.criteria)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got := make([]string, len(records))
			for i, r := range records {
				got[i] = r.Provider + "@" + r.Week
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := s.Records(ctx, "missing", domain.FilterCriteria{})
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDatasetServiceQueries(t *testing.T) {
	s := newTestService(t, testIngestConfig(), nil)
	ds := ingestSample(t, s)
	ctx := context.Background()

	providers, err := s.Providers(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr. Adams", "Dr. Baker"}, providers)

	weeks, err := s.Weeks(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Week of 12/30", "Week of 1/6"}, weeks)

	summary, err := s.Summary(ctx, ds.ID, domain.FilterCriteria{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalProviders)
	assert.Equal(t, 110.0, summary.TotalVisits)
	assert.Equal(t, 18.3, summary.AvgPercentOver)
	assert.Equal(t, domain.TrendNeutral, summary.Trend)

	warnings, err := s.Warnings(ctx, ds.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = s.Summary(ctx, "missing", domain.FilterCriteria{})
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDatasetServiceIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "b_weekly.xlsx", testutil.SampleWeeklyRows)
	testutil.WriteWorkbook(t, dir, "a_empty.xlsx", [][]any{{"nothing", "here"}})
	testutil.WriteWorkbook(t, dir, "~$b_weekly.xlsx", testutil.SampleWeeklyRows)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	pub := &recordingPublisher{}
	s := newTestService(t, testIngestConfig(), pub)

	results, err := s.IngestDirectory(context.Background(), dir, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a_empty.xlsx", results[0].File)
	assert.ErrorIs(t, results[0].Err, ErrNoDataFound)

	assert.Equal(t, "b_weekly.xlsx", results[1].File)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 3, results[1].Records)
	assert.NotEmpty(t, results[1].DatasetID)
	assert.Positive(t, results[1].Size)

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 1, pub.count(events.MessageTypeDatasetLoaded))
	assert.Equal(t, 1, pub.count(events.MessageTypeDatasetRejected))

	infos := s.List(context.Background())
	require.Len(t, infos, 1)
	assert.Equal(t, domain.DatasetSourceBatch, infos[0].Source)
}

func TestDatasetServiceIngestDirectoryPattern(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "clinic_a.xlsx", testutil.SampleWeeklyRows)
	testutil.WriteWorkbook(t, dir, "other.xlsx", testutil.SampleWeeklyRows)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clinic_notes.txt"), []byte("x"), 0o644))

	s := newTestService(t, testIngestConfig(), nil)
	results, err := s.IngestDirectory(context.Background(), dir, "clinic_*")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "clinic_a.xlsx", results[0].File)

	_, err = s.IngestDirectory(context.Background(), filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}

func TestDatasetServiceLoadDefault(t *testing.T) {
	dir := t.TempDir()
	older := testutil.WriteWorkbook(t, dir, "older.xlsx", [][]any{{"nothing"}})
	newer := testutil.WriteWorkbook(t, dir, "newer.xlsx", testutil.SampleWeeklyRows)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))
	require.NoError(t, os.Chtimes(newer, time.Now(), time.Now()))

	t.Run("not configured", func(t *testing.T) {
		s := newTestService(t, testIngestConfig(), nil)
		_, err := s.LoadDefault(context.Background())
		assert.ErrorIs(t, err, ErrNoDefaultPath)
	})

	t.Run("directory loads latest and reload replaces", func(t *testing.T) {
		cfg := testIngestConfig()
		cfg.DefaultPath = dir
		pub := &recordingPublisher{}
		s := newTestService(t, cfg, pub)

		first, err := s.LoadDefault(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "newer.xlsx", first.Name)
		assert.Equal(t, domain.DatasetSourceDefault, first.Source)
		assert.Equal(t, first.ID, s.DefaultID())

		second, err := s.LoadDefault(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 1, s.Count())
		assert.Equal(t, second.ID, s.DefaultID())

		assert.Equal(t, 1, pub.count(events.MessageTypeDatasetLoaded))
		assert.Equal(t, 1, pub.count(events.MessageTypeDatasetRefresh))
	})

	t.Run("missing path", func(t *testing.T) {
		cfg := testIngestConfig()
		cfg.DefaultPath = filepath.Join(dir, "gone.xlsx")
		s := newTestService(t, cfg, nil)
		_, err := s.LoadDefault(context.Background())
		assert.ErrorIs(t, err, ErrInvalidWorkbook)
	})
}

func TestDatasetServiceIngestDecodeFailureIsParsingError(t *testing.T) {
	s := newTestService(t, testIngestConfig(), nil)

	_, err := s.Ingest(context.Background(), "weekly.xlsx", bytes.NewReader([]byte("plain text")))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
	assert.Equal(t, "weekly.xlsx", appErr.Context["file"])
}

func TestDatasetServiceRunRefresher(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "weekly.xlsx", testutil.SampleWeeklyRows)

	cfg := testIngestConfig()
	cfg.DefaultPath = path
	cfg.RefreshInterval = 10 * time.Millisecond
	pub := &recordingPublisher{}
	s := newTestService(t, cfg, pub)

	_, err := s.LoadDefault(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunRefresher(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return pub.count(events.MessageTypeDatasetRefresh) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Count())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestDatasetServiceRunRefresherDisabled(t *testing.T) {
	s := newTestService(t, testIngestConfig(), nil)

	done := make(chan struct{})
	go func() {
		s.RunRefresher(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled refresher should return immediately")
	}
}

func TestDatasetServiceConcurrentAccess(t *testing.T) {
	s := newTestService(t, testIngestConfig(), nil)
	body := testutil.WorkbookBytes(t, testutil.SampleWeeklyRows)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := s.Ingest(context.Background(), "weekly.xlsx", bytes.NewReader(body))
			if !assert.NoError(t, err) {
				return
			}
			_, err = s.Records(context.Background(), ds.ID, domain.FilterCriteria{})
			assert.NoError(t, err)
			s.List(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, s.Count())
}
