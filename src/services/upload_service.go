package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/metrics"
	"github.com/triggerNode/BuxTax/src/model"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/parsers"
	"github.com/triggerNode/BuxTax/src/processors"
)

const (
	ckLatestUpload = "agg_latest_upload_user_%s"
	ckPulse        = "agg_pulse_user_%s_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

var pulseWindows = []string{processors.WindowAll, processors.Window30Days, processors.Window90Days}

type uploadServiceImpl struct {
	db             *sql.DB
	parser         parsers.CSVParser
	pulseProcessor processors.PulseProcessor
	goalProcessor  processors.GoalProcessor
	reportCache    *cache.Cache
	now            func() time.Time
}

func NewUploadService(
	db *sql.DB,
	parser parsers.CSVParser,
	pulseProcessor processors.PulseProcessor,
	goalProcessor processors.GoalProcessor,
	reportCache *cache.Cache,
) UploadService {
	return &uploadServiceImpl{
		db:             db,
		parser:         parser,
		pulseProcessor: pulseProcessor,
		goalProcessor:  goalProcessor,
		reportCache:    reportCache,
		now:            time.Now,
	}
}

// PreviewHeaders reads the header row and proposes a mapping without storing anything.
func (s *uploadServiceImpl) PreviewHeaders(fileReader io.Reader) (*UploadPreview, error) {
	result := s.parser.Parse(fileReader, nil)
	if len(result.Headers) == 0 {
		return nil, &DetailedError{Err: ErrParsingFailed, Details: result.Errors}
	}

	problems := parsers.ValidateMapping(result.Mapping, result.Headers)
	if problems == nil {
		problems = []string{}
	}
	return &UploadPreview{
		Headers:          result.Headers,
		SuggestedMapping: result.Mapping,
		Format:           result.Format,
		Problems:         problems,
	}, nil
}

// ProcessUpload parses the file with the given mapping (detected when nil), stores the
// accepted records as the user's latest upload and drops the user's cached reports.
func (s *uploadServiceImpl) ProcessUpload(fileReader io.Reader, filename, userID string, mapping *models.ColumnMapping) (*UploadResult, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID, "filename", filename)

	result := s.parser.Parse(fileReader, mapping)
	metrics.RecordParse(len(result.Data), len(result.Errors))

	if len(result.Headers) == 0 {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, &DetailedError{Err: ErrParsingFailed, Details: result.Errors}
	}
	if problems := parsers.ValidateMapping(result.Mapping, result.Headers); len(problems) > 0 {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		logger.L.Warn("Upload rejected due to column mapping", "userID", userID, "problems", problems)
		return nil, &DetailedError{Err: ErrInvalidMapping, Details: problems}
	}
	if len(result.Data) == 0 {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		details := append([]string{"No valid payout rows found"}, result.Errors...)
		return nil, &DetailedError{Err: ErrParsingFailed, Details: details}
	}

	upload := &model.PayoutUpload{
		ID:        uuid.NewString(),
		UserID:    userID,
		Filename:  filename,
		Format:    result.Format,
		Mapping:   result.Mapping,
		TotalRows: result.Summary.TotalRows,
		ValidRows: result.Summary.ValidRows,
		Errors:    result.Errors,
		DateRange: result.Summary.DateRange,
		CreatedAt: s.now().UTC(),
		Records:   result.Data,
	}
	if err := model.CreateUpload(s.db, upload); err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("failed to store upload for user %s: %w", userID, err)
	}

	s.InvalidateUserCache(userID)
	metrics.UploadsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.L.Info("ProcessUpload END", "userID", userID, "uploadID", upload.ID, "format", upload.Format,
		"validRows", upload.ValidRows, "errors", len(upload.Errors), "duration", time.Since(startTime))

	return &UploadResult{Upload: upload, Message: result.Message()}, nil
}

// GetLatestUpload returns the user's most recent upload from the report cache or the store.
func (s *uploadServiceImpl) GetLatestUpload(userID string) (*model.PayoutUpload, error) {
	cacheKey := fmt.Sprintf(ckLatestUpload, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		metrics.CacheHit()
		logger.L.Debug("Cache hit for latest upload", "userID", userID)
		return cached.(*model.PayoutUpload), nil
	}
	metrics.CacheMiss()

	upload, err := model.GetLatestUploadByUserID(s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrUploadNotFound) {
			return nil, ErrNoUploadData
		}
		return nil, fmt.Errorf("failed to load latest upload for user %s: %w", userID, err)
	}

	s.reportCache.Set(cacheKey, upload, cache.DefaultExpiration)
	return upload, nil
}

func (s *uploadServiceImpl) GetPulse(userID, window string) (models.PulseSummary, error) {
	if window == "" {
		window = processors.WindowAll
	}
	cacheKey := fmt.Sprintf(ckPulse, userID, window)
	if cached, found := s.reportCache.Get(cacheKey); found {
		metrics.CacheHit()
		return cached.(models.PulseSummary), nil
	}
	metrics.CacheMiss()

	upload, err := s.GetLatestUpload(userID)
	if err != nil {
		return models.PulseSummary{}, err
	}
	summary, err := s.pulseProcessor.Summarize(upload.Records, window, s.now())
	if err != nil {
		return models.PulseSummary{}, err
	}

	s.reportCache.Set(cacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

// GetGoalProgress is computed on every call since it depends on the requested target.
func (s *uploadServiceImpl) GetGoalProgress(userID string, targetUSD float64, deadline time.Time) (models.GoalProgress, error) {
	upload, err := s.GetLatestUpload(userID)
	if err != nil {
		return models.GoalProgress{}, err
	}
	return s.goalProcessor.Track(upload.Records, targetUSD, deadline, s.now())
}

func (s *uploadServiceImpl) ExportLatest(w io.Writer, userID string) error {
	upload, err := s.GetLatestUpload(userID)
	if err != nil {
		return err
	}
	return parsers.ExportCSV(w, upload.Records)
}

func (s *uploadServiceImpl) DeleteUploads(userID string) (int64, error) {
	n, err := model.DeleteUploadsByUserID(s.db, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete uploads for user %s: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	logger.L.Info("Deleted user uploads", "userID", userID, "count", n)
	return n, nil
}

// InvalidateUserCache clears all cached reports for a user, forcing a rebuild on the next request.
func (s *uploadServiceImpl) InvalidateUserCache(userID string) {
	keysToDelete := []string{fmt.Sprintf(ckLatestUpload, userID)}
	for _, window := range pulseWindows {
		keysToDelete = append(keysToDelete, fmt.Sprintf(ckPulse, userID, window))
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
	logger.L.Info("Invalidated all caches for user", "userID", userID)
}
