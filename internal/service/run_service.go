package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-idp-batch/internal/models"
	appErrors "github.com/noah-isme/sma-idp-batch/pkg/errors"
	"github.com/noah-isme/sma-idp-batch/pkg/logger"
)

const runLockName = "idp-batch"

type weightsReader interface {
	List(ctx context.Context, subjectIDs []int64) ([]models.SubjectWeights, error)
}

type subjectProcessor interface {
	ProcessSubject(ctx context.Context, weights models.SubjectWeights) models.SubjectReport
}

type runLocker interface {
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, owner string) error
}

// ReportWriter persists a finished run report and returns where it went.
type ReportWriter interface {
	Write(ctx context.Context, report *models.RunReport) (string, error)
}

// RunOptions scopes one invocation of the batch.
type RunOptions struct {
	SubjectIDs     []int64
	LockTTL        time.Duration
	PushgatewayURL string
	JobName        string
}

// RunService drives a whole batch: every configured subject, one after another.
type RunService struct {
	weights  weightsReader
	subjects subjectProcessor
	locker   runLocker
	reports  ReportWriter
	metrics  *MetricsService
	opts     RunOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewRunService constructs RunService. locker and reports are optional.
func NewRunService(weights weightsReader, subjects subjectProcessor, locker runLocker, reports ReportWriter, metrics *MetricsService, opts RunOptions, log *zap.Logger) *RunService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.JobName == "" {
		opts.JobName = "idp_batch"
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Hour
	}
	return &RunService{
		weights:  weights,
		subjects: subjects,
		locker:   locker,
		reports:  reports,
		metrics:  metrics,
		opts:     opts,
		logger:   log,
		now:      time.Now,
	}
}

// Run executes the batch. Subject failures are kept on the report; only failures that
// stop the whole run (lock backend, weights lookup, cancellation) are returned as errors.
func (s *RunService) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{RunID: uuid.NewString(), StartedAt: s.now()}
	log := logger.ForRun(s.logger, report.RunID, s.opts.JobName)

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, runLockName, report.RunID, s.opts.LockTTL)
		if err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrRunLocked, err, "acquire run lock")
		}
		if !acquired {
			report.Skipped = true
			report.FinishedAt = s.now()
			log.Warn("another run holds the lock, skipping")
			return report, nil
		}
		defer func() {
			// Release must survive a cancelled run context.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.locker.Release(releaseCtx, runLockName, report.RunID); err != nil {
				log.Warn("release run lock", zap.Error(err))
			}
		}()
	}

	log.Info("idp run started", zap.Int64s("subject_filter", s.opts.SubjectIDs))

	start := time.Now()
	weights, err := s.weights.List(ctx, s.opts.SubjectIDs)
	s.metrics.ObserveDBQuery("fetch_weights", time.Since(start))
	if err != nil {
		log.Error("fetch subject weights failed", zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrConnectivity, err, "fetch subject weights")
	}

	for _, w := range weights {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.now()
			log.Warn("run cancelled", zap.Int("subjects_done", len(report.Subjects)), zap.Error(err))
			return report, err
		}
		subject := s.subjects.ProcessSubject(ctx, w)
		s.metrics.ObserveSubject(subject)
		report.Subjects = append(report.Subjects, subject)
	}

	report.FinishedAt = s.now()
	s.metrics.ObserveRun(report)
	s.finish(ctx, log, report)
	return report, nil
}

func (s *RunService) finish(ctx context.Context, log *zap.Logger, report *models.RunReport) {
	if s.reports != nil {
		path, err := s.reports.Write(ctx, report)
		if err != nil {
			log.Error("write run report", zap.Error(err))
		} else {
			log.Info("run report written", zap.String("path", path))
		}
	}

	if err := s.metrics.Push(ctx, s.opts.PushgatewayURL, s.opts.JobName); err != nil {
		log.Warn("metrics push failed", zap.Error(err))
	}

	log.Info("idp run finished",
		zap.Int("subjects", len(report.Subjects)),
		zap.Int("failed_subjects", report.FailedSubjects()),
		zap.Duration("duration", report.Duration()),
		zap.Duration("avg_db_query", s.metrics.AverageDBQuery()))
}
