package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-idp-batch/internal/models"
	appErrors "github.com/noah-isme/sma-idp-batch/pkg/errors"
)

type enrollmentLister interface {
	ListEligibleBySubject(ctx context.Context, subjectID int64) ([]models.Enrollment, error)
}

type activityReader interface {
	ResourceVisibility(ctx context.Context, studentID, subjectID int64) (*float64, error)
	RequiredActivityCount(ctx context.Context, subjectID int64) (int, error)
	SubmittedActivityCount(ctx context.Context, studentID, subjectID int64) (int, error)
}

type subjectDurationReader interface {
	Duration(ctx context.Context, subjectID int64) (*models.SubjectDuration, error)
}

type idpResultStore interface {
	Upsert(ctx context.Context, result *models.IdpResult) (bool, error)
	ListHighTier(ctx context.Context, subjectID int64, studentIDs []int64) ([]models.DecileCandidate, error)
	MarkTopDecile(ctx context.Context, subjectID int64, studentIDs []int64) error
}

// IdpService evaluates every eligible student of a subject and flags the subject's top decile.
type IdpService struct {
	enrollments enrollmentLister
	activities  activityReader
	subjects    subjectDurationReader
	results     idpResultStore
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewIdpService constructs IdpService. location decides which calendar day counts as today.
func NewIdpService(enrollments enrollmentLister, activities activityReader, subjects subjectDurationReader, results idpResultStore, metrics *MetricsService, validate *validator.Validate, location *time.Location, logger *zap.Logger) *IdpService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &IdpService{
		enrollments: enrollments,
		activities:  activities,
		subjects:    subjects,
		results:     results,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		location:    location,
		now:         time.Now,
	}
}

// subjectPass holds the facts shared by every student of one subject.
type subjectPass struct {
	weights  models.SubjectWeights
	duration *models.SubjectDuration
	required int
	today    time.Time
}

// ProcessSubject runs one subject end to end. Student failures are recorded on their
// outcome; a failure outside the student loop is recorded on the report.
func (s *IdpService) ProcessSubject(ctx context.Context, weights models.SubjectWeights) models.SubjectReport {
	report := models.SubjectReport{SubjectID: weights.SubjectID}
	log := s.logger.With(zap.Int64("subject_id", weights.SubjectID))

	pass, enrollments, err := s.prepare(ctx, weights)
	if err != nil {
		report.Err = err
		log.Error("subject skipped", zap.String("code", appErrors.FromError(err).Code), zap.Error(err))
		return report
	}

	for _, enrollment := range enrollments {
		outcome := s.evaluateStudent(ctx, pass, enrollment)
		report.Students = append(report.Students, outcome)
		switch outcome.Status {
		case models.StudentFailed:
			msg := "student evaluation failed"
			if errors.Is(outcome.Err, appErrors.ErrInvariant) {
				msg = "duplicate idp rows found"
			}
			log.Error(msg,
				zap.Int64("student_id", enrollment.StudentID),
				zap.Int64("enrollment_id", enrollment.ID),
				zap.String("code", appErrors.FromError(outcome.Err).Code),
				zap.Error(outcome.Err))
		case models.StudentNotComputable:
			log.Warn("student pace not computable",
				zap.Int64("student_id", enrollment.StudentID),
				zap.Int64("enrollment_id", enrollment.ID),
				zap.Error(outcome.Err))
		}
	}

	winners, err := s.markTopDecile(ctx, weights.SubjectID, report.Processed())
	if err != nil {
		report.Err = appErrors.WrapAs(appErrors.ErrSubjectFailure, err, "top decile selection")
		log.Error("top decile selection failed", zap.Error(err))
	}
	report.TopDecile = winners

	log.Info("subject processed",
		zap.Int("enrollments", len(enrollments)),
		zap.Int("created", report.Count(models.StudentCreated)),
		zap.Int("updated", report.Count(models.StudentUpdated)),
		zap.Int("skipped", report.Count(models.StudentSkipped)),
		zap.Int("not_computable", report.Count(models.StudentNotComputable)),
		zap.Int("failed", report.Count(models.StudentFailed)),
		zap.Int64s("top_decile", winners))
	return report
}

func (s *IdpService) prepare(ctx context.Context, weights models.SubjectWeights) (subjectPass, []models.Enrollment, error) {
	pass := subjectPass{weights: weights, today: civilDate(s.now().In(s.location))}

	if err := s.validator.Struct(weights); err != nil {
		return pass, nil, appErrors.WrapAs(appErrors.ErrInvalidWeights, err, "invalid indicator weights")
	}

	var enrollments []models.Enrollment
	err := s.timed("fetch_enrollments", func() (err error) {
		enrollments, err = s.enrollments.ListEligibleBySubject(ctx, weights.SubjectID)
		return err
	})
	if err != nil {
		return pass, nil, appErrors.WrapAs(appErrors.ErrSubjectFailure, err, "fetch enrollments")
	}

	err = s.timed("fetch_subject_duration", func() (err error) {
		pass.duration, err = s.subjects.Duration(ctx, weights.SubjectID)
		return err
	})
	if err != nil {
		return pass, nil, appErrors.WrapAs(appErrors.ErrSubjectFailure, err, "fetch subject duration")
	}

	err = s.timed("fetch_required_activity_count", func() (err error) {
		pass.required, err = s.activities.RequiredActivityCount(ctx, weights.SubjectID)
		return err
	})
	if err != nil {
		return pass, nil, appErrors.WrapAs(appErrors.ErrSubjectFailure, err, "fetch required activity count")
	}

	return pass, enrollments, nil
}

// evaluateStudent computes, classifies and persists one enrollment.
func (s *IdpService) evaluateStudent(ctx context.Context, pass subjectPass, enrollment models.Enrollment) models.StudentOutcome {
	outcome := models.StudentOutcome{StudentID: enrollment.StudentID, EnrollmentID: enrollment.ID}

	// Graduates are only re-evaluated on the day they graduate.
	if enrollment.IsGraduated() && (enrollment.GraduationDate == nil || !sameDay(*enrollment.GraduationDate, pass.today)) {
		outcome.Status = models.StudentSkipped
		return outcome
	}

	scores, err := s.computeScores(ctx, pass, enrollment)
	if err != nil {
		outcome.Err = err
		if errors.Is(err, appErrors.ErrPaceUndefined) {
			outcome.Status = models.StudentNotComputable
		} else {
			outcome.Status = models.StudentFailed
		}
		return outcome
	}

	score := AggregateIDP(scores, pass.weights)
	result := &models.IdpResult{
		StudentID:    enrollment.StudentID,
		SubjectID:    pass.weights.SubjectID,
		EnrollmentID: enrollment.ID,
		Score:        score,
		Tier:         TierFor(score),
	}
	result.SetScores(scores)

	var created bool
	err = s.timed("upsert_result", func() (err error) {
		created, err = s.results.Upsert(ctx, result)
		return err
	})
	if err != nil {
		outcome.Status = models.StudentFailed
		outcome.Err = appErrors.WrapAs(appErrors.ErrStudentComputation, err, "persist idp result")
		return outcome
	}

	outcome.Scores = &scores
	outcome.Score = score
	outcome.Tier = result.Tier
	outcome.Status = models.StudentUpdated
	if created {
		outcome.Status = models.StudentCreated
	}
	return outcome
}

func (s *IdpService) computeScores(ctx context.Context, pass subjectPass, enrollment models.Enrollment) (models.IndicatorScores, error) {
	var scores models.IndicatorScores

	ideal, err := IdealDate(enrollment.StartDate, pass.duration)
	if err != nil {
		return scores, err
	}

	var progress *float64
	err = s.timed("fetch_resource_visibility", func() (err error) {
		progress, err = s.activities.ResourceVisibility(ctx, enrollment.StudentID, pass.weights.SubjectID)
		return err
	})
	if err != nil {
		return scores, appErrors.WrapAs(appErrors.ErrStudentComputation, err, "fetch resource visibility")
	}
	var submitted int
	err = s.timed("fetch_submitted_activity_count", func() (err error) {
		submitted, err = s.activities.SubmittedActivityCount(ctx, enrollment.StudentID, pass.weights.SubjectID)
		return err
	})
	if err != nil {
		return scores, appErrors.WrapAs(appErrors.ErrStudentComputation, err, "fetch submitted activity count")
	}

	scores.Visibility = VisibilityScore(progress)
	scores.Submissions = SubmissionScore(submitted, pass.required)
	scores.Pace = PaceScore(ideal, enrollment.GraduationDate, pass.today)
	scores.Inactivity = InactivityScore(inLocation(enrollment.LastLogin, s.location), pass.today)
	return scores, nil
}

// timed runs one gateway call and records its latency under label.
func (s *IdpService) timed(label string, call func() error) error {
	start := time.Now()
	err := call()
	s.metrics.ObserveDBQuery(label, time.Since(start))
	return err
}

// markTopDecile flags the best high-tier students among processed. It only ever sets the flag,
// so students who drop out of the decile on a later run keep it.
func (s *IdpService) markTopDecile(ctx context.Context, subjectID int64, processed []int64) ([]int64, error) {
	if len(processed) == 0 {
		return nil, nil
	}
	var candidates []models.DecileCandidate
	err := s.timed("list_high_tier", func() (err error) {
		candidates, err = s.results.ListHighTier(ctx, subjectID, processed)
		return err
	})
	if err != nil {
		return nil, err
	}
	winners := SelectTopDecile(processed, candidates)
	if len(winners) == 0 {
		return nil, nil
	}
	if err := s.timed("mark_top_decile", func() error {
		return s.results.MarkTopDecile(ctx, subjectID, winners)
	}); err != nil {
		return nil, fmt.Errorf("subject %d: %w", subjectID, err)
	}
	return winners, nil
}
