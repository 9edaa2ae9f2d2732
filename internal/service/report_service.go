package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-idp-batch/internal/models"
	"github.com/noah-isme/sma-idp-batch/pkg/export"
)

var reportHeaders = []string{
	"subject_id", "student_id", "enrollment_id", "status",
	"visibility", "submissions", "pace", "inactivity",
	"idp_score", "tier", "top_decile", "error",
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Prune(retention time.Duration) ([]string, error)
}

// ReportService renders a finished run into a CSV or PDF file.
type ReportService struct {
	storage   reportStorage
	renderer  export.Renderer
	retention time.Duration
	logger    *zap.Logger
}

// NewReportService constructs a ReportService. A zero retention keeps every report.
func NewReportService(storage reportStorage, renderer export.Renderer, retention time.Duration, logger *zap.Logger) *ReportService {
	if renderer == nil {
		renderer = export.NewCSVExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{storage: storage, renderer: renderer, retention: retention, logger: logger}
}

// Write persists the report and returns the file path.
func (s *ReportService) Write(ctx context.Context, report *models.RunReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nil run report")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title := fmt.Sprintf("IDP run %s (%s)", report.RunID, report.StartedAt.UTC().Format(time.RFC3339))
	content, err := s.renderer.Render(BuildReportDataset(report), title)
	if err != nil {
		return "", fmt.Errorf("render run report: %w", err)
	}

	filename := fmt.Sprintf("idp-run-%s-%s.%s", report.StartedAt.UTC().Format("20060102"), report.RunID, s.renderer.Extension())
	path, err := s.storage.Save(filename, content)
	if err != nil {
		return "", err
	}

	if s.retention > 0 {
		deleted, err := s.storage.Prune(s.retention)
		if err != nil {
			s.logger.Warn("report cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("old reports removed", zap.Strings("files", deleted))
		}
	}
	return path, nil
}

// BuildReportDataset flattens a run into one row per student outcome. A subject that
// failed before evaluating anyone still gets a row carrying its error.
func BuildReportDataset(report *models.RunReport) export.Dataset {
	data := export.Dataset{Headers: reportHeaders}
	for _, subject := range report.Subjects {
		subjectID := strconv.FormatInt(subject.SubjectID, 10)
		if len(subject.Students) == 0 {
			row := map[string]string{"subject_id": subjectID, "status": "subject_failed"}
			if subject.Err == nil {
				row["status"] = "empty"
			} else {
				row["error"] = subject.Err.Error()
			}
			data.Rows = append(data.Rows, row)
			continue
		}

		decile := make(map[int64]struct{}, len(subject.TopDecile))
		for _, id := range subject.TopDecile {
			decile[id] = struct{}{}
		}
		for _, student := range subject.Students {
			row := map[string]string{
				"subject_id":    subjectID,
				"student_id":    strconv.FormatInt(student.StudentID, 10),
				"enrollment_id": strconv.FormatInt(student.EnrollmentID, 10),
				"status":        string(student.Status),
			}
			if student.Scores != nil {
				row["visibility"] = formatScore(student.Scores.Visibility)
				row["submissions"] = formatScore(student.Scores.Submissions)
				row["pace"] = formatScore(student.Scores.Pace)
				row["inactivity"] = formatScore(student.Scores.Inactivity)
			}
			if student.Status.Persisted() {
				row["idp_score"] = formatScore(student.Score)
				row["tier"] = string(student.Tier)
			}
			if _, ok := decile[student.StudentID]; ok {
				row["top_decile"] = "true"
			}
			if student.Err != nil {
				row["error"] = student.Err.Error()
			}
			data.Rows = append(data.Rows, row)
		}
	}
	return data
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
