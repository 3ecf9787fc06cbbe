package reports

import (
	"context"
	"log/slog"
	"time"

	"okr/internal/domain/directory"
	"okr/internal/domain/performance"
)

type ScoreSource interface {
	GetAssessment(ctx context.Context, tenantID, assessmentID string) (performance.Assessment, error)
	FinalScores(ctx context.Context, tenantID, assessmentID string) ([]performance.FinalScore, error)
}

type DirectorySource interface {
	GetUsers(ctx context.Context, tenantID string, userIDs []string) (map[string]directory.User, error)
	ListDepartments(ctx context.Context, tenantID string) ([]directory.Department, error)
}

// CacheObserver receives cache hits and misses.
type CacheObserver func(hit bool)

type Service struct {
	scores    ScoreSource
	directory DirectorySource
	cache     *Cache
	observe   CacheObserver
	now       func() time.Time
}

func NewService(scores ScoreSource, dir DirectorySource, cache *Cache, observe CacheObserver) *Service {
	if observe == nil {
		observe = func(bool) {}
	}
	return &Service{scores: scores, directory: dir, cache: cache, observe: observe, now: time.Now}
}

func (s *Service) AssessmentReport(ctx context.Context, tenantID, assessmentID string) (AssessmentReport, error) {
	version := s.cache.Version(ctx, tenantID, assessmentID)
	if report, ok := s.cache.Get(ctx, tenantID, assessmentID, version); ok {
		s.observe(true)
		return report, nil
	}
	s.observe(false)

	assessment, err := s.scores.GetAssessment(ctx, tenantID, assessmentID)
	if err != nil {
		return AssessmentReport{}, err
	}
	scores, err := s.scores.FinalScores(ctx, tenantID, assessmentID)
	if err != nil {
		return AssessmentReport{}, err
	}
	ids := make([]string, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.EmployeeID)
	}
	users, err := s.directory.GetUsers(ctx, tenantID, ids)
	if err != nil {
		return AssessmentReport{}, err
	}
	deps, err := s.directory.ListDepartments(ctx, tenantID)
	if err != nil {
		return AssessmentReport{}, err
	}
	departments := make(map[string]directory.Department, len(deps))
	for _, dep := range deps {
		departments[dep.ID] = dep
	}

	report := BuildReport(assessment, scores, users, departments, s.now())
	s.cache.Set(ctx, tenantID, version, report)
	return report, nil
}

func (s *Service) AssessmentPDF(ctx context.Context, tenantID, assessmentID string) ([]byte, error) {
	report, err := s.AssessmentReport(ctx, tenantID, assessmentID)
	if err != nil {
		return nil, err
	}
	return RenderPDF(report)
}

// Invalidate drops the cached report after any write to the assessment.
func (s *Service) Invalidate(ctx context.Context, tenantID, assessmentID string) {
	if err := s.cache.Invalidate(ctx, tenantID, assessmentID); err != nil {
		slog.Warn("report cache invalidate failed", "assessmentId", assessmentID, "err", err)
	}
}
