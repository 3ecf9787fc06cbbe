package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"okr/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const templateColumns = `id, name, description, weights_json, categories_json, created_at, updated_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var tpl Template
	var weightsJSON, categoriesJSON []byte
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &weightsJSON, &categoriesJSON, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal(weightsJSON, &tpl.Weights); err != nil {
		return Template{}, fmt.Errorf("decode template %s weights: %w", tpl.ID, err)
	}
	if err := json.Unmarshal(categoriesJSON, &tpl.Categories); err != nil {
		return Template{}, fmt.Errorf("decode template %s categories: %w", tpl.ID, err)
	}
	return tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+templateColumns+" FROM templates WHERE tenant_id = $1 ORDER BY name", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error) {
	tpl, err := scanTemplate(s.DB.QueryRow(ctx, "SELECT "+templateColumns+" FROM templates WHERE tenant_id = $1 AND id = $2", tenantID, templateID))
	return tpl, notFound(err)
}

func (s *Store) CreateTemplate(ctx context.Context, tenantID string, tpl Template) (string, error) {
	weightsJSON, categoriesJSON, err := encodeTemplate(tpl)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO templates (tenant_id, name, description, weights_json, categories_json)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, tpl.Name, tpl.Description, weightsJSON, categoriesJSON).Scan(&id)
	return id, err
}

func (s *Store) UpdateTemplate(ctx context.Context, tenantID string, tpl Template) error {
	weightsJSON, categoriesJSON, err := encodeTemplate(tpl)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE templates
    SET name = $1, description = $2, weights_json = $3, categories_json = $4, updated_at = now()
    WHERE tenant_id = $5 AND id = $6
  `, tpl.Name, tpl.Description, weightsJSON, categoriesJSON, tenantID, tpl.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, tenantID, templateID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM templates WHERE tenant_id = $1 AND id = $2", tenantID, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TemplateInUse(ctx context.Context, tenantID, templateID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM assessments
    WHERE tenant_id = $1 AND template_id = $2
  `, tenantID, templateID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func encodeTemplate(tpl Template) ([]byte, []byte, error) {
	weightsJSON, err := json.Marshal(tpl.Weights)
	if err != nil {
		return nil, nil, err
	}
	categoriesJSON, err := json.Marshal(tpl.Categories)
	if err != nil {
		return nil, nil, err
	}
	return weightsJSON, categoriesJSON, nil
}

const assessmentColumns = `id, tenant_id, name, template_id, period_start, period_end, deadline, status, boss_mode, created_at`

func scanAssessment(row pgx.Row) (Assessment, error) {
	var a Assessment
	var mode string
	err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.TemplateID, &a.PeriodStart, &a.PeriodEnd, &a.Deadline, &a.Status, &mode, &a.CreatedAt)
	a.BossMode = BossMode(mode)
	return a, err
}

func (s *Store) queryAssessments(ctx context.Context, query string, args ...any) ([]Assessment, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListAssessments(ctx context.Context, tenantID, status string) ([]Assessment, error) {
	query := "SELECT " + assessmentColumns + " FROM assessments WHERE tenant_id = $1"
	args := []any{tenantID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY deadline DESC"
	return s.queryAssessments(ctx, query, args...)
}

func (s *Store) ListActiveAssessments(ctx context.Context) ([]Assessment, error) {
	return s.queryAssessments(ctx, "SELECT "+assessmentColumns+" FROM assessments WHERE status = $1 ORDER BY deadline", AssessmentStatusActive)
}

func (s *Store) GetAssessment(ctx context.Context, tenantID, assessmentID string) (Assessment, error) {
	a, err := scanAssessment(s.DB.QueryRow(ctx, "SELECT "+assessmentColumns+" FROM assessments WHERE tenant_id = $1 AND id = $2", tenantID, assessmentID))
	return a, notFound(err)
}

func (s *Store) CreateAssessment(ctx context.Context, tenantID string, a Assessment, participants []Participant) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO assessments (tenant_id, name, template_id, period_start, period_end, deadline, status, boss_mode)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, tenantID, a.Name, a.TemplateID, a.PeriodStart, a.PeriodEnd, a.Deadline, a.Status, string(a.BossMode)).Scan(&id); err != nil {
		return "", err
	}

	batch := &pgx.Batch{}
	for _, p := range participants {
		batch.Queue(`
      INSERT INTO assessment_participants (assessment_id, employee_id, leader_id)
      VALUES ($1,$2,$3)
    `, id, p.EmployeeID, nullIfEmpty(p.LeaderID))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateAssessmentStatus(ctx context.Context, tenantID, assessmentID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE assessments SET status = $1 WHERE tenant_id = $2 AND id = $3", status, tenantID, assessmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, tenantID, assessmentID string) ([]Participant, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.assessment_id, p.employee_id, COALESCE(p.leader_id::text, '')
    FROM assessment_participants p
    JOIN assessments a ON a.id = p.assessment_id
    WHERE a.tenant_id = $1 AND p.assessment_id = $2
    ORDER BY p.employee_id
  `, tenantID, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.AssessmentID, &p.EmployeeID, &p.LeaderID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetParticipant(ctx context.Context, tenantID, assessmentID, employeeID string) (Participant, error) {
	var p Participant
	err := s.DB.QueryRow(ctx, `
    SELECT p.assessment_id, p.employee_id, COALESCE(p.leader_id::text, '')
    FROM assessment_participants p
    JOIN assessments a ON a.id = p.assessment_id
    WHERE a.tenant_id = $1 AND p.assessment_id = $2 AND p.employee_id = $3
  `, tenantID, assessmentID, employeeID).Scan(&p.AssessmentID, &p.EmployeeID, &p.LeaderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Participant{}, ErrNotParticipant
	}
	return p, err
}

const recordColumns = `id, assessment_id, evaluatee_id, COALESCE(evaluator_id::text, ''), evaluator_type, overall, status, submitted_at, updated_at, categories_json, COALESCE(stars_json, '{}'::jsonb), feedback`

func scanRecord(row pgx.Row) (EvaluationRecord, error) {
	var r EvaluationRecord
	var evaluatorType, status string
	var categoriesJSON, starsJSON []byte
	if err := row.Scan(&r.ID, &r.AssessmentID, &r.EvaluateeID, &r.EvaluatorID, &evaluatorType, &r.Overall, &status, &r.SubmittedAt, &r.UpdatedAt, &categoriesJSON, &starsJSON, &r.Feedback); err != nil {
		return EvaluationRecord{}, err
	}
	r.EvaluatorType = scoring.EvaluatorType(evaluatorType)
	r.Status = scoring.RecordStatus(status)
	if err := json.Unmarshal(categoriesJSON, &r.Categories); err != nil {
		return EvaluationRecord{}, fmt.Errorf("decode record %s categories: %w", r.ID, err)
	}
	if err := json.Unmarshal(starsJSON, &r.Stars); err != nil {
		return EvaluationRecord{}, fmt.Errorf("decode record %s stars: %w", r.ID, err)
	}
	if len(r.Stars) == 0 {
		r.Stars = nil
	}
	return r, nil
}

func (s *Store) ListRecords(ctx context.Context, tenantID, assessmentID, evaluateeID string) ([]EvaluationRecord, error) {
	query := "SELECT " + recordColumns + " FROM evaluation_records WHERE tenant_id = $1 AND assessment_id = $2"
	args := []any{tenantID, assessmentID}
	if evaluateeID != "" {
		query += " AND evaluatee_id = $3"
		args = append(args, evaluateeID)
	}
	query += " ORDER BY evaluatee_id, evaluator_type"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EvaluationRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRecord(ctx context.Context, tenantID, assessmentID, evaluateeID string, evaluator scoring.EvaluatorType) (EvaluationRecord, error) {
	r, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+`
    FROM evaluation_records
    WHERE tenant_id = $1 AND assessment_id = $2 AND evaluatee_id = $3 AND evaluator_type = $4
  `, tenantID, assessmentID, evaluateeID, string(evaluator)))
	return r, notFound(err)
}

// UpsertRecord writes the record for (assessment, evaluatee, evaluator type).
// Rows that are no longer drafts are left untouched.
func (s *Store) UpsertRecord(ctx context.Context, tenantID string, r EvaluationRecord) (string, error) {
	categoriesJSON, err := json.Marshal(r.Categories)
	if err != nil {
		return "", err
	}
	var starsJSON []byte
	if len(r.Stars) > 0 {
		if starsJSON, err = json.Marshal(r.Stars); err != nil {
			return "", err
		}
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_records (tenant_id, assessment_id, evaluatee_id, evaluator_id, evaluator_type, overall, status, submitted_at, categories_json, stars_json, feedback)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    ON CONFLICT (assessment_id, evaluatee_id, evaluator_type) DO UPDATE
    SET evaluator_id = EXCLUDED.evaluator_id,
        overall = EXCLUDED.overall,
        status = EXCLUDED.status,
        submitted_at = EXCLUDED.submitted_at,
        categories_json = EXCLUDED.categories_json,
        stars_json = EXCLUDED.stars_json,
        feedback = EXCLUDED.feedback,
        updated_at = now()
    WHERE evaluation_records.status = 'draft'
    RETURNING id
  `, tenantID, r.AssessmentID, r.EvaluateeID, nullIfEmpty(r.EvaluatorID), string(r.EvaluatorType), r.Overall, string(r.Status), r.SubmittedAt, categoriesJSON, starsJSON, r.Feedback).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRecordSubmitted
	}
	return id, err
}

func (s *Store) CompleteRecords(ctx context.Context, tenantID, assessmentID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE evaluation_records
    SET status = 'completed', updated_at = now()
    WHERE tenant_id = $1 AND assessment_id = $2 AND status = 'submitted'
  `, tenantID, assessmentID)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
