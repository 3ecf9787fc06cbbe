package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"okr/internal/domain/scoring"
)

type fakeStore struct {
	templates    map[string]Template
	assessments  map[string]Assessment
	participants map[string][]Participant
	records      map[string]EvaluationRecord
	inUse        map[string]bool
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates:    map[string]Template{},
		assessments:  map[string]Assessment{},
		participants: map[string][]Participant{},
		records:      map[string]EvaluationRecord{},
		inUse:        map[string]bool{},
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func recordKey(assessmentID, evaluateeID string, evaluator scoring.EvaluatorType) string {
	return assessmentID + "/" + evaluateeID + "/" + string(evaluator)
}

func (f *fakeStore) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	var out []Template
	for _, tpl := range f.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, tenantID, templateID string) (Template, error) {
	tpl, ok := f.templates[templateID]
	if !ok {
		return Template{}, ErrNotFound
	}
	return tpl, nil
}

func (f *fakeStore) CreateTemplate(ctx context.Context, tenantID string, tpl Template) (string, error) {
	tpl.ID = f.id("tpl")
	f.templates[tpl.ID] = tpl
	return tpl.ID, nil
}

func (f *fakeStore) UpdateTemplate(ctx context.Context, tenantID string, tpl Template) error {
	f.templates[tpl.ID] = tpl
	return nil
}

func (f *fakeStore) DeleteTemplate(ctx context.Context, tenantID, templateID string) error {
	if _, ok := f.templates[templateID]; !ok {
		return ErrNotFound
	}
	delete(f.templates, templateID)
	return nil
}

func (f *fakeStore) TemplateInUse(ctx context.Context, tenantID, templateID string) (bool, error) {
	return f.inUse[templateID], nil
}

func (f *fakeStore) ListAssessments(ctx context.Context, tenantID, status string) ([]Assessment, error) {
	var out []Assessment
	for _, a := range f.assessments {
		if a.TenantID == tenantID && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListActiveAssessments(ctx context.Context) ([]Assessment, error) {
	var out []Assessment
	for _, a := range f.assessments {
		if a.Status == AssessmentStatusActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetAssessment(ctx context.Context, tenantID, assessmentID string) (Assessment, error) {
	a, ok := f.assessments[assessmentID]
	if !ok || a.TenantID != tenantID {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) CreateAssessment(ctx context.Context, tenantID string, a Assessment, participants []Participant) (string, error) {
	a.ID = f.id("asm")
	a.TenantID = tenantID
	f.assessments[a.ID] = a
	for _, p := range participants {
		p.AssessmentID = a.ID
		f.participants[a.ID] = append(f.participants[a.ID], p)
	}
	return a.ID, nil
}

func (f *fakeStore) UpdateAssessmentStatus(ctx context.Context, tenantID, assessmentID, status string) error {
	a, ok := f.assessments[assessmentID]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	f.assessments[assessmentID] = a
	return nil
}

func (f *fakeStore) ListParticipants(ctx context.Context, tenantID, assessmentID string) ([]Participant, error) {
	return f.participants[assessmentID], nil
}

func (f *fakeStore) GetParticipant(ctx context.Context, tenantID, assessmentID, employeeID string) (Participant, error) {
	for _, p := range f.participants[assessmentID] {
		if p.EmployeeID == employeeID {
			return p, nil
		}
	}
	return Participant{}, ErrNotParticipant
}

func (f *fakeStore) ListRecords(ctx context.Context, tenantID, assessmentID, evaluateeID string) ([]EvaluationRecord, error) {
	var out []EvaluationRecord
	for _, r := range f.records {
		if r.AssessmentID == assessmentID && (evaluateeID == "" || r.EvaluateeID == evaluateeID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetRecord(ctx context.Context, tenantID, assessmentID, evaluateeID string, evaluator scoring.EvaluatorType) (EvaluationRecord, error) {
	r, ok := f.records[recordKey(assessmentID, evaluateeID, evaluator)]
	if !ok {
		return EvaluationRecord{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) UpsertRecord(ctx context.Context, tenantID string, r EvaluationRecord) (string, error) {
	key := recordKey(r.AssessmentID, r.EvaluateeID, r.EvaluatorType)
	if existing, ok := f.records[key]; ok {
		if existing.Submitted() {
			return "", ErrRecordSubmitted
		}
		r.ID = existing.ID
	} else {
		r.ID = f.id("rec")
	}
	f.records[key] = r
	return r.ID, nil
}

func (f *fakeStore) CompleteRecords(ctx context.Context, tenantID, assessmentID string) error {
	for key, r := range f.records {
		if r.AssessmentID == assessmentID && r.Status == scoring.RecordStatusSubmitted {
			r.Status = scoring.RecordStatusCompleted
			f.records[key] = r
		}
	}
	return nil
}

type fakeDirectory map[string]string

func (d fakeDirectory) LeaderOf(ctx context.Context, tenantID, userID string) (string, error) {
	return d[userID], nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
