package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"okr/internal/app/server"
	"okr/internal/domain/performance"
	"okr/internal/platform/config"
	"okr/internal/platform/db"
)

const defaultTemplateName = "Quarterly OKR review"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

type journey struct {
	t      *testing.T
	client *http.Client
	url    string
}

func newJourney(t *testing.T) (*journey, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		Environment:         "test",
		SeedTenantName:      "Test Tenant",
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		SeedDefaultTemplate: true,
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  1000,
		ReportCacheTTL:      time.Minute,
		FetchTimeout:        2 * time.Second,
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := db.Migrate(ctx, pool, "../../../../migrations"); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	app := server.New(cfg, pool, nil)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return &journey{t: t, client: ts.Client(), url: ts.URL}, cfg
}

func TestAssessmentJourney(t *testing.T) {
	j, cfg := newJourney(t)
	admin := j.login(cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	leaderID, leaderToken := j.createUser(admin, "leader", fmt.Sprintf("leader-%d@example.com", suffix), "")
	employeeID, employeeToken := j.createUser(admin, "employee", fmt.Sprintf("employee-%d@example.com", suffix), leaderID)
	_, bossToken := j.createUser(admin, "boss", fmt.Sprintf("boss-%d@example.com", suffix), "")

	tpl := j.defaultTemplate(admin)
	assessmentID := j.createAssessment(admin, tpl.ID, employeeID)
	base := fmt.Sprintf("%s/api/v1/assessments/%s", j.url, assessmentID)

	tasks := j.getList(employeeToken, j.url+"/api/v1/tasks")
	if len(tasks) != 1 {
		t.Fatalf("expected one self task for employee, got %d", len(tasks))
	}

	j.postStatus(employeeToken, base+"/evaluations/"+employeeID+"/self/submit", evaluationBody(tpl, false, 80), http.StatusOK)
	j.postStatus(employeeToken, base+"/evaluations/"+employeeID+"/leader/submit", evaluationBody(tpl, true, 80), http.StatusForbidden)
	j.postStatus(employeeToken, base+"/evaluations/"+employeeID+"/self/submit", evaluationBody(tpl, false, 90), http.StatusConflict)
	j.postStatus(leaderToken, base+"/evaluations/"+employeeID+"/leader/submit", evaluationBody(tpl, true, 70), http.StatusOK)

	stars := map[string]int{}
	for _, category := range tpl.Categories {
		stars[category.ID] = 4
	}
	j.postStatus(bossToken, base+"/evaluations/"+employeeID+"/boss/simplified", map[string]any{"stars": stars}, http.StatusOK)

	var scores []performance.FinalScore
	j.decode(j.getStatus(admin, base+"/final-scores", http.StatusOK), &scores)
	if len(scores) != 1 {
		t.Fatalf("expected one final score, got %d", len(scores))
	}
	if !scores[0].Complete || scores[0].Final == nil {
		t.Fatalf("expected complete final score, got %+v", scores[0])
	}
	if *scores[0].Final < 70 || *scores[0].Final > 85 {
		t.Fatalf("final score %v outside evaluator range", *scores[0].Final)
	}

	j.getStatus(admin, fmt.Sprintf("%s/api/v1/reports/assessments/%s", j.url, assessmentID), http.StatusOK)
	j.getStatus(employeeToken, fmt.Sprintf("%s/api/v1/reports/assessments/%s", j.url, assessmentID), http.StatusForbidden)

	j.postStatus(admin, base+"/close", nil, http.StatusOK)
	j.postStatus(leaderToken, base+"/evaluations/"+employeeID+"/leader/submit", evaluationBody(tpl, true, 70), http.StatusConflict)
}

func TestEmployeeCannotManageTemplates(t *testing.T) {
	j, cfg := newJourney(t)
	admin := j.login(cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	_, employeeToken := j.createUser(admin, "employee", fmt.Sprintf("solo-%d@example.com", time.Now().UnixNano()), "")

	j.getStatus(employeeToken, j.url+"/api/v1/templates/", http.StatusOK)
	j.postStatus(employeeToken, j.url+"/api/v1/templates/", map[string]any{"name": "x"}, http.StatusForbidden)
	j.getStatus(employeeToken, j.url+"/api/v1/audit/", http.StatusForbidden)
}

func evaluationBody(tpl performance.Template, leader bool, score float64) map[string]any {
	var categories []performance.CategoryInput
	for _, category := range tpl.Categories {
		if category.LeaderOnly && !leader {
			continue
		}
		input := performance.CategoryInput{CategoryID: category.ID}
		for _, item := range category.Items {
			input.Items = append(input.Items, performance.ItemInput{ItemID: item.ID, Score: score})
		}
		categories = append(categories, input)
	}
	body := map[string]any{"categories": categories}
	if leader {
		body["feedback"] = "Solid quarter."
	}
	return body
}

func (j *journey) login(email, password string) string {
	j.t.Helper()
	env := j.postStatus("", j.url+"/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload struct {
		Token string `json:"token"`
	}
	j.decode(env, &payload)
	if payload.Token == "" {
		j.t.Fatal("expected token")
	}
	return payload.Token
}

func (j *journey) createUser(token, role, email, leaderID string) (string, string) {
	j.t.Helper()
	const password = "Journey123!"
	env := j.postStatus(token, j.url+"/api/v1/directory/users", map[string]any{
		"email":    email,
		"name":     "Journey " + role,
		"role":     role,
		"leaderId": leaderID,
		"password": password,
	}, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	j.decode(env, &created)
	if created.ID == "" {
		j.t.Fatalf("expected id for %s", role)
	}
	return created.ID, j.login(email, password)
}

func (j *journey) defaultTemplate(token string) performance.Template {
	j.t.Helper()
	var templates []performance.Template
	j.decode(j.getStatus(token, j.url+"/api/v1/templates/", http.StatusOK), &templates)
	for _, tpl := range templates {
		if tpl.Name != defaultTemplateName {
			continue
		}
		var full performance.Template
		j.decode(j.getStatus(token, j.url+"/api/v1/templates/"+tpl.ID, http.StatusOK), &full)
		return full
	}
	j.t.Fatalf("seeded template %q not found", defaultTemplateName)
	return performance.Template{}
}

func (j *journey) createAssessment(token, templateID, employeeID string) string {
	j.t.Helper()
	env := j.postStatus(token, j.url+"/api/v1/assessments/", map[string]any{
		"name":           "Journey review",
		"templateId":     templateID,
		"periodStart":    "2026-01-01",
		"periodEnd":      "2026-03-31",
		"deadline":       time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
		"bossMode":       "simplified",
		"participantIds": []string{employeeID},
	}, http.StatusCreated)
	var created struct {
		ID string `json:"id"`
	}
	j.decode(env, &created)
	return created.ID
}

func (j *journey) getList(token, url string) []map[string]any {
	j.t.Helper()
	var out []map[string]any
	j.decode(j.getStatus(token, url, http.StatusOK), &out)
	return out
}

func (j *journey) decode(env envelope, out any) {
	j.t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		j.t.Fatalf("failed to decode data: %v", err)
	}
}

func (j *journey) postStatus(token, url string, body any, want int) envelope {
	j.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			j.t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		j.t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return j.do(req, token, want)
}

func (j *journey) getStatus(token, url string, want int) envelope {
	j.t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		j.t.Fatalf("failed to create request: %v", err)
	}
	return j.do(req, token, want)
}

func (j *journey) do(req *http.Request, token string, want int) envelope {
	j.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := j.client.Do(req)
	if err != nil {
		j.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		j.t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		j.t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL.Path, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		j.t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
