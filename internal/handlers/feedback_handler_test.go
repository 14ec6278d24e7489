package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/middleware"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/prompts"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories/memory"
)

type fakeProvider struct {
	response json.RawMessage
	err      error
	delay    time.Duration
}

func (p *fakeProvider) GenerateStructured(ctx context.Context, req *llm.StructuredRequest) (*llm.StructuredResponse, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &llm.StructuredResponse{Raw: p.response}, nil
}

func (p *fakeProvider) GetProviderName() string { return "fake" }

type fakePrompts struct{}

func (fakePrompts) BuildPrompt(name, variant string, data map[string]string) (string, error) {
	return "prompt", nil
}
func (fakePrompts) System(name string) string { return "system" }
func (fakePrompts) Templates() []string       { return []string{"feedback"} }

var _ prompts.PromptProvider = fakePrompts{}

func scoringResponse(t *testing.T, variant llm.Variant) json.RawMessage {
	t.Helper()
	categories := make([]map[string]interface{}, 0, 5)
	for _, name := range llm.Categories(variant) {
		categories = append(categories, map[string]interface{}{"name": name, "score": 6.0, "comment": "fine"})
	}
	fixture := map[string]interface{}{
		"totalScore":          6.0,
		"categoryScores":      categories,
		"strengths":           []string{"structure"},
		"areasForImprovement": []string{"depth"},
		"finalAssessment":     "decent showing",
	}
	if variant == llm.VariantCoding {
		fixture["codeReview"] = "works"
	}
	raw, err := json.Marshal(fixture)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return raw
}

type feedbackFixture struct {
	router     *chi.Mux
	behavioral *memory.FeedbackRepo
	interviews *memory.InterviewRepo
}

func newFeedbackFixture(t *testing.T, provider llm.Provider, waitBound time.Duration) *feedbackFixture {
	t.Helper()
	behavioral := memory.NewFeedbackRepo()
	coding := memory.NewCodingFeedbackRepo()
	interviews := memory.NewInterviewRepo()

	generator := feedback.NewGenerator(llm.NewScoringClient(provider), fakePrompts{}, behavioral, coding, zap.NewNop())
	query := feedback.NewQuery(interviews, behavioral)
	handler := NewFeedbackHandler(generator, query, behavioral, waitBound, zap.NewNop())

	router := chi.NewRouter()
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Get("/completed", handler.CompletedHandler)
		r.With(middleware.ValidateRequest[*models.GenerateFeedbackRequest]()).Post("/{interviewId}/feedback", handler.GenerateHandler)
		r.Get("/{interviewId}/feedback", handler.GetHandler)
	})
	return &feedbackFixture{router: router, behavioral: behavioral, interviews: interviews}
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateFeedbackEndpoint(t *testing.T) {
	fixture := newFeedbackFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)}, time.Second)

	body := `{"userId":"user-1","transcript":[{"role":"user","content":"my answer","timestamp":"2025-03-14T01:00:00Z"}]}`
	rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response models.GenerateFeedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.FeedbackID == "" {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Message != "Feedback Added" {
		t.Fatalf("expected Feedback Added, got %q", response.Message)
	}

	// regeneration reports an update
	rec = postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", body)
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Message != "Feedback Updated" {
		t.Fatalf("expected Feedback Updated, got %q", response.Message)
	}
	if fixture.behavioral.Count() != 1 {
		t.Fatalf("expected one stored record, got %d", fixture.behavioral.Count())
	}
}

func TestGenerateFeedbackValidation(t *testing.T) {
	fixture := newFeedbackFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)}, time.Second)

	rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", `{"transcript":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing userId, got %d", rec.Code)
	}

	rec = postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestGenerateFeedbackMissingTranscript(t *testing.T) {
	fixture := newFeedbackFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)}, time.Second)

	rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", `{"userId":"user-1","transcript":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty transcript, got %d", rec.Code)
	}
	var response models.GenerateFeedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Error != "MissingInput" {
		t.Fatalf("expected MissingInput error, got %q", response.Error)
	}
}

func TestGenerateFeedbackPendingOnSlowOracle(t *testing.T) {
	provider := &fakeProvider{
		response: scoringResponse(t, llm.VariantBehavioral),
		delay:    200 * time.Millisecond,
	}
	fixture := newFeedbackFixture(t, provider, 10*time.Millisecond)

	body := `{"userId":"user-1","transcript":[{"role":"user","content":"answer","timestamp":"2025-03-14T01:00:00Z"}]}`
	rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 while generation is pending, got %d", rec.Code)
	}

	// the detached pipeline still lands the record
	deadline := time.Now().Add(2 * time.Second)
	for fixture.behavioral.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("background generation never completed")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestGenerateFeedbackOracleErrors(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{llm.ErrCodeRateLimit, http.StatusTooManyRequests},
		{llm.ErrCodeServiceDown, http.StatusBadGateway},
		{llm.ErrCodeSchemaViolation, http.StatusBadGateway},
	}
	body := `{"userId":"user-1","transcript":[{"role":"user","content":"answer","timestamp":"2025-03-14T01:00:00Z"}]}`

	for _, tc := range cases {
		provider := &fakeProvider{err: &llm.ProviderError{Provider: "fake", Code: tc.code, Message: "boom"}}
		fixture := newFeedbackFixture(t, provider, time.Second)

		rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", body)
		if rec.Code != tc.status {
			t.Fatalf("code %s: expected %d, got %d", tc.code, tc.status, rec.Code)
		}
		if fixture.behavioral.Count() != 0 {
			t.Fatalf("code %s: failed generation must persist nothing", tc.code)
		}
	}
}

func TestGetFeedbackEndpoint(t *testing.T) {
	fixture := newFeedbackFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)}, time.Second)

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/interview-1/feedback?userId=user-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generation, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/interview-1/feedback", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", rec.Code)
	}

	body := `{"userId":"user-1","transcript":[{"role":"user","content":"answer","timestamp":"2025-03-14T01:00:00Z"}]}`
	if rec := postJSON(t, fixture.router, "/api/v1/interviews/interview-1/feedback", body); rec.Code != http.StatusOK {
		t.Fatalf("seed generation failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/interview-1/feedback?userId=user-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after generation, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "decent showing") {
		t.Fatalf("response missing stored assessment: %s", rec.Body.String())
	}
}

func TestCompletedEndpointPartitions(t *testing.T) {
	fixture := newFeedbackFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)}, time.Second)
	ctx := context.Background()

	withFeedback, err := fixture.interviews.Create(ctx, &models.Interview{UserID: "user-1", CreatedAt: "2025-03-14T01:00:00Z"})
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	if err := fixture.interviews.Finalize(ctx, withFeedback, []string{"q"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	without, err := fixture.interviews.Create(ctx, &models.Interview{UserID: "user-1", CreatedAt: "2025-03-14T02:00:00Z"})
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	if err := fixture.interviews.Finalize(ctx, without, []string{"q"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, _, err := fixture.behavioral.Upsert(ctx, &models.Feedback{InterviewID: withFeedback, UserID: "user-1", FinalAssessment: "ok"}); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/completed?userId=user-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response models.CompletedInterviewsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.InterviewsWithFeedback) != 1 || len(response.InterviewsWithoutFeedback) != 1 {
		t.Fatalf("bad partition: %d with, %d without",
			len(response.InterviewsWithFeedback), len(response.InterviewsWithoutFeedback))
	}
}
