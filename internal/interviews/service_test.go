package interviews

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories/memory"
)

type scriptedProvider struct {
	responses []json.RawMessage
	errs      []error
	calls     int
}

func (p *scriptedProvider) GenerateStructured(ctx context.Context, req *llm.StructuredRequest) (*llm.StructuredResponse, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	return &llm.StructuredResponse{Raw: p.responses[i]}, nil
}

func (p *scriptedProvider) GetProviderName() string { return "scripted" }

type fixedPrompts struct{}

func (fixedPrompts) BuildPrompt(name, variant string, data map[string]string) (string, error) {
	return name + "/" + variant, nil
}
func (fixedPrompts) System(name string) string { return "system" }
func (fixedPrompts) Templates() []string       { return []string{"interview"} }

func TestCreateFromConversation(t *testing.T) {
	provider := &scriptedProvider{
		responses: []json.RawMessage{
			json.RawMessage(`{"role":"Backend Engineer","level":"Senior","type":"Technical","techstack":["Go","Postgres"],"amount":3}`),
			json.RawMessage(`{"questions":["Q1","Q2","Q3"]}`),
		},
	}
	repo := memory.NewInterviewRepo()
	svc := NewService(provider, fixedPrompts{}, repo, zap.NewNop())

	interview, err := svc.CreateFromConversation(context.Background(), "I want a senior Go interview", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !interview.Finalized {
		t.Fatal("returned interview must be finalized")
	}
	if interview.Level != models.LevelSenior || interview.Type != models.InterviewTypeTechnical {
		t.Fatalf("details not carried over: %s / %s", interview.Level, interview.Type)
	}
	if len(interview.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(interview.Questions))
	}

	stored, err := repo.GetByID(context.Background(), interview.ID.Hex())
	if err != nil {
		t.Fatalf("interview not stored: %v", err)
	}
	if !stored.Finalized {
		t.Fatal("stored interview must be finalized")
	}
}

func TestCreateFromConversationNormalizesDetails(t *testing.T) {
	provider := &scriptedProvider{
		responses: []json.RawMessage{
			json.RawMessage(`{"role":"Engineer","level":"Rockstar","type":"Casual","amount":0}`),
			json.RawMessage(`{"questions":["Q1"]}`),
		},
	}
	svc := NewService(provider, fixedPrompts{}, memory.NewInterviewRepo(), zap.NewNop())

	interview, err := svc.CreateFromConversation(context.Background(), "chat", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interview.Level != models.LevelMid {
		t.Fatalf("invalid level must default to %s, got %s", models.LevelMid, interview.Level)
	}
	if interview.Type != models.InterviewTypeMixed {
		t.Fatalf("invalid type must default to %s, got %s", models.InterviewTypeMixed, interview.Type)
	}
	if interview.Techstack == nil {
		t.Fatal("techstack must default to an empty slice")
	}
}

func TestQuestionFailureLeavesInterviewUnfinalized(t *testing.T) {
	provider := &scriptedProvider{
		responses: []json.RawMessage{
			json.RawMessage(`{"role":"Engineer","level":"Junior","type":"Technical","amount":2}`),
			nil,
		},
		errs: []error{
			nil,
			&llm.ProviderError{Provider: "scripted", Code: llm.ErrCodeServiceDown, Message: "503"},
		},
	}
	repo := memory.NewInterviewRepo()
	svc := NewService(provider, fixedPrompts{}, repo, zap.NewNop())

	_, err := svc.CreateFromConversation(context.Background(), "chat", "user-1")
	if llm.CodeOf(err) != llm.ErrCodeServiceDown {
		t.Fatalf("expected provider error, got %v", err)
	}

	// the draft exists but must stay hidden from listings
	list, err := repo.ListFinalizedByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatal("unfinalized interview leaked into listing")
	}
}

func TestCreateFromConversationRejectsBadJSON(t *testing.T) {
	provider := &scriptedProvider{
		responses: []json.RawMessage{json.RawMessage("sounds great!")},
	}
	svc := NewService(provider, fixedPrompts{}, memory.NewInterviewRepo(), zap.NewNop())

	_, err := svc.CreateFromConversation(context.Background(), "chat", "user-1")
	if llm.CodeOf(err) != llm.ErrCodeSchemaViolation {
		t.Fatalf("expected schema violation, got %v", err)
	}
	if !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("unexpected error message: %v", err)
	}
}
