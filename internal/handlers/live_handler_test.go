package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/assembler"
	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories/memory"
)

type liveFixture struct {
	server     *httptest.Server
	behavioral *memory.FeedbackRepo
	coding     *memory.CodingFeedbackRepo
	interviews *memory.CodingInterviewRepo
}

func newLiveFixture(t *testing.T, provider llm.Provider) *liveFixture {
	t.Helper()
	behavioral := memory.NewFeedbackRepo()
	coding := memory.NewCodingFeedbackRepo()
	interviews := memory.NewCodingInterviewRepo()
	generator := feedback.NewGenerator(llm.NewScoringClient(provider), fakePrompts{}, behavioral, coding, zap.NewNop())
	handler := NewLiveHandler(generator, interviews, zap.NewNop())

	router := chi.NewRouter()
	router.Get("/api/v1/interviews/{interviewId}/live", handler.BehavioralHandler)
	router.Get("/api/v1/coding/interviews/{interviewId}/live", handler.CodingHandler)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &liveFixture{server: server, behavioral: behavioral, coding: coding, interviews: interviews}
}

func dialWS(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvents(t *testing.T, conn *websocket.Conn, events []assembler.Event) {
	t.Helper()
	for _, event := range events {
		if err := conn.WriteJSON(event); err != nil {
			t.Fatalf("write event: %v", err)
		}
	}
}

func readFeedbackReply(t *testing.T, conn *websocket.Conn) models.GenerateFeedbackResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var response models.GenerateFeedbackResponse
	if err := conn.ReadJSON(&response); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return response
}

func TestBehavioralLiveSession(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)})
	conn := dialWS(t, fixture.server, "/api/v1/interviews/interview-1/live?userId=user-1")

	sendEvents(t, conn, []assembler.Event{
		{Type: assembler.EventFragment, Role: "assistant", Content: "Tell me about yourself"},
		{Type: assembler.EventSpeechEnd},
		{Type: assembler.EventFragment, Role: "user", Content: "I am"},
		{Type: assembler.EventFragment, Role: "user", Content: "I am a backend engineer"},
		{Type: assembler.EventSpeechEnd},
		{Type: assembler.EventCallEnd},
	})

	reply := readFeedbackReply(t, conn)
	if !reply.Success {
		t.Fatalf("expected successful generation, got %+v", reply)
	}

	stored, err := fixture.behavioral.GetByKey(context.Background(), "interview-1", "user-1")
	if err != nil {
		t.Fatalf("feedback not stored: %v", err)
	}
	if stored.FinalAssessment == "" {
		t.Fatal("stored feedback has no assessment")
	}
}

func TestBehavioralLiveSessionEmptyTranscript(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)})
	conn := dialWS(t, fixture.server, "/api/v1/interviews/interview-1/live?userId=user-1")

	sendEvents(t, conn, []assembler.Event{{Type: assembler.EventCallEnd}})

	reply := readFeedbackReply(t, conn)
	if reply.Success || reply.Error != "MissingInput" {
		t.Fatalf("expected MissingInput for empty session, got %+v", reply)
	}
	if fixture.behavioral.Count() != 0 {
		t.Fatal("empty session must not persist feedback")
	}
}

func TestCodingLiveSessionCompletesInterview(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantCoding)})

	id, err := fixture.interviews.Create(context.Background(), &models.CodingInterview{
		Company:   "google",
		UserID:    "user-1",
		Question:  models.Question{Title: "Two Sum"},
		Code:      "return pairs",
		CreatedAt: "2025-03-14T01:00:00Z",
	})
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}

	conn := dialWS(t, fixture.server, "/api/v1/coding/interviews/"+id+"/live?userId=user-1")
	sendEvents(t, conn, []assembler.Event{
		{Type: assembler.EventFragment, Role: "user", Content: "I will use a map"},
		{Type: assembler.EventCallEnd},
	})

	reply := readFeedbackReply(t, conn)
	if !reply.Success {
		t.Fatalf("expected successful generation, got %+v", reply)
	}

	stored, err := fixture.interviews.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("read interview: %v", err)
	}
	if stored.CompletedAt == "" {
		t.Fatal("live session end must complete the interview")
	}
	if len(stored.Transcript) != 1 {
		t.Fatalf("transcript not saved, got %d turns", len(stored.Transcript))
	}

	record, err := fixture.coding.GetByKey(context.Background(), id, "user-1")
	if err != nil {
		t.Fatalf("coding feedback not stored: %v", err)
	}
	if record.CodeReview == "" {
		t.Fatal("missing code review in stored feedback")
	}
}

func TestCodingLiveSessionUnknownInterview(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{})

	wsURL := "ws" + strings.TrimPrefix(fixture.server.URL, "http") + "/api/v1/coding/interviews/missing/live?userId=user-1"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown interview")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 handshake rejection, got %+v", resp)
	}
}

func TestLiveSessionRejectsOversizedMessage(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{response: scoringResponse(t, llm.VariantBehavioral)})
	conn := dialWS(t, fixture.server, "/api/v1/interviews/interview-1/live?userId=user-1")

	payload := []byte(strings.Repeat("a", maxEventBytes+1))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("write oversized message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
		t.Fatalf("expected message-too-big close, got %v", err)
	}
	if fixture.behavioral.Count() != 0 {
		t.Fatal("oversized session must not persist feedback")
	}
}

func TestLiveSessionRequiresUserID(t *testing.T) {
	fixture := newLiveFixture(t, &fakeProvider{})

	wsURL := "ws" + strings.TrimPrefix(fixture.server.URL, "http") + "/api/v1/interviews/interview-1/live"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without userId")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 handshake rejection, got %+v", resp)
	}
}
