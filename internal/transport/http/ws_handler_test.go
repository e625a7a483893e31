package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wisdom-quiz-service/internal/app"
	"wisdom-quiz-service/internal/domain"
	"wisdom-quiz-service/internal/infra/memory"
	"wisdom-quiz-service/internal/shuffle"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	store := memory.NewSessionStore()
	questionRepo := memory.NewQuestionRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewQuizService(store, questionRepo, memory.NewAnswerStore(), shuffle.NewShuffler(nil), nil, 30)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	return server, server.Close
}

func dial(t *testing.T, server *httptest.Server, participantID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?quizId=quiz-1&participantId=" + participantID + "&name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWebSocketAnswerFlow(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, server, "p1")
	defer conn.Close()

	// Expect joined then questions.
	if typ, _ := readNext(conn, t, "joined"); typ != "joined" {
		t.Fatalf("expected joined, got %s", typ)
	}
	typ, raw := readNext(conn, t, "questions")
	if typ != "questions" {
		t.Fatalf("expected questions, got %s", typ)
	}

	var views []struct {
		ID         string   `json:"id"`
		Options    []string `json:"options"`
		Difficulty int      `json:"difficulty"`
	}
	if err := json.Unmarshal(raw, &views); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(views) != 1 || len(views[0].Options) != domain.OptionCount {
		t.Fatalf("expected one 4-option question view, got %+v", views)
	}

	// Find the shuffled position of the known correct option text.
	correctIdx := -1
	for i, opt := range views[0].Options {
		if opt == "4" {
			correctIdx = i
		}
	}
	if correctIdx < 0 {
		t.Fatalf("correct option text missing from shuffled view: %+v", views[0].Options)
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId":  views[0].ID,
			"optionIndex": correctIdx,
			"timeTaken":   12,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	answerSeen := false
	leaderboardSeen := false
	for i := 0; i < 3; i++ {
		typ, raw := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			answerSeen = true
			var result domain.AnswerResult
			if err := json.Unmarshal(raw, &result); err != nil {
				t.Fatalf("decode answer result: %v", err)
			}
			if !result.Correct || result.PointsEarned == 0 {
				t.Fatalf("expected scored correct answer, got %+v", result)
			}
		case "leaderboard":
			leaderboardSeen = true
		}
		if answerSeen && leaderboardSeen {
			break
		}
	}
	if !answerSeen || !leaderboardSeen {
		t.Fatalf("expected answerResult and leaderboard, got answerResult=%v leaderboard=%v", answerSeen, leaderboardSeen)
	}
}

func TestWebSocketQuestionViewHidesAnswer(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, server, "p2")
	defer conn.Close()

	readNext(conn, t, "joined")
	_, raw := readNext(conn, t, "questions")

	var views []map[string]any
	if err := json.Unmarshal(raw, &views); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	for _, view := range views {
		for _, leaky := range []string{"correctOption", "shuffledCorrectOption", "originalOrderIndex"} {
			if _, ok := view[leaky]; ok {
				t.Fatalf("question view leaks %s: %+v", leaky, view)
			}
		}
	}
}

func TestWebSocketLifelineFlow(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, server, "p3")
	defer conn.Close()

	readNext(conn, t, "joined")
	_, raw := readNext(conn, t, "questions")
	var views []struct {
		ID      string   `json:"id"`
		Options []string `json:"options"`
	}
	if err := json.Unmarshal(raw, &views); err != nil {
		t.Fatalf("decode questions: %v", err)
	}

	msg := map[string]any{
		"type": "lifeline",
		"payload": map[string]any{
			"questionId": views[0].ID,
			"kind":       "cards",
		},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write lifeline: %v", err)
	}

	raw = readUntil(conn, t, "lifelineResult")
	var result domain.LifelineResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode lifeline result: %v", err)
	}
	if len(result.EliminatedOptions) != 2 {
		t.Fatalf("expected 2 eliminated options, got %+v", result)
	}
	for _, idx := range result.EliminatedOptions {
		if views[0].Options[idx] == "4" {
			t.Fatalf("lifeline eliminated the correct option: %+v", result)
		}
	}

	// Cards is single-use; a second request comes back as an error frame.
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write lifeline again: %v", err)
	}
	raw = readUntil(conn, t, "error")
	var errPayload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &errPayload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if errPayload.Message != domain.ErrLifelineUsed.Error() {
		t.Fatalf("expected lifeline reuse rejection, got %q", errPayload.Message)
	}
}

// readUntil skips interleaved leaderboard frames, which the subscription
// forwarder may emit at any time, and fails on any other unexpected type.
func readUntil(conn *websocket.Conn, t *testing.T, want string) json.RawMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, raw := readNext(conn, t, "")
		if typ == want {
			return raw
		}
		if typ != "leaderboard" {
			t.Fatalf("expected type %s, got %s", want, typ)
		}
	}
	t.Fatalf("no %s frame within 10 reads", want)
	return nil
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5", "22"},
					CorrectOption: 1,
					Difficulty:    2,
					OrderIndex:    0,
				},
			},
		},
	}
}
