package http

import (
	"encoding/json"
	"log"
	"net/http"

	"wisdom-quiz-service/internal/app"
	"wisdom-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID  string  `json:"questionId"`
	OptionIndex *int    `json:"optionIndex"` // null means skipped/timed out
	TimeTaken   float64 `json:"timeTaken"`
	Lifeline    string  `json:"lifeline,omitempty"`
}

type lifelinePayload struct {
	QuestionID string `json:"questionId"`
	Kind       string `json:"kind"`
}

// questionView is the client-safe projection of a shuffled question. It
// deliberately omits the correct index and the canonical option order:
// nothing that identifies the answer of an unsolved question may leave the
// server.
type questionView struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Options         []string `json:"options"` // shuffled order
	Difficulty      int      `json:"difficulty"`
	OrderIndex      int      `json:"orderIndex"`
	TimePerQuestion float64  `json:"timePerQuestion"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	participantID := r.URL.Query().Get("participantId")
	displayName := r.URL.Query().Get("name")
	if quizID == "" || participantID == "" || displayName == "" {
		http.Error(w, "missing quizId, participantId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	joined, questions, err := h.service.Join(r.Context(), quizID, participantID, displayName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), quizID, participantID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Queue the handshake frames before the forwarder starts so clients
	// always see joined and questions ahead of any leaderboard update.
	send <- outboundMessage[any]{Type: "joined", Payload: joined}
	send <- outboundMessage[any]{Type: "questions", Payload: h.questionViews(questions)}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			optionIndex := domain.NoShuffled
			if payload.OptionIndex != nil {
				optionIndex = domain.ShuffledIndex(*payload.OptionIndex)
			}
			lifelineUsed := domain.LifelineNone
			if payload.Lifeline != "" {
				lifelineUsed = domain.Lifeline(payload.Lifeline)
			}
			result, lb, err := h.service.SubmitAnswer(r.Context(), quizID, participantID, domain.AnswerSubmission{
				QuestionID:  payload.QuestionID,
				OptionIndex: optionIndex,
				TimeTaken:   payload.TimeTaken,
				Lifeline:    lifelineUsed,
			})
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: lb}
		case "lifeline":
			var payload lifelinePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid lifeline payload"}}
				continue
			}
			result, err := h.service.UseLifeline(r.Context(), quizID, participantID, payload.QuestionID, domain.Lifeline(payload.Kind))
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "lifelineResult", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) questionViews(questions []domain.ShuffledQuestion) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, sq := range questions {
		views = append(views, questionView{
			ID:              sq.ID,
			Prompt:          sq.Prompt,
			Options:         sq.ShuffledOptions,
			Difficulty:      sq.Difficulty,
			OrderIndex:      sq.OrderIndex,
			TimePerQuestion: h.service.TimePerQuestion(),
		})
	}
	return views
}
