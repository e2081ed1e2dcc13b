package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"kanguru-service/internal/app"
	"kanguru-service/internal/domain"
)

const commandTimeout = 5 * time.Second

type WSHandler struct {
	tests    *app.TestService
	auth     *app.AuthService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(tests *app.TestService, auth *app.AuthService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		tests: tests,
		auth:  auth,
		log:   log.With().Str("component", "ws").Logger(),
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

type startPayload struct {
	TestID string `json:"testId"`
}

type selectPayload struct {
	Index  int                  `json:"index"`
	Answer *domain.AnswerOption `json:"answer"`
}

type timeSpentPayload struct {
	Index   int `json:"index"`
	Seconds int `json:"seconds"`
}

type navigatePayload struct {
	Index int `json:"index"`
}

type finishPayload struct {
	Model string `json:"model"`
}

type fullscreenPayload struct {
	Active bool `json:"active"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and attaches them to the
// caller's test session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		http.Error(w, "missing uid", http.StatusBadRequest)
		return
	}
	if _, err := h.auth.Identify(r.Context(), uid); err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("uid", uid).Logger()
	runner := h.tests.Open(uid)
	updates, cancel := runner.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		var lastResult string
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: snap}}
				if snap.Result != nil && snap.Result.ID != "" && snap.Result.ID != lastResult {
					lastResult = snap.Result.ID
					msgs = append(msgs, outboundMessage[any]{Type: "results", Payload: *snap.Result})
				}
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
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
		ctx, cancelCmd := context.WithTimeout(r.Context(), commandTimeout)
		err := h.handle(ctx, uid, inbound)
		cancelCmd()
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	// A dropped connection counts as leaving fullscreen.
	ctx, cancelPause := context.WithTimeout(context.Background(), commandTimeout)
	if err := runner.SetFullscreen(ctx, false); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		log.Warn().Err(err).Msg("pausing session on disconnect failed")
	}
	cancelPause()

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, uid string, msg inboundMessage) error {
	switch msg.Type {
	case "start":
		var p startPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return h.tests.StartTest(ctx, uid, p.TestID)
	case "reset":
		return h.tests.Open(uid).Reset(ctx)
	}

	runner, err := h.tests.Session(uid)
	if err != nil {
		return err
	}

	switch msg.Type {
	case "select":
		var p selectPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return runner.SelectAnswer(ctx, p.Index, p.Answer)
	case "timeSpent":
		var p timeSpentPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return runner.UpdateTimeSpent(ctx, p.Index, p.Seconds)
	case "navigate":
		var p navigatePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return runner.Navigate(ctx, p.Index)
	case "review":
		return runner.GoToReview(ctx)
	case "finish":
		var p finishPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		scoring, err := h.tests.Scoring(p.Model)
		if err != nil {
			return err
		}
		return runner.Finish(ctx, scoring)
	case "fullscreen":
		var p fullscreenPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return runner.SetFullscreen(ctx, p.Active)
	default:
		return errors.New("unsupported message type")
	}
}

var errInvalidPayload = errors.New("invalid payload")

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errInvalidPayload
	}
	return nil
}
