package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"kanguru-service/internal/app"
	"kanguru-service/internal/domain"
	"kanguru-service/internal/validator"
)

// APIHandler serves the JSON endpoints around the live test session.
type APIHandler struct {
	auth     *app.AuthService
	tests    *app.TestService
	results  *app.ResultService
	practice *app.PracticeService
	tips     *app.TipService
	log      zerolog.Logger
}

func NewAPIHandler(auth *app.AuthService, tests *app.TestService, results *app.ResultService, practice *app.PracticeService, tips *app.TipService, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		auth:     auth,
		tests:    tests,
		results:  results,
		practice: practice,
		tips:     tips,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/accounts", h.createAccount)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("GET /api/profile", h.profile)
	mux.HandleFunc("GET /api/topics", h.topics)
	mux.HandleFunc("GET /api/tips", h.listTips)
	mux.HandleFunc("GET /api/tests", h.listTests)
	mux.HandleFunc("GET /api/practice", h.practiceQuestions)
	mux.HandleFunc("POST /api/practice/answer", h.practiceAnswer)
	mux.HandleFunc("GET /api/results", h.listResults)
}

type createAccountRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=40"`
}

type createAccountResponse struct {
	UID string `json:"uid"`
	PIN string `json:"pin"`
}

type loginRequest struct {
	PIN string `json:"pin" validate:"required,numeric,len=4"`
}

type loginResponse struct {
	UID     string             `json:"uid"`
	Profile domain.UserProfile `json:"profile"`
}

type practiceAnswerRequest struct {
	UID        string `json:"uid" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer" validate:"required,oneof=A B C D E"`
}

type fieldErrors struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (h *APIHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if fields := validator.Bind(r, &req); fields != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors{Error: "validation failed", Fields: fields})
		return
	}
	uid, pin, err := h.auth.CreateAccount(r.Context(), req.DisplayName)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info().Str("uid", uid).Msg("account created")
	writeJSON(w, http.StatusCreated, createAccountResponse{UID: uid, PIN: pin})
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if fields := validator.Bind(r, &req); fields != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors{Error: "validation failed", Fields: fields})
		return
	}
	identity, err := h.auth.Login(r.Context(), req.PIN)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{UID: identity.UID, Profile: identity.Profile})
}

func (h *APIHandler) profile(w http.ResponseWriter, r *http.Request) {
	identity, err := h.auth.Identify(r.Context(), r.URL.Query().Get("uid"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identity.Profile)
}

func (h *APIHandler) topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tips.Topics())
}

func (h *APIHandler) listTips(w http.ResponseWriter, r *http.Request) {
	tips, err := h.tips.Tips(domain.Topic(r.URL.Query().Get("topic")))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tips)
}

func (h *APIHandler) listTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.tests.ListTests(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (h *APIHandler) practiceQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.practice.Questions(domain.Topic(r.URL.Query().Get("topic")))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *APIHandler) practiceAnswer(w http.ResponseWriter, r *http.Request) {
	var req practiceAnswerRequest
	if fields := validator.Bind(r, &req); fields != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors{Error: "validation failed", Fields: fields})
		return
	}
	if _, err := h.auth.Identify(r.Context(), req.UID); err != nil {
		h.fail(w, err)
		return
	}
	feedback, err := h.practice.CheckAnswer(r.Context(), req.UID, req.QuestionID, domain.AnswerOption(req.Answer))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (h *APIHandler) listResults(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if _, err := h.auth.Identify(r.Context(), uid); err != nil {
		h.fail(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "limit must be a number"})
			return
		}
		limit = n
	}
	results, err := h.results.List(r.Context(), uid, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	writeError(w, err)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPINNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidTopic),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrUnknownScoringModel):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotRunning):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPINExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
