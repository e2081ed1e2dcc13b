package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"kanguru-service/internal/domain"
)

func TestAccountAndLogin(t *testing.T) {
	env := newTestEnv(t)

	var created createAccountResponse
	resp := postJSON(t, env, "/api/accounts", map[string]any{"displayName": "Alice"}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created.UID == "" || len(created.PIN) != 4 {
		t.Fatalf("unexpected account %+v", created)
	}

	var login loginResponse
	resp = postJSON(t, env, "/api/login", map[string]any{"pin": created.PIN}, &login)
	if resp.StatusCode != http.StatusOK || login.UID != created.UID || login.Profile.DisplayName != "Alice" {
		t.Fatalf("unexpected login %d %+v", resp.StatusCode, login)
	}

	var profile domain.UserProfile
	resp = getJSON(t, env, "/api/profile?uid="+created.UID, &profile)
	if resp.StatusCode != http.StatusOK || len(profile.PracticeProgress) != len(domain.Topics) {
		t.Fatalf("unexpected profile %d %+v", resp.StatusCode, profile)
	}
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"unknown pin", map[string]any{"pin": "1000"}, http.StatusUnauthorized},
		{"short pin", map[string]any{"pin": "12"}, http.StatusBadRequest},
		{"missing pin", map[string]any{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, env, "/api/login", tc.body, nil)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var tests []domain.TestSummary
	if resp := getJSON(t, env, "/api/tests", &tests); resp.StatusCode != http.StatusOK || len(tests) == 0 {
		t.Fatalf("unexpected tests %d %+v", resp.StatusCode, tests)
	}

	var topics []domain.TopicMeta
	if resp := getJSON(t, env, "/api/topics", &topics); resp.StatusCode != http.StatusOK || len(topics) != len(domain.Topics) {
		t.Fatalf("unexpected topics %d %+v", resp.StatusCode, topics)
	}

	var tips []domain.Tip
	getJSON(t, env, "/api/tips?topic=logic", &tips)
	for _, tip := range tips {
		if tip.Topic != domain.TopicLogic {
			t.Fatalf("unexpected tip topic %s", tip.Topic)
		}
	}
	if resp := getJSON(t, env, "/api/tips?topic=chemistry", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown topic, got %d", resp.StatusCode)
	}

	var questions []map[string]any
	getJSON(t, env, "/api/practice?topic=counting", &questions)
	if len(questions) == 0 {
		t.Fatalf("expected practice questions")
	}
	for _, q := range questions {
		if _, leaked := q["correctAnswer"]; leaked {
			t.Fatalf("practice question leaks its answer: %v", q)
		}
	}
}

func TestPracticeAnswerUpdatesProfile(t *testing.T) {
	env := newTestEnv(t)
	var created createAccountResponse
	postJSON(t, env, "/api/accounts", map[string]any{"displayName": "Kim"}, &created)

	var feedback struct {
		Correct       bool   `json:"correct"`
		CorrectAnswer string `json:"correctAnswer"`
		Solution      string `json:"solution"`
	}
	resp := postJSON(t, env, "/api/practice/answer", map[string]any{
		"uid": created.UID, "questionId": "p-logic-1", "answer": "B",
	}, &feedback)
	if resp.StatusCode != http.StatusOK || !feedback.Correct || feedback.CorrectAnswer != "B" || feedback.Solution == "" {
		t.Fatalf("unexpected feedback %d %+v", resp.StatusCode, feedback)
	}

	var profile domain.UserProfile
	getJSON(t, env, "/api/profile?uid="+created.UID, &profile)
	if profile.Stats.TotalPracticeQuestions != 1 || profile.Stats.CorrectPracticeAnswers != 1 || profile.Stats.CurrentStreak != 1 {
		t.Fatalf("unexpected stats %+v", profile.Stats)
	}
	if got := profile.PracticeProgress[domain.TopicLogic]; len(got) != 1 || got[0] != "p-logic-1" {
		t.Fatalf("unexpected progress %v", got)
	}

	resp = postJSON(t, env, "/api/practice/answer", map[string]any{
		"uid": created.UID, "questionId": "nope", "answer": "A",
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown question, got %d", resp.StatusCode)
	}
}

func TestResultsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	var created createAccountResponse
	postJSON(t, env, "/api/accounts", map[string]any{"displayName": "Lee"}, &created)

	var results []domain.TestResult
	resp := getJSON(t, env, "/api/results?uid="+created.UID, &results)
	if resp.StatusCode != http.StatusOK || results == nil || len(results) != 0 {
		t.Fatalf("expected empty list, got %d %+v", resp.StatusCode, results)
	}

	if resp := getJSON(t, env, "/api/results?uid="+created.UID+"&limit=abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
	if resp := getJSON(t, env, "/api/results?uid=ghost", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", domain.ErrTestNotFound), http.StatusNotFound},
		{domain.ErrPINNotFound, http.StatusUnauthorized},
		{domain.ErrOptionNotFound, http.StatusBadRequest},
		{domain.ErrSessionNotRunning, http.StatusConflict},
		{domain.ErrPINExhausted, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func postJSON(t *testing.T, env *testEnv, path string, body any, dst any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(env.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	decode(t, resp, dst)
	return resp
}

func getJSON(t *testing.T, env *testEnv, path string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(env.server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	decode(t, resp, dst)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if dst == nil || resp.StatusCode >= 300 {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
