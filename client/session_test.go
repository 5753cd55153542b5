package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeAPI simulates the server side of a session: fixed question target,
// every submitted answer graded correct.
type fakeAPI struct {
	target     int
	answered   int
	questionID int
	requests   atomic.Int64
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	write := func(w http.ResponseWriter, status int, ok bool, message string, data interface{}) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  ok,
			"message": message,
			"data":    data,
		})
	}

	question := func() map[string]interface{} {
		f.questionID++
		return map[string]interface{}{
			"id":            f.questionID,
			"topic_name":    "algebra",
			"question_type": "mcq",
			"question_text": fmt.Sprintf("Question %d", f.questionID),
			"options": []map[string]string{
				{"id": "A", "text": "right"},
				{"id": "B", "text": "wrong"},
			},
			"difficulty":         "medium",
			"points":             10,
			"time_limit_seconds": 90,
		}
	}

	mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		switch {
		case r.Method == "POST" && r.URL.Path == "/sessions/":
			write(w, http.StatusCreated, true, "Session started successfully.", map[string]interface{}{
				"session": map[string]interface{}{
					"ID":               1,
					"topic_name":       "algebra",
					"target_questions": f.target,
					"status":           "active",
				},
				"question":        question(),
				"question_number": 1,
			})
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/question"):
			write(w, http.StatusOK, true, "Question generated successfully.", map[string]interface{}{
				"question":        question(),
				"question_number": f.answered + 1,
			})
		case r.Method == "PATCH" && strings.HasSuffix(r.URL.Path, "/complete"):
			write(w, http.StatusOK, true, "Session completed.", map[string]interface{}{
				"session": map[string]interface{}{"ID": 1, "status": "completed"},
				"summary": map[string]interface{}{"accuracy_percent": 100},
			})
		default:
			write(w, http.StatusNotFound, false, "Not found!", nil)
		}
	})

	mux.HandleFunc("/assessments/submit", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.answered++

		write(w, http.StatusOK, true, "Response evaluated successfully.", map[string]interface{}{
			"response_id": f.answered,
			"evaluation": map[string]interface{}{
				"is_correct": true,
				"score":      10,
				"max_score":  10,
			},
			"feedback": map[string]interface{}{
				"summary": "Excellent work!",
			},
			"session_complete": f.answered >= f.target,
			"session_progress": map[string]interface{}{
				"questions_answered": f.answered,
				"target_questions":   f.target,
			},
		})
	})

	return mux
}

func newFakeSession(t *testing.T, target int) (*fakeAPI, *SessionManager) {
	t.Helper()

	api := &fakeAPI{target: target}
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	return api, NewSessionManager(NewClient(server.URL))
}

func TestSessionThreeQuestionFlow(t *testing.T) {
	api, manager := newFakeSession(t, 3)

	if manager.State() != StateIdle {
		t.Fatalf("initial state = %q", manager.State())
	}

	question, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 3})
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if manager.State() != StateQuestionActive {
		t.Fatalf("state after start = %q", manager.State())
	}
	if question == nil || manager.QuestionNumber() != 1 {
		t.Fatalf("first question number = %d, want 1", manager.QuestionNumber())
	}

	for i := 1; i <= 3; i++ {
		if manager.QuestionNumber() != i {
			t.Fatalf("question number = %d, want %d", manager.QuestionNumber(), i)
		}

		result, err := manager.Submit("", "A", 10)
		if err != nil {
			t.Fatalf("Submit() %d failed: %v", i, err)
		}
		if !result.Evaluation.IsCorrect {
			t.Fatalf("submission %d graded incorrect", i)
		}

		if i < 3 {
			if manager.State() != StateFeedbackShown {
				t.Fatalf("state after submit %d = %q, want feedback_shown", i, manager.State())
			}
			if _, err := manager.Next(); err != nil {
				t.Fatalf("Next() failed: %v", err)
			}
			if manager.State() != StateQuestionActive {
				t.Fatalf("state after next = %q", manager.State())
			}
		}
	}

	// Completion lands exactly when answered equals the target.
	if manager.State() != StateSessionComplete {
		t.Fatalf("final state = %q, want session_complete", manager.State())
	}

	answered, correct, total, score := manager.Progress()
	if answered != 3 || correct != 3 || total != 3 || score != 30 {
		t.Errorf("progress = %d/%d of %d, score %v", answered, correct, total, score)
	}

	feedback := manager.AllFeedback()
	if len(feedback) != 3 {
		t.Errorf("got %d feedback entries, want 3", len(feedback))
	}
	if len(feedback) > total {
		t.Errorf("feedback count %d exceeds question target %d", len(feedback), total)
	}

	if api.answered != 3 {
		t.Errorf("server saw %d submissions, want 3", api.answered)
	}
}

func TestSubmitWithoutQuestionIsLocal(t *testing.T) {
	api, manager := newFakeSession(t, 3)

	_, err := manager.Submit("", "A", 5)
	if !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("err = %v, want ErrNoActiveQuestion", err)
	}

	if got := api.requests.Load(); got != 0 {
		t.Errorf("server received %d requests, want 0", got)
	}
	if manager.State() != StateIdle {
		t.Errorf("state = %q, want idle", manager.State())
	}
}

func TestSubmitAfterCompletionIsLocal(t *testing.T) {
	api, manager := newFakeSession(t, 1)

	if _, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 1}); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := manager.Submit("", "A", 5); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if manager.State() != StateSessionComplete {
		t.Fatalf("state = %q, want session_complete", manager.State())
	}

	before := api.requests.Load()
	if _, err := manager.Submit("", "A", 5); !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("err = %v, want ErrNoActiveQuestion", err)
	}
	if api.requests.Load() != before {
		t.Error("submit after completion reached the network")
	}
}

func TestStartResetsCounters(t *testing.T) {
	_, manager := newFakeSession(t, 3)

	if _, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 3}); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := manager.Submit("", "A", 5); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	answered, _, _, _ := manager.Progress()
	if answered != 1 {
		t.Fatalf("answered = %d, want 1", answered)
	}

	if _, err := manager.Start(StartSessionParams{TopicName: "geometry", TargetQuestions: 3}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	answered, correct, _, score := manager.Progress()
	if answered != 0 || correct != 0 || score != 0 {
		t.Errorf("counters not reset: %d/%d score %v", answered, correct, score)
	}
	if len(manager.AllFeedback()) != 0 {
		t.Error("feedback not reset on restart")
	}
	if manager.QuestionNumber() != 1 {
		t.Errorf("question number = %d, want 1", manager.QuestionNumber())
	}
	if manager.State() != StateQuestionActive {
		t.Errorf("state = %q, want question_active", manager.State())
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	api, manager := newFakeSession(t, 3)

	if _, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 3}); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := manager.Submit("", "A", 5); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	before := api.requests.Load()
	manager.Reset()

	if api.requests.Load() != before {
		t.Error("Reset() reached the network")
	}
	if manager.State() != StateIdle {
		t.Errorf("state = %q, want idle", manager.State())
	}
	if manager.CurrentQuestion() != nil || manager.LastResult() != nil {
		t.Error("question or result survived reset")
	}

	answered, correct, total, score := manager.Progress()
	if answered != 0 || correct != 0 || total != 0 || score != 0 {
		t.Errorf("counters not cleared: %d/%d of %d, score %v", answered, correct, total, score)
	}

	if _, err := manager.Start(StartSessionParams{TopicName: "geometry", TargetQuestions: 3}); err != nil {
		t.Fatalf("start after reset failed: %v", err)
	}
}

func TestNextOnlyAfterFeedback(t *testing.T) {
	_, manager := newFakeSession(t, 3)

	if _, err := manager.Next(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Next() from idle: err = %v, want ErrInvalidTransition", err)
	}

	if _, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 3}); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := manager.Next(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Next() with active question: err = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteSessionCall(t *testing.T) {
	_, manager := newFakeSession(t, 2)

	if _, err := manager.Start(StartSessionParams{TopicName: "algebra", TargetQuestions: 2}); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if _, err := manager.Submit("", "A", 5); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	// Learner bails out after one question.
	result, err := manager.Complete()
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if result == nil || manager.State() != StateSessionComplete {
		t.Errorf("state = %q, want session_complete", manager.State())
	}
}

func TestAPIErrorSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Session is not active!",
		})
	}))
	defer server.Close()

	manager := NewSessionManager(NewClient(server.URL))

	_, err := manager.Start(StartSessionParams{TopicName: "algebra"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "Session is not active!" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if manager.State() != StateIdle {
		t.Errorf("state after failed start = %q, want idle", manager.State())
	}
}
