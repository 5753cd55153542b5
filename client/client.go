// Package client is the Go SDK for the learning API. It wraps the REST
// surface, normalizes response envelopes, and drives session flow through
// a small state machine.
package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a failed API call, carrying the server's message when one
// was returned.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// envelope is the server's uniform response shape.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the learning API.
type Client struct {
	http    *resty.Client
	baseURL string

	mu    sync.Mutex
	token string

	healthMu      sync.Mutex
	healthOK      bool
	healthChecked time.Time
}

// healthCacheTTL bounds how often Healthy() re-probes the server.
const healthCacheTTL = 30 * time.Second

// NewClient returns a client for the given base URL.
func NewClient(baseURL string) *Client {
	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(30 * time.Second)

	return &Client{http: http, baseURL: baseURL}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// do runs one request and unwraps the response envelope into out.
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	req := c.http.R().SetHeader("Content-Type", "application/json")

	if token := c.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode(), Message: "malformed response"}
	}

	if resp.StatusCode() >= 400 || !env.Status {
		return &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode(), Message: "malformed response data"}
		}
	}
	return nil
}

// Healthy probes the server's health endpoint, caching the result briefly.
func (c *Client) Healthy() bool {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	if time.Since(c.healthChecked) < healthCacheTTL {
		return c.healthOK
	}

	resp, err := c.http.R().Get("/health")
	c.healthOK = err == nil && resp.StatusCode() == 200
	c.healthChecked = time.Now()
	return c.healthOK
}

// AuthResult is the login and signup payload.
type AuthResult struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"token"`
}

// GuestLogin obtains a guest token and installs it on the client.
func (c *Client) GuestLogin() (*AuthResult, error) {
	var result AuthResult
	if err := c.do("POST", "/auth/guest", nil, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Login authenticates with email or username and installs the token.
func (c *Client) Login(email, username, password string) (*AuthResult, error) {
	body := map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}
	var result AuthResult
	if err := c.do("POST", "/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// StartSessionParams configures a new learning session.
type StartSessionParams struct {
	TopicName       string   `json:"topic_name,omitempty"`
	CustomQuery     string   `json:"custom_query,omitempty"`
	TargetQuestions int      `json:"target_questions,omitempty"`
	AssessmentTypes []string `json:"assessment_types,omitempty"`
}

// StartSessionResult is the session plus its first question.
type StartSessionResult struct {
	Session        SessionInfo     `json:"session"`
	Question       Question        `json:"question"`
	QuestionNumber int             `json:"question_number"`
	AgentStatuses  json.RawMessage `json:"agent_statuses"`
}

// StartSession opens a session on the server.
func (c *Client) StartSession(params StartSessionParams) (*StartSessionResult, error) {
	var raw struct {
		Session        SessionInfo     `json:"session"`
		Question       json.RawMessage `json:"question"`
		QuestionNumber int             `json:"question_number"`
		AgentStatuses  json.RawMessage `json:"agent_statuses"`
	}
	if err := c.do("POST", "/sessions/", params, &raw); err != nil {
		return nil, err
	}

	question, err := TransformQuestion(raw.Question)
	if err != nil {
		return nil, err
	}

	return &StartSessionResult{
		Session:        raw.Session,
		Question:       question,
		QuestionNumber: raw.QuestionNumber,
		AgentStatuses:  raw.AgentStatuses,
	}, nil
}

// NextQuestionResult is a freshly generated question.
type NextQuestionResult struct {
	Question       Question        `json:"question"`
	QuestionNumber int             `json:"question_number"`
	AgentStatuses  json.RawMessage `json:"agent_statuses"`
}

// NextQuestion asks the server for the session's next question.
func (c *Client) NextQuestion(sessionID uint) (*NextQuestionResult, error) {
	var raw struct {
		Question       json.RawMessage `json:"question"`
		QuestionNumber int             `json:"question_number"`
		AgentStatuses  json.RawMessage `json:"agent_statuses"`
	}
	path := fmt.Sprintf("/sessions/%d/question", sessionID)
	if err := c.do("POST", path, nil, &raw); err != nil {
		return nil, err
	}

	question, err := TransformQuestion(raw.Question)
	if err != nil {
		return nil, err
	}

	return &NextQuestionResult{
		Question:       question,
		QuestionNumber: raw.QuestionNumber,
		AgentStatuses:  raw.AgentStatuses,
	}, nil
}

// SubmitParams is a learner answer to the current question.
type SubmitParams struct {
	AssessmentID     uint   `json:"assessment_id"`
	SessionID        uint   `json:"session_id,omitempty"`
	ResponseType     string `json:"response_type,omitempty"`
	ResponseContent  string `json:"response_content,omitempty"`
	SelectedOptionID string `json:"selected_option_id,omitempty"`
	TimeTakenSeconds int    `json:"time_taken_seconds,omitempty"`
}

// SubmitResult carries the grading outcome and feedback.
type SubmitResult struct {
	ResponseID      uint            `json:"response_id"`
	Evaluation      Evaluation      `json:"evaluation"`
	Feedback        Feedback        `json:"feedback"`
	SessionComplete bool            `json:"session_complete"`
	SessionProgress SessionProgress `json:"session_progress"`
}

// SubmitResponse sends an answer for grading.
func (c *Client) SubmitResponse(params SubmitParams) (*SubmitResult, error) {
	var raw struct {
		ResponseID      uint            `json:"response_id"`
		Evaluation      Evaluation      `json:"evaluation"`
		Feedback        json.RawMessage `json:"feedback"`
		SessionComplete bool            `json:"session_complete"`
		SessionProgress SessionProgress `json:"session_progress"`
	}
	if err := c.do("POST", "/assessments/submit", params, &raw); err != nil {
		return nil, err
	}

	return &SubmitResult{
		ResponseID:      raw.ResponseID,
		Evaluation:      TransformEvaluation(raw.Evaluation),
		Feedback:        TransformFeedback(raw.Feedback),
		SessionComplete: raw.SessionComplete,
		SessionProgress: raw.SessionProgress,
	}, nil
}

// CompleteSessionResult is the end-of-session report.
type CompleteSessionResult struct {
	Session SessionInfo     `json:"session"`
	Summary json.RawMessage `json:"summary"`
}

// CompleteSession closes the session on the server.
func (c *Client) CompleteSession(sessionID uint) (*CompleteSessionResult, error) {
	var result CompleteSessionResult
	path := fmt.Sprintf("/sessions/%d/complete", sessionID)
	if err := c.do("PATCH", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
