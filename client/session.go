package client

import (
	"errors"
	"fmt"
	"sync"
)

// State is the session flow state.
type State string

const (
	StateIdle            State = "idle"
	StateSessionStarting State = "session_starting"
	StateQuestionActive  State = "question_active"
	StateSubmitting      State = "submitting"
	StateFeedbackShown   State = "feedback_shown"
	StateSessionComplete State = "session_complete"
)

var (
	// ErrNoActiveQuestion is returned by Submit when there is nothing to
	// answer. No request is sent in that case.
	ErrNoActiveQuestion = errors.New("no active question to submit against")

	// ErrInvalidTransition is returned when an operation does not apply
	// to the current state.
	ErrInvalidTransition = errors.New("operation not valid in current state")
)

// SessionManager drives one learning session through its lifecycle:
//
//	Idle -> SessionStarting -> QuestionActive -> Submitting ->
//	FeedbackShown -> (QuestionActive | SessionComplete)
//
// All methods are safe for concurrent use.
type SessionManager struct {
	mu     sync.Mutex
	client *Client

	state          State
	sessionID      uint
	totalQuestions int
	questionNumber int
	current        *Question

	answered    int
	correct     int
	totalScore  float64
	allFeedback []Feedback
	lastResult  *SubmitResult
}

// NewSessionManager returns a manager in the Idle state.
func NewSessionManager(c *Client) *SessionManager {
	return &SessionManager{client: c, state: StateIdle}
}

// Start opens a new session, resetting all counters from any previous
// one, and activates the first question.
func (m *SessionManager) Start(params StartSessionParams) (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateSessionStarting || m.state == StateSubmitting {
		return nil, ErrInvalidTransition
	}

	m.state = StateSessionStarting
	m.sessionID = 0
	m.totalQuestions = 0
	m.questionNumber = 0
	m.current = nil
	m.answered = 0
	m.correct = 0
	m.totalScore = 0
	m.allFeedback = nil
	m.lastResult = nil

	result, err := m.client.StartSession(params)
	if err != nil {
		m.state = StateIdle
		return nil, err
	}

	m.sessionID = result.Session.ID
	m.totalQuestions = result.Session.TargetQuestions
	m.questionNumber = 1
	question := result.Question
	m.current = &question
	m.state = StateQuestionActive

	return &question, nil
}

// Submit sends an answer for the active question. With no active question
// it fails locally without touching the network.
func (m *SessionManager) Submit(responseContent, selectedOptionID string, timeTakenSeconds int) (*SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateQuestionActive || m.current == nil {
		return nil, ErrNoActiveQuestion
	}

	m.state = StateSubmitting
	result, err := m.client.SubmitResponse(SubmitParams{
		AssessmentID:     m.current.ID,
		SessionID:        m.sessionID,
		ResponseContent:  responseContent,
		SelectedOptionID: selectedOptionID,
		TimeTakenSeconds: timeTakenSeconds,
	})
	if err != nil {
		m.state = StateQuestionActive
		return nil, err
	}

	m.answered++
	if result.Evaluation.IsCorrect {
		m.correct++
	}
	m.totalScore += result.Evaluation.Score
	if len(m.allFeedback) < m.totalQuestions {
		m.allFeedback = append(m.allFeedback, result.Feedback)
	}
	m.lastResult = result
	m.current = nil

	if result.SessionComplete || m.answered >= m.totalQuestions {
		m.state = StateSessionComplete
	} else {
		m.state = StateFeedbackShown
	}
	return result, nil
}

// Next fetches the following question after feedback was shown. The
// question number advances by exactly one per call.
func (m *SessionManager) Next() (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateFeedbackShown {
		return nil, ErrInvalidTransition
	}

	result, err := m.client.NextQuestion(m.sessionID)
	if err != nil {
		return nil, err
	}

	m.questionNumber++
	question := result.Question
	m.current = &question
	m.state = StateQuestionActive

	return &question, nil
}

// Complete closes the session on the server and returns its summary.
func (m *SessionManager) Complete() (*CompleteSessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateFeedbackShown && m.state != StateSessionComplete {
		return nil, ErrInvalidTransition
	}
	if m.sessionID == 0 {
		return nil, fmt.Errorf("no session to complete")
	}

	result, err := m.client.CompleteSession(m.sessionID)
	if err != nil {
		return nil, err
	}

	m.state = StateSessionComplete
	return result, nil
}

// Reset abandons the current flow and returns the manager to Idle. It is
// purely local; an unfinished server session is reaped by the server's
// stale-session maintenance.
func (m *SessionManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateIdle
	m.sessionID = 0
	m.totalQuestions = 0
	m.questionNumber = 0
	m.current = nil
	m.answered = 0
	m.correct = 0
	m.totalScore = 0
	m.allFeedback = nil
	m.lastResult = nil
}

// State returns the current flow state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentQuestion returns the active question, or nil when none.
func (m *SessionManager) CurrentQuestion() *Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	question := *m.current
	return &question
}

// QuestionNumber is the 1-based number of the active or last question.
func (m *SessionManager) QuestionNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.questionNumber
}

// Progress reports answered and correct counts plus the score so far.
func (m *SessionManager) Progress() (answered, correct, total int, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answered, m.correct, m.totalQuestions, m.totalScore
}

// AllFeedback returns feedback for every answered question, in order.
func (m *SessionManager) AllFeedback() []Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	feedback := make([]Feedback, len(m.allFeedback))
	copy(feedback, m.allFeedback)
	return feedback
}

// LastResult returns the most recent submission result, or nil.
func (m *SessionManager) LastResult() *SubmitResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}
