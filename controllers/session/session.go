package sessionController

import (
	"encoding/json"
	"log"
	"time"

	"edusynapse/agents"
	"edusynapse/database"
	"edusynapse/middleware"
	"edusynapse/models"
	"edusynapse/services"
	sessionValidator "edusynapse/validators/session"

	"github.com/gofiber/fiber/v2"
)

// StartSession opens a learning session and generates its first question.
func StartSession(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedSession").(*sessionValidator.StartSessionRequest)

	db := database.Database.Db

	profile, err := getOrCreateProfile(userID)
	if err != nil {
		log.Printf("Error resolving learner profile: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve learner profile!", nil)
	}

	topicName := reqData.TopicName
	isCustom := false
	if topicName == "" {
		topicName = reqData.CustomQuery
		isCustom = true
	}

	targetQuestions := reqData.TargetQuestions
	if targetQuestions == 0 {
		targetQuestions = 10
	}
	assessmentTypes := reqData.AssessmentTypes
	if len(assessmentTypes) == 0 {
		assessmentTypes = []string{models.QuestionMCQ, models.QuestionFillInBlank, models.QuestionEssay}
	}

	now := time.Now()
	session := models.LearningSession{
		UserID:            userID,
		TopicID:           reqData.TopicID,
		TopicName:         topicName,
		IsCustomTopic:     isCustom,
		CustomQuery:       reqData.CustomQuery,
		TargetQuestions:   targetQuestions,
		AssessmentTypes:   models.MustJSON(assessmentTypes),
		Status:            models.SessionActive,
		CurrentDifficulty: profile.CurrentDifficulty,
		StartedAt:         now,
		LastActivityAt:    now,
	}
	if err := db.Create(&session).Error; err != nil {
		log.Printf("Error creating session: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start session!", nil)
	}

	query := reqData.CustomQuery
	if query == "" {
		query = topicName
	}

	pctx := buildPipelineContext(&session, profile)
	result := agents.RunQuestionPipeline(query, pctx)

	assessment, err := persistQuestion(result.Question, topicName)
	if err != nil {
		log.Printf("Error persisting generated question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate question!", nil)
	}

	session.LastAgentOutput = models.MustJSON(result)
	db.Save(&session)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Session started successfully.", fiber.Map{
		"session":         session,
		"question":        questionPayload(assessment),
		"question_number": session.QuestionsAnswered + 1,
		"agent_statuses":  result.AgentStatuses,
	})
}

// NextQuestion runs the pipeline for the session's next question.
func NextQuestion(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	session, err := activeSession(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Active session not found!", nil)
	}

	if session.QuestionsAnswered >= session.TargetQuestions {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Session already reached its question target!", nil)
	}

	profile, err := getOrCreateProfile(userID)
	if err != nil {
		log.Printf("Error resolving learner profile: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve learner profile!", nil)
	}

	query := session.CustomQuery
	if query == "" {
		query = session.TopicName
	}

	pctx := buildPipelineContext(session, profile)
	result := agents.RunQuestionPipeline(query, pctx)

	assessment, err := persistQuestion(result.Question, session.TopicName)
	if err != nil {
		log.Printf("Error persisting generated question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate question!", nil)
	}

	session.LastAgentOutput = models.MustJSON(result)
	session.LastActivityAt = time.Now()
	db.Save(session)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question generated successfully.", fiber.Map{
		"question":        questionPayload(assessment),
		"question_number": session.QuestionsAnswered + 1,
		"agent_statuses":  result.AgentStatuses,
	})
}

// SubmitInput records a free-form learner input (text, voice or diagram)
// against the session.
func SubmitInput(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedInput").(*sessionValidator.SubmitInputRequest)

	db := database.Database.Db

	session, err := activeSession(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Active session not found!", nil)
	}

	if err := services.ValidateInput(reqData.InputType, reqData.Content); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	processed := services.ProcessInput(reqData.InputType, reqData.Content)

	session.AppendInteraction(models.SessionInteraction{
		Timestamp:        time.Now(),
		InputType:        reqData.InputType,
		InputContent:     truncateForLog(reqData.Content),
		ProcessedContent: processed,
	})
	session.LastActivityAt = time.Now()
	db.Save(session)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Input processed successfully.", fiber.Map{
		"processed_content": processed,
	})
}

// PauseSession suspends an active session.
func PauseSession(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	session, err := sessionByID(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}
	if session.Status != models.SessionActive {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only active sessions can be paused!", nil)
	}

	session.Status = models.SessionPaused
	session.LastActivityAt = time.Now()
	db.Save(session)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session paused.", session)
}

// ResumeSession reactivates a paused session.
func ResumeSession(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	session, err := sessionByID(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}
	if session.Status != models.SessionPaused {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only paused sessions can be resumed!", nil)
	}

	session.Status = models.SessionActive
	session.LastActivityAt = time.Now()
	db.Save(session)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session resumed.", session)
}

// CompleteSession closes a session and returns the summary report.
func CompleteSession(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	session, err := sessionByID(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}
	// A session that completed on its final answer already rolled up its
	// stats; completing it again just returns the summary.
	if session.Status == models.SessionCompleted {
		summary := agents.SummarizeSession(session, session.InteractionList())
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Session completed.", fiber.Map{
			"session": session,
			"summary": summary,
		})
	}

	now := time.Now()
	session.Status = models.SessionCompleted
	session.CompletedAt = &now
	session.LastActivityAt = now
	session.TotalDurationSeconds = int(now.Sub(session.StartedAt).Seconds())
	db.Save(session)

	summary := agents.SummarizeSession(session, session.InteractionList())

	if err := RollUpSessionStats(userID, session); err != nil {
		log.Printf("Error rolling up session stats: %v", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session completed.", fiber.Map{
		"session": session,
		"summary": summary,
	})
}

// SessionList returns the user's sessions with pagination.
func SessionList(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedSessionList").(*struct {
		Page   int    `query:"page"`
		Limit  int    `query:"limit"`
		Status string `query:"status"`
	})

	db := database.Database.Db

	tx := db.Where("user_id = ? AND is_deleted = false", userID)
	if reqData.Status != "" {
		tx = tx.Where("status = ?", reqData.Status)
	}

	var total int64
	tx.Model(&models.LearningSession{}).Count(&total)

	var sessions []models.LearningSession
	if err := tx.Order("started_at DESC").
		Offset((reqData.Page - 1) * reqData.Limit).
		Limit(reqData.Limit).
		Find(&sessions).Error; err != nil {
		log.Printf("Error fetching sessions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sessions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sessions fetched successfully.", fiber.Map{
		"sessions": sessions,
		"total":    total,
		"page":     reqData.Page,
		"limit":    reqData.Limit,
	})
}

// SessionDetail returns one session with its interaction history.
func SessionDetail(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	session, err := sessionByID(userID, c.Params("id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully.", fiber.Map{
		"session":      session,
		"interactions": session.InteractionList(),
	})
}

func sessionByID(userID uint, idParam string) (*models.LearningSession, error) {
	var session models.LearningSession
	err := database.Database.Db.
		Where("id = ? AND user_id = ? AND is_deleted = false", idParam, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func activeSession(userID uint, idParam string) (*models.LearningSession, error) {
	session, err := sessionByID(userID, idParam)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, fiber.ErrConflict
	}
	return session, nil
}

func getOrCreateProfile(userID uint) (*models.LearnerProfile, error) {
	db := database.Database.Db

	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err == nil {
		return &profile, nil
	}

	profile = models.LearnerProfile{
		UserID:        userID,
		LearningStyle: models.MustJSON(models.DefaultLearningStyle()),
	}
	if err := db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// buildPipelineContext snapshots the learner state the agents need.
func buildPipelineContext(session *models.LearningSession, profile *models.LearnerProfile) *agents.PipelineContext {
	return &agents.PipelineContext{
		UserID:              session.UserID,
		SessionID:           session.ID,
		Topic:               session.TopicName,
		IsCustomTopic:       session.IsCustomTopic,
		CustomQuery:         session.CustomQuery,
		Modality:            "text",
		RecentAccuracy:      profile.RecentAccuracy(10),
		StreakDays:          profile.CurrentStreakDays,
		Weaknesses:          models.StringList(profile.Weaknesses),
		KnowledgeGaps:       models.StringList(profile.KnowledgeGaps),
		PerformanceWindow:   profile.Window(),
		RecentQuestionTypes: recentQuestionTypes(session.UserID, 5),
		PreviouslyAsked:     askedQuestionTexts(session.ID),
	}
}

// askedQuestionTexts lists question texts already served in this session.
func askedQuestionTexts(sessionID uint) []string {
	db := database.Database.Db

	var responses []models.AssessmentResponse
	if err := db.Select("assessment_id").
		Where("session_id = ? AND is_deleted = false", sessionID).
		Find(&responses).Error; err != nil {
		return nil
	}

	texts := make([]string, 0, len(responses))
	for _, response := range responses {
		var assessment models.Assessment
		if err := db.Select("question_text").
			Where("id = ?", response.AssessmentID).
			First(&assessment).Error; err != nil {
			continue
		}
		texts = append(texts, assessment.QuestionText)
	}
	return texts
}

// recentQuestionTypes lists the types of the user's latest answered
// questions, oldest first.
func recentQuestionTypes(userID uint, limit int) []string {
	db := database.Database.Db

	var responses []models.AssessmentResponse
	if err := db.Where("user_id = ? AND is_deleted = false", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&responses).Error; err != nil {
		return nil
	}

	types := make([]string, 0, len(responses))
	for i := len(responses) - 1; i >= 0; i-- {
		var assessment models.Assessment
		if err := db.Select("question_type").
			Where("id = ?", responses[i].AssessmentID).
			First(&assessment).Error; err != nil {
			continue
		}
		types = append(types, assessment.QuestionType)
	}
	return types
}

// persistQuestion stores a generated question as an Assessment row.
func persistQuestion(question agents.GeneratedQuestion, topicName string) (*models.Assessment, error) {
	generatedBy := "agent_pipeline"
	if question.IsFallback {
		generatedBy = "template_fallback"
	}

	assessment := models.Assessment{
		TopicName:         topicName,
		QuestionType:      question.QuestionType,
		QuestionText:      question.QuestionText,
		QuestionContext:   question.QuestionContext,
		Options:           models.MustJSON(question.Options),
		BlankAnswer:       question.BlankAnswer,
		AcceptableAnswers: models.MustJSON(question.AcceptableAnswers),
		ModelAnswer:       question.ModelAnswer,
		Rubric:            models.MustJSON(question.Rubric),
		Difficulty:        question.Difficulty,
		Points:            question.Points,
		TimeLimitSeconds:  question.TimeLimitSeconds,
		Concepts:          models.MustJSON(question.Concepts),
		GeneratedBy:       generatedBy,
		SourceContentIDs:  models.MustJSON(question.SourceContentIDs),
	}
	if err := database.Database.Db.Create(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

// questionPayload shapes an assessment for the client, hiding answers.
func questionPayload(assessment *models.Assessment) fiber.Map {
	options := []fiber.Map{}
	for _, option := range assessment.OptionList() {
		options = append(options, fiber.Map{
			"id":   option.ID,
			"text": option.Text,
		})
	}

	return fiber.Map{
		"id":                 assessment.ID,
		"topic_name":         assessment.TopicName,
		"question_type":      assessment.QuestionType,
		"question_text":      assessment.QuestionText,
		"question_context":   assessment.QuestionContext,
		"options":            options,
		"difficulty":         assessment.Difficulty,
		"points":             assessment.Points,
		"time_limit_seconds": assessment.TimeLimitSeconds,
		"is_fallback":        assessment.GeneratedBy == "template_fallback",
	}
}

// RollUpSessionStats folds a completed session into user and profile
// totals. Runs exactly once per session, at the moment it completes.
func RollUpSessionStats(userID uint, session *models.LearningSession) error {
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}
	user.TotalSessions++
	user.TotalQuestionsAnswered += session.QuestionsAnswered
	user.TotalStudyTimeMinutes += session.TotalDurationSeconds / 60
	if err := db.Save(&user).Error; err != nil {
		return err
	}

	profile, err := getOrCreateProfile(userID)
	if err != nil {
		return err
	}

	now := time.Now()
	if profile.LastActivityAt == nil || !sameDay(*profile.LastActivityAt, now) {
		profile.CurrentStreakDays++
		if profile.CurrentStreakDays > profile.LongestStreakDays {
			profile.LongestStreakDays = profile.CurrentStreakDays
		}
	}
	profile.LastActivityAt = &now
	profile.TotalStudyTimeMinutes += session.TotalDurationSeconds / 60
	profile.OverallMastery = services.MasteryLevel(
		profile.TotalQuestionsAttempted, profile.TotalQuestionsCorrect)

	summary := agents.SummarizeSession(session, session.InteractionList())
	profile.LastSessionPerformance = models.MustJSON(summary)
	if len(summary.ImprovementAreas) > 0 {
		profile.KnowledgeGaps = models.MustJSON(mergeUnique(
			models.StringList(profile.KnowledgeGaps), summary.ImprovementAreas, 10))
	}
	if len(summary.Strengths) > 0 {
		profile.Strengths = models.MustJSON(mergeUnique(
			models.StringList(profile.Strengths), summary.Strengths, 10))
	}

	if session.IsCustomTopic {
		recordCustomTopic(profile, session, now)
	}

	return db.Save(profile).Error
}

// recordCustomTopic upserts the session's custom topic into the profile.
func recordCustomTopic(profile *models.LearnerProfile, session *models.LearningSession, now time.Time) {
	var topics []models.CustomTopic
	if len(profile.CustomTopics) > 0 {
		_ = json.Unmarshal(profile.CustomTopics, &topics)
	}

	found := false
	for i := range topics {
		if topics[i].Name == session.TopicName {
			topics[i].SessionsCompleted++
			topics[i].LastStudied = &now
			found = true
			break
		}
	}
	if !found {
		topics = append(topics, models.CustomTopic{
			Name:              session.TopicName,
			Query:             session.CustomQuery,
			SessionsCompleted: 1,
			LastStudied:       &now,
		})
	}

	profile.CustomTopics = models.MustJSON(topics)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func mergeUnique(existing, incoming []string, max int) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, item := range existing {
		if !seen[item] {
			seen[item] = true
			merged = append(merged, item)
		}
	}
	for _, item := range incoming {
		if !seen[item] {
			seen[item] = true
			merged = append(merged, item)
		}
	}
	if len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

func truncateForLog(content string) string {
	if len(content) > 500 {
		return content[:500]
	}
	return content
}
