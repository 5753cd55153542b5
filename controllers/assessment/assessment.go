package assessmentController

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"edusynapse/agents"
	sessionController "edusynapse/controllers/session"
	"edusynapse/database"
	"edusynapse/middleware"
	"edusynapse/models"
	"edusynapse/services"
	assessmentValidator "edusynapse/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

// SubmitResponse grades a learner answer, stores the response and its
// feedback, and advances session and profile state.
func SubmitResponse(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedResponse").(*assessmentValidator.SubmitResponseRequest)

	db := database.Database.Db

	var assessment models.Assessment
	if err := db.Where("id = ? AND is_deleted = false", reqData.AssessmentID).First(&assessment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	var session *models.LearningSession
	if reqData.SessionID != 0 {
		var s models.LearningSession
		if err := db.Where("id = ? AND user_id = ? AND is_deleted = false", reqData.SessionID, userID).
			First(&s).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		}
		if s.Status != models.SessionActive {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Session is not active!", nil)
		}
		session = &s
	}

	processed := services.ProcessInput(reqData.ResponseType, reqData.ResponseContent)
	eval := agents.EvaluateAndRecommend(&assessment, processed, reqData.SelectedOptionID)

	now := time.Now()
	response := models.AssessmentResponse{
		UserID:                   userID,
		SessionID:                reqData.SessionID,
		AssessmentID:             assessment.ID,
		ResponseType:             reqData.ResponseType,
		ResponseContent:          processed,
		RawInput:                 reqData.ResponseContent,
		SelectedOptionID:         reqData.SelectedOptionID,
		IsCorrect:                eval.IsCorrect,
		Score:                    eval.Score,
		MaxScore:                 eval.MaxScore,
		ConceptualUnderstanding:  eval.ConceptualUnderstanding,
		IdentifiedMisconceptions: models.MustJSON(eval.Misconceptions),
		KnowledgeGaps:            models.MustJSON(eval.KnowledgeGaps),
		EvaluationDetails:        models.MustJSON(eval),
		TimeTakenSeconds:         reqData.TimeTakenSeconds,
		SubmittedAt:              now,
	}
	if err := db.Create(&response).Error; err != nil {
		log.Printf("Error saving response: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save response!", nil)
	}

	updateAssessmentStats(&assessment, eval.IsCorrect, reqData.TimeTakenSeconds)

	profile := updateProfileFromEvaluation(userID, &assessment, eval)

	pctx := &agents.PipelineContext{
		UserID: userID,
		Topic:  assessment.TopicName,
	}
	if profile != nil {
		pctx.RecentAccuracy = profile.RecentAccuracy(10)
		pctx.StreakDays = profile.CurrentStreakDays
		pctx.PerformanceWindow = profile.Window()
	}

	feedbackResult := agents.GenerateFeedback(eval, assessment.TopicName, pctx)

	feedback := models.Feedback{
		UserID:                  userID,
		SessionID:               reqData.SessionID,
		ResponseID:              response.ID,
		Summary:                 feedbackResult.Summary,
		DetailedFeedback:        feedbackResult.DetailedFeedback,
		Strengths:               models.MustJSON(feedbackResult.Strengths),
		Weaknesses:              models.MustJSON(feedbackResult.Weaknesses),
		Recommendations:         models.MustJSON(feedbackResult.Recommendations),
		SuggestedTopics:         models.MustJSON(feedbackResult.SuggestedTopics),
		SuggestedDifficulty:     feedbackResult.SuggestedDifficulty,
		EncouragementMessage:    feedbackResult.EncouragementMessage,
		OverallPerformanceScore: feedbackResult.OverallPerformanceScore,
		ImprovementTrend:        feedbackResult.ImprovementTrend,
	}
	if err := db.Create(&feedback).Error; err != nil {
		log.Printf("Error saving feedback: %v", err)
	} else {
		db.Model(&response).Update("feedback_id", feedback.ID)
	}

	sessionComplete := false
	if session != nil {
		sessionComplete = advanceSession(session, &assessment, eval)
	}

	data := fiber.Map{
		"response_id":      response.ID,
		"evaluation":       eval,
		"feedback":         feedbackResult,
		"session_complete": sessionComplete,
	}
	if session != nil {
		data["session_progress"] = fiber.Map{
			"questions_answered": session.QuestionsAnswered,
			"target_questions":   session.TargetQuestions,
			"correct_answers":    session.CorrectAnswers,
			"total_score":        session.TotalScore,
			"current_difficulty": session.CurrentDifficulty,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Response evaluated successfully.", data)
}

// GenerateQuestions runs the batch pipeline outside a session flow.
func GenerateQuestions(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedGenerate").(*assessmentValidator.GenerateQuestionRequest)

	query := reqData.Query
	if query == "" {
		query = reqData.Topic
	}
	if query == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Either query or topic is required!", nil)
	}

	pctx := &agents.PipelineContext{
		UserID:              userID,
		SessionID:           reqData.SessionID,
		Topic:               reqData.Topic,
		PreferredType:       reqData.QuestionType,
		PreferredDifficulty: reqData.Difficulty,
		Modality:            "text",
	}

	var profile models.LearnerProfile
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = false", userID).
		First(&profile).Error; err == nil {
		pctx.RecentAccuracy = profile.RecentAccuracy(10)
		pctx.Weaknesses = models.StringList(profile.Weaknesses)
		pctx.KnowledgeGaps = models.StringList(profile.KnowledgeGaps)
	}

	result, questions := agents.RunBatchPipeline(query, pctx, reqData.Count)

	payload := make([]fiber.Map, 0, len(questions))
	for _, question := range questions {
		generatedBy := "agent_pipeline"
		if question.IsFallback {
			generatedBy = "template_fallback"
		}
		assessment := models.Assessment{
			TopicName:         reqData.Topic,
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
			log.Printf("Error persisting question: %v", err)
			continue
		}

		options := []fiber.Map{}
		for _, option := range assessment.OptionList() {
			options = append(options, fiber.Map{"id": option.ID, "text": option.Text})
		}
		payload = append(payload, fiber.Map{
			"id":                 assessment.ID,
			"question_type":      assessment.QuestionType,
			"question_text":      assessment.QuestionText,
			"options":            options,
			"difficulty":         assessment.Difficulty,
			"points":             assessment.Points,
			"time_limit_seconds": assessment.TimeLimitSeconds,
			"is_fallback":        question.IsFallback,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions generated successfully.", fiber.Map{
		"questions":      payload,
		"agent_statuses": result.AgentStatuses,
	})
}

// GetAssessment returns one question without revealing its answers.
func GetAssessment(c *fiber.Ctx) error {
	var assessment models.Assessment
	if err := database.Database.Db.
		Where("id = ? AND is_deleted = false", c.Params("id")).
		First(&assessment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
	}

	options := []fiber.Map{}
	for _, option := range assessment.OptionList() {
		options = append(options, fiber.Map{"id": option.ID, "text": option.Text})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment fetched successfully.", fiber.Map{
		"id":                 assessment.ID,
		"topic_name":         assessment.TopicName,
		"question_type":      assessment.QuestionType,
		"question_text":      assessment.QuestionText,
		"question_context":   assessment.QuestionContext,
		"options":            options,
		"difficulty":         assessment.Difficulty,
		"points":             assessment.Points,
		"time_limit_seconds": assessment.TimeLimitSeconds,
		"success_rate":       assessment.SuccessRate(),
	})
}

// FeedbackHistory returns the user's recent feedback entries.
func FeedbackHistory(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var feedbacks []models.Feedback
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at DESC").
		Limit(20).
		Find(&feedbacks).Error; err != nil {
		log.Printf("Error fetching feedback history: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch feedback history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback history fetched successfully.", feedbacks)
}

// FeedbackForResponse returns the stored feedback for one graded response.
func FeedbackForResponse(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var response models.AssessmentResponse
	if err := db.Where("id = ? AND user_id = ? AND is_deleted = false", c.Params("responseId"), userID).
		First(&response).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Response not found!", nil)
	}

	var feedback models.Feedback
	if err := db.Where("response_id = ? AND is_deleted = false", response.ID).
		First(&feedback).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback fetched successfully.", feedback)
	}

	// No stored feedback for this response. Regenerate it from the saved
	// evaluation and persist for subsequent fetches.
	var eval agents.Evaluation
	if len(response.EvaluationDetails) > 0 {
		_ = json.Unmarshal(response.EvaluationDetails, &eval)
	}

	var assessment models.Assessment
	db.Where("id = ?", response.AssessmentID).First(&assessment)

	pctx := &agents.PipelineContext{
		UserID: userID,
		Topic:  assessment.TopicName,
	}
	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err == nil {
		pctx.RecentAccuracy = profile.RecentAccuracy(10)
		pctx.StreakDays = profile.CurrentStreakDays
		pctx.PerformanceWindow = profile.Window()
	}

	result := agents.GenerateFeedback(eval, assessment.TopicName, pctx)

	feedback = models.Feedback{
		UserID:                  userID,
		SessionID:               response.SessionID,
		ResponseID:              response.ID,
		Summary:                 result.Summary,
		DetailedFeedback:        result.DetailedFeedback,
		Strengths:               models.MustJSON(result.Strengths),
		Weaknesses:              models.MustJSON(result.Weaknesses),
		Recommendations:         models.MustJSON(result.Recommendations),
		SuggestedTopics:         models.MustJSON(result.SuggestedTopics),
		SuggestedDifficulty:     result.SuggestedDifficulty,
		EncouragementMessage:    result.EncouragementMessage,
		OverallPerformanceScore: result.OverallPerformanceScore,
		ImprovementTrend:        result.ImprovementTrend,
	}
	if err := db.Create(&feedback).Error; err != nil {
		log.Printf("Error saving regenerated feedback: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate feedback!", nil)
	}
	db.Model(&response).Update("feedback_id", feedback.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback generated successfully.", feedback)
}

// SessionHistory returns the graded responses of one session joined with
// their question text, plus session totals.
func SessionHistory(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var session models.LearningSession
	if err := db.Where("id = ? AND user_id = ? AND is_deleted = false", c.Params("sessionId"), userID).
		First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	var responses []models.AssessmentResponse
	if err := db.Where("session_id = ? AND is_deleted = false", session.ID).
		Order("submitted_at ASC").
		Find(&responses).Error; err != nil {
		log.Printf("Error fetching session responses: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch session history!", nil)
	}

	entries := make([]fiber.Map, 0, len(responses))
	for _, response := range responses {
		var question models.Assessment
		db.Select("question_text, question_type, difficulty").
			Where("id = ?", response.AssessmentID).
			First(&question)

		entries = append(entries, fiber.Map{
			"response_id":        response.ID,
			"assessment_id":      response.AssessmentID,
			"question_text":      question.QuestionText,
			"question_type":      question.QuestionType,
			"difficulty":         question.Difficulty,
			"is_correct":         response.IsCorrect,
			"score":              response.Score,
			"max_score":          response.MaxScore,
			"time_taken_seconds": response.TimeTakenSeconds,
			"submitted_at":       response.SubmittedAt,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session history fetched successfully.", fiber.Map{
		"session_id":         session.ID,
		"topic_name":         session.TopicName,
		"status":             session.Status,
		"questions_answered": session.QuestionsAnswered,
		"correct_answers":    session.CorrectAnswers,
		"total_score":        session.TotalScore,
		"responses":          entries,
	})
}

func updateAssessmentStats(assessment *models.Assessment, isCorrect bool, timeTakenSeconds int) {
	db := database.Database.Db

	previousTotal := float64(assessment.TimesAnswered)
	assessment.TimesAnswered++
	if isCorrect {
		assessment.TimesCorrect++
	}
	assessment.AverageTimeSeconds =
		(assessment.AverageTimeSeconds*previousTotal + float64(timeTakenSeconds)) / float64(assessment.TimesAnswered)

	if err := db.Save(assessment).Error; err != nil {
		log.Printf("Error updating assessment stats: %v", err)
	}
}

// updateProfileFromEvaluation folds one graded answer into the learner
// profile: rolling window, totals, per-concept mastery and difficulty.
func updateProfileFromEvaluation(userID uint, assessment *models.Assessment, eval agents.Evaluation) *models.LearnerProfile {
	db := database.Database.Db

	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err != nil {
		profile = models.LearnerProfile{
			UserID:        userID,
			LearningStyle: models.MustJSON(models.DefaultLearningStyle()),
		}
		if err := db.Create(&profile).Error; err != nil {
			log.Printf("Error creating learner profile: %v", err)
			return nil
		}
	}

	profile.AddPerformance(eval.Score, assessment.Difficulty, assessment.TopicName, eval.IsCorrect)
	profile.TotalQuestionsAttempted++
	if eval.IsCorrect {
		profile.TotalQuestionsCorrect++
	}
	profile.OverallMastery = services.MasteryLevel(
		profile.TotalQuestionsAttempted, profile.TotalQuestionsCorrect)

	updateConceptMastery(&profile, models.StringList(assessment.Concepts), eval.IsCorrect)

	if eval.IsCorrect {
		profile.Strengths = models.MustJSON(mergeCapped(
			models.StringList(profile.Strengths), models.StringList(assessment.Concepts), 20))
	} else {
		if len(eval.KnowledgeGaps) > 0 {
			profile.KnowledgeGaps = models.MustJSON(mergeCapped(
				models.StringList(profile.KnowledgeGaps), eval.KnowledgeGaps, 20))
		}
		if len(eval.Misconceptions) > 0 {
			profile.Weaknesses = models.MustJSON(mergeCapped(
				models.StringList(profile.Weaknesses), eval.Misconceptions, 20))
		}
	}

	direction := ""
	switch eval.RecommendedDifficulty {
	case "increase":
		direction = "up"
	case "decrease":
		direction = "down"
	}
	profile.CurrentDifficulty = services.NextDifficulty(profile.CurrentDifficulty, profile.Window(), direction)

	now := time.Now()
	profile.LastActivityAt = &now

	if err := db.Save(&profile).Error; err != nil {
		log.Printf("Error saving learner profile: %v", err)
	}
	return &profile
}

func updateConceptMastery(profile *models.LearnerProfile, concepts []string, isCorrect bool) {
	mastery := make(map[string]models.ConceptMastery)
	if len(profile.ConceptMastery) > 0 {
		_ = json.Unmarshal(profile.ConceptMastery, &mastery)
	}

	now := time.Now()
	for _, concept := range concepts {
		entry := mastery[concept]
		entry.Concept = concept
		entry.QuestionsAttempted++
		if isCorrect {
			entry.QuestionsCorrect++
		}
		previous := entry.MasteryLevel
		entry.MasteryLevel = services.MasteryLevel(entry.QuestionsAttempted, entry.QuestionsCorrect)
		switch {
		case entry.MasteryLevel > previous:
			entry.Trend = "improving"
		case entry.MasteryLevel < previous:
			entry.Trend = "declining"
		default:
			entry.Trend = "stable"
		}
		entry.LastAttempted = &now
		mastery[concept] = entry
	}

	profile.ConceptMastery = models.MustJSON(mastery)
}

// advanceSession updates counters and difficulty, completing the session
// when the question target is reached. Returns whether it completed.
func advanceSession(session *models.LearningSession, assessment *models.Assessment, eval agents.Evaluation) bool {
	db := database.Database.Db

	session.QuestionsAnswered++
	if eval.IsCorrect {
		session.CorrectAnswers++
	}
	session.TotalScore += eval.Score

	switch eval.RecommendedDifficulty {
	case "increase":
		session.CurrentDifficulty = services.IncreaseDifficulty(session.CurrentDifficulty)
	case "decrease":
		session.CurrentDifficulty = services.DecreaseDifficulty(session.CurrentDifficulty)
	}

	session.AppendInteraction(models.SessionInteraction{
		Timestamp:  time.Now(),
		InputType:  "text",
		QuestionID: itoa(assessment.ID),
		IsCorrect:  eval.IsCorrect,
		Score:      eval.Score,
		Difficulty: assessment.Difficulty,
		Concepts:   models.StringList(assessment.Concepts),
	})

	completed := false
	if session.QuestionsAnswered >= session.TargetQuestions {
		now := time.Now()
		session.Status = models.SessionCompleted
		session.CompletedAt = &now
		session.TotalDurationSeconds = int(now.Sub(session.StartedAt).Seconds())
		completed = true
	}

	session.LastActivityAt = time.Now()
	if err := db.Save(session).Error; err != nil {
		log.Printf("Error saving session: %v", err)
	}

	if completed {
		if err := sessionController.RollUpSessionStats(session.UserID, session); err != nil {
			log.Printf("Error rolling up session stats: %v", err)
		}
	}
	return completed
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func mergeCapped(existing, incoming []string, max int) []string {
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
