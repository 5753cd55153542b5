package dashboardController

import (
	"encoding/json"
	"log"
	"sort"
	"strconv"
	"time"

	"edusynapse/database"
	"edusynapse/middleware"
	"edusynapse/models"
	"edusynapse/services"
	assessmentValidator "edusynapse/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

// Overview returns the learner's progress snapshot.
func Overview(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var profile models.LearnerProfile
	db.Where("user_id = ? AND is_deleted = false", userID).First(&profile)

	var recentSessions []models.LearningSession
	db.Where("user_id = ? AND is_deleted = false", userID).
		Order("started_at DESC").
		Limit(5).
		Find(&recentSessions)

	trend := services.PerformanceTrend(profile.Window(), 5)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"stats": fiber.Map{
			"total_sessions":           user.TotalSessions,
			"total_questions_answered": user.TotalQuestionsAnswered,
			"total_study_time_minutes": user.TotalStudyTimeMinutes,
			"overall_mastery":          profile.OverallMastery,
			"accuracy_percent":         profile.Accuracy(),
			"recent_accuracy_percent":  profile.RecentAccuracy(10),
			"current_difficulty":       profile.CurrentDifficulty,
			"current_streak_days":      profile.CurrentStreakDays,
			"longest_streak_days":      profile.LongestStreakDays,
			"performance_trend":        trend,
		},
		"strengths":       models.StringList(profile.Strengths),
		"weaknesses":      models.StringList(profile.Weaknesses),
		"knowledge_gaps":  models.StringList(profile.KnowledgeGaps),
		"recent_sessions": recentSessions,
	})
}

// Topics lists knowledge base topics with a recommendation for this learner.
func Topics(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	available := services.AvailableTopics()

	recommended := ""
	var custom []models.CustomTopic
	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err == nil {
		recommended = services.RecommendNextTopic(&profile, available)
		if len(profile.CustomTopics) > 0 {
			_ = json.Unmarshal(profile.CustomTopics, &custom)
		}
	}
	if custom == nil {
		custom = []models.CustomTopic{}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully.", fiber.Map{
		"topics":        available,
		"custom_topics": custom,
		"recommended":   recommended,
	})
}

// LearningPath builds a step-by-step path toward the requested topic.
func LearningPath(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	topic := c.Query("topic")
	if topic == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Topic query parameter is required!", nil)
	}

	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err != nil {
		profile = models.LearnerProfile{CurrentDifficulty: "medium"}
	}

	path := services.GenerateLearningPath(&profile, topic, 8)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning path generated successfully.", fiber.Map{
		"topic": topic,
		"path":  path,
	})
}

// Analytics aggregates performance over a daily, weekly or monthly window.
func Analytics(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	days := 7
	switch c.Query("period", "weekly") {
	case "daily":
		days = 1
	case "monthly":
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var sessions []models.LearningSession
	db.Where("user_id = ? AND is_deleted = false AND started_at >= ?", userID, cutoff).
		Order("started_at ASC").
		Find(&sessions)

	var responses []models.AssessmentResponse
	db.Where("user_id = ? AND is_deleted = false AND submitted_at >= ?", userID, cutoff).
		Order("submitted_at ASC").
		Find(&responses)

	correct := 0
	totalScore := 0.0
	difficultyDist := map[string]int{}
	daily := map[string]*dayBucket{}
	for _, response := range responses {
		if response.IsCorrect {
			correct++
		}
		totalScore += response.Score
		day := response.SubmittedAt.Format("2006-01-02")
		bucket := daily[day]
		if bucket == nil {
			bucket = &dayBucket{}
			daily[day] = bucket
		}
		bucket.answered++
		if response.IsCorrect {
			bucket.correct++
		}
	}

	studyMinutes := 0
	topicStats := map[string]*topicBucket{}
	for _, session := range sessions {
		studyMinutes += session.TotalDurationSeconds / 60
		bucket := topicStats[session.TopicName]
		if bucket == nil {
			bucket = &topicBucket{}
			topicStats[session.TopicName] = bucket
		}
		bucket.sessions++
		bucket.answered += session.QuestionsAnswered
		bucket.correct += session.CorrectAnswers
		for _, interaction := range session.InteractionList() {
			if interaction.Difficulty != "" {
				difficultyDist[interaction.Difficulty]++
			}
		}
	}

	accuracy := 0.0
	avgScore := 0.0
	if len(responses) > 0 {
		accuracy = float64(correct) / float64(len(responses)) * 100
		avgScore = totalScore / float64(len(responses))
	}

	trendPoints := make([]fiber.Map, 0, len(daily))
	for _, day := range sortedKeys(daily) {
		bucket := daily[day]
		dayAccuracy := 0.0
		if bucket.answered > 0 {
			dayAccuracy = float64(bucket.correct) / float64(bucket.answered) * 100
		}
		trendPoints = append(trendPoints, fiber.Map{
			"date":               day,
			"questions_answered": bucket.answered,
			"accuracy_percent":   dayAccuracy,
		})
	}

	topics := make([]fiber.Map, 0, len(topicStats))
	for _, name := range sortedKeys(topicStats) {
		bucket := topicStats[name]
		topicAccuracy := 0.0
		if bucket.answered > 0 {
			topicAccuracy = float64(bucket.correct) / float64(bucket.answered) * 100
		}
		topics = append(topics, fiber.Map{
			"topic_name":         name,
			"sessions":           bucket.sessions,
			"questions_answered": bucket.answered,
			"accuracy_percent":   topicAccuracy,
		})
	}

	var profile models.LearnerProfile
	db.Where("user_id = ? AND is_deleted = false", userID).First(&profile)

	mastery := map[string]models.ConceptMastery{}
	if len(profile.ConceptMastery) > 0 {
		_ = json.Unmarshal(profile.ConceptMastery, &mastery)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analytics fetched successfully.", fiber.Map{
		"improvement_percent": improvementPercent(profile.Window()),
		"period_days":         days,
		"totals": fiber.Map{
			"sessions":           len(sessions),
			"questions_answered": len(responses),
			"correct_answers":    correct,
			"accuracy_percent":   accuracy,
			"average_score":      avgScore,
			"study_time_minutes": studyMinutes,
		},
		"difficulty_distribution": difficultyDist,
		"accuracy_trend":          trendPoints,
		"topic_breakdown":         topics,
		"concept_mastery":         mastery,
		"performance_trend":       services.PerformanceTrend(profile.Window(), 5),
	})
}

// improvementPercent compares average score across the two halves of the
// rolling window. Needs at least four entries.
func improvementPercent(window []models.PerformanceEntry) float64 {
	if len(window) < 4 {
		return 0
	}
	half := len(window) / 2
	first, second := 0.0, 0.0
	for i, entry := range window {
		if i < half {
			first += entry.Score
		} else {
			second += entry.Score
		}
	}
	first /= float64(half)
	second /= float64(len(window) - half)
	if first == 0 {
		return 0
	}
	return (second - first) / first * 100
}

type dayBucket struct {
	answered int
	correct  int
}

type topicBucket struct {
	sessions int
	answered int
	correct  int
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Recommendations builds study suggestions from the learner's recent state.
func Recommendations(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learner profile not found!", nil)
	}

	recent := profile.RecentAccuracy(10)
	recommendations := []fiber.Map{}

	switch {
	case recent >= 80 && profile.TotalQuestionsAttempted >= 10:
		recommendations = append(recommendations, fiber.Map{
			"type":    "difficulty",
			"message": "You're answering most questions correctly. Try a harder difficulty for a bigger challenge.",
		})
	case recent < 50 && profile.TotalQuestionsAttempted >= 10:
		recommendations = append(recommendations, fiber.Map{
			"type":    "difficulty",
			"message": "Recent questions have been tough. Stepping down a difficulty can rebuild confidence.",
		})
	}

	gaps := models.StringList(profile.KnowledgeGaps)
	if len(gaps) > 3 {
		gaps = gaps[:3]
	}
	for _, gap := range gaps {
		recommendations = append(recommendations, fiber.Map{
			"type":    "knowledge_gap",
			"message": "Review " + gap + " to close an identified knowledge gap.",
		})
	}

	weaknesses := models.StringList(profile.Weaknesses)
	if len(weaknesses) > 2 {
		weaknesses = weaknesses[:2]
	}
	for _, weakness := range weaknesses {
		recommendations = append(recommendations, fiber.Map{
			"type":    "practice",
			"message": "Extra practice on " + weakness + " would strengthen a weak area.",
		})
	}

	if profile.CurrentStreakDays >= 3 {
		recommendations = append(recommendations, fiber.Map{
			"type":    "streak",
			"message": "You're on a " + strconv.Itoa(profile.CurrentStreakDays) + "-day streak. A short session today keeps it alive.",
		})
	}

	nextTopic := services.RecommendNextTopic(&profile, services.AvailableTopics())
	if nextTopic != "" {
		recommendations = append(recommendations, fiber.Map{
			"type":    "topic",
			"message": "Based on your progress, " + nextTopic + " is a good next topic.",
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recommendations fetched successfully.", fiber.Map{
		"recommendations":   recommendations,
		"recommended_topic": nextTopic,
	})
}

// RecentActivity returns the learner's latest sessions and answers.
func RecentActivity(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var sessions []models.LearningSession
	db.Where("user_id = ? AND is_deleted = false", userID).
		Order("started_at DESC").
		Limit(5).
		Find(&sessions)

	var responses []models.AssessmentResponse
	db.Where("user_id = ? AND is_deleted = false", userID).
		Order("submitted_at DESC").
		Limit(10).
		Find(&responses)

	answers := make([]fiber.Map, 0, len(responses))
	for _, response := range responses {
		answers = append(answers, fiber.Map{
			"response_id":   response.ID,
			"assessment_id": response.AssessmentID,
			"is_correct":    response.IsCorrect,
			"score":         response.Score,
			"submitted_at":  response.SubmittedAt,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recent activity fetched successfully.", fiber.Map{
		"sessions": sessions,
		"answers":  answers,
	})
}

type achievementRule struct {
	ID          string
	Title       string
	Description string
	Earned      func(user *models.User, profile *models.LearnerProfile) bool
}

var achievementRules = []achievementRule{
	{"first_session", "First Steps", "Complete your first learning session",
		func(u *models.User, p *models.LearnerProfile) bool { return u.TotalSessions >= 1 }},
	{"ten_sessions", "Regular Learner", "Complete ten learning sessions",
		func(u *models.User, p *models.LearnerProfile) bool { return u.TotalSessions >= 10 }},
	{"streak_3", "Warming Up", "Study three days in a row",
		func(u *models.User, p *models.LearnerProfile) bool { return p.LongestStreakDays >= 3 }},
	{"streak_7", "On Fire", "Study seven days in a row",
		func(u *models.User, p *models.LearnerProfile) bool { return p.LongestStreakDays >= 7 }},
	{"hundred_questions", "Century", "Answer one hundred questions",
		func(u *models.User, p *models.LearnerProfile) bool { return p.TotalQuestionsAttempted >= 100 }},
	{"sharp_shooter", "Sharp Shooter", "Reach 80% accuracy over at least twenty questions",
		func(u *models.User, p *models.LearnerProfile) bool {
			return p.TotalQuestionsAttempted >= 20 && p.Accuracy() >= 80
		}},
}

// Achievements evaluates the achievement catalog against the learner's stats.
func Achievements(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var profile models.LearnerProfile
	db.Where("user_id = ? AND is_deleted = false", userID).First(&profile)

	earnedCount := 0
	achievements := make([]fiber.Map, 0, len(achievementRules))
	for _, rule := range achievementRules {
		earned := rule.Earned(&user, &profile)
		if earned {
			earnedCount++
		}
		achievements = append(achievements, fiber.Map{
			"id":          rule.ID,
			"title":       rule.Title,
			"description": rule.Description,
			"earned":      earned,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Achievements fetched successfully.", fiber.Map{
		"achievements": achievements,
		"earned_count": earnedCount,
		"total_count":  len(achievementRules),
	})
}

// TopicMastery returns per-topic and per-concept mastery from the profile.
func TopicMastery(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	db := database.Database.Db

	var profile models.LearnerProfile
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learner profile not found!", nil)
	}

	var topics []models.TopicProgress
	if len(profile.TopicProgress) > 0 {
		_ = json.Unmarshal(profile.TopicProgress, &topics)
	}

	concepts := map[string]models.ConceptMastery{}
	if len(profile.ConceptMastery) > 0 {
		_ = json.Unmarshal(profile.ConceptMastery, &concepts)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic mastery fetched successfully.", fiber.Map{
		"overall_mastery": profile.OverallMastery,
		"topics":          topics,
		"concepts":        concepts,
	})
}

// AddKnowledge stores new learning content into the knowledge base.
func AddKnowledge(c *fiber.Ctx) error {
	reqData := c.Locals("validatedKnowledge").(*assessmentValidator.AddKnowledgeRequest)

	contentID, err := services.AddKnowledgeContent(services.KnowledgeContent{
		SourceType:     "manual",
		SourceTitle:    reqData.SourceTitle,
		SourceURL:      reqData.SourceURL,
		ContentText:    reqData.ContentText,
		ContentSummary: reqData.ContentSummary,
		Subject:        reqData.Subject,
		Topic:          reqData.Topic,
		Subtopics:      reqData.Subtopics,
		Difficulty:     reqData.Difficulty,
		Keywords:       reqData.Keywords,
		Concepts:       reqData.Concepts,
	})
	if err != nil {
		log.Printf("Error adding knowledge content: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add content!", nil)
	}

	if err := services.KnowledgeIndex().Save(); err != nil {
		log.Printf("Error saving vector index: %v", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content added successfully.", fiber.Map{
		"content_id": contentID,
	})
}
