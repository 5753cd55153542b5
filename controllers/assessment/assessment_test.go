package assessmentController

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"edusynapse/agents"
	sessionController "edusynapse/controllers/session"
	"edusynapse/database"
	"edusynapse/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.LearnerProfile{},
		&models.LearningSession{},
		&models.Assessment{},
		&models.AssessmentResponse{},
		&models.Feedback{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.Database = database.DbInstance{Db: db}
	return db
}

// A session that completes on its final answer must roll its stats into
// the user exactly once, and a follow-up complete call must still return
// the summary instead of a conflict.
func TestNaturalCompletionRollsUpOnce(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Email: "learner@example.com", Username: "learner", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	session := models.LearningSession{
		UserID:          user.ID,
		TopicName:       "algebra",
		TargetQuestions: 1,
		Status:          models.SessionActive,
		StartedAt:       time.Now().Add(-2 * time.Minute),
		LastActivityAt:  time.Now(),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	assessment := models.Assessment{
		TopicName:    "algebra",
		QuestionType: "mcq",
		QuestionText: "Pick one.",
		Difficulty:   "medium",
		Points:       10,
	}
	if err := db.Create(&assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	completed := advanceSession(&session, &assessment, agents.Evaluation{IsCorrect: true, Score: 10, MaxScore: 10})
	if !completed {
		t.Fatal("final answer did not complete the session")
	}

	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if after.TotalSessions != 1 {
		t.Fatalf("TotalSessions = %d after natural completion, want 1", after.TotalSessions)
	}

	app := fiber.New()
	app.Patch("/sessions/:id/complete", func(c *fiber.Ctx) error {
		c.Locals("userId", user.ID)
		return sessionController.CompleteSession(c)
	})

	resp, err := app.Test(httptest.NewRequest("PATCH", fmt.Sprintf("/sessions/%d/complete", session.ID), nil))
	if err != nil {
		t.Fatalf("complete request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("complete status = %d, body %s, want 200", resp.StatusCode, body)
	}

	var envelope struct {
		Status bool `json:"status"`
		Data   struct {
			Summary json.RawMessage `json:"summary"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !envelope.Status || len(envelope.Data.Summary) == 0 {
		t.Errorf("completed session did not return a summary: %+v", envelope)
	}

	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if after.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d after repeat complete, want 1", after.TotalSessions)
	}
}
