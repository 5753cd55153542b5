package agents

import (
	"log"
	"time"

	"edusynapse/config"
	"edusynapse/models"
)

// Pipeline stage names.
const (
	StageQueryAnalysis = "query_analysis"
	StageRetrieval     = "information_retrieval"
	StageGeneration    = "question_generation"
)

// Stage execution statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PipelineResult is the full output of one question pipeline run.
type PipelineResult struct {
	Analysis      QueryAnalysis           `json:"analysis"`
	Content       RetrievedContent        `json:"content"`
	Question      GeneratedQuestion       `json:"question"`
	AgentStatuses map[string]*AgentStatus `json:"agent_statuses"`
}

// RunQuestionPipeline executes query analysis, content retrieval and
// question generation in order, pausing between stages and tracking
// per-stage status. A failure partway through marks the incomplete stages
// failed and yields a template fallback question.
func RunQuestionPipeline(query string, pctx *PipelineContext) PipelineResult {
	result := PipelineResult{
		AgentStatuses: map[string]*AgentStatus{
			StageQueryAnalysis: {Status: StatusPending},
			StageRetrieval:     {Status: StatusPending},
			StageGeneration:    {Status: StatusPending},
		},
	}

	stagePause := configuredStagePause()
	stageOrder := []string{StageQueryAnalysis, StageRetrieval, StageGeneration}

	defer func() {
		if r := recover(); r != nil {
			log.Println("Question pipeline panicked:", r)
			failIncompleteStages(result.AgentStatuses, stageOrder, r)
			if result.Question.QuestionText == "" {
				result.Question = generateFromTemplate(pctx.Topic, models.QuestionMCQ, "medium", result.Content)
			}
		}
	}()

	runStage(result.AgentStatuses[StageQueryAnalysis], func() {
		result.Analysis = AnalyzeQuery(query, pctx)
	})
	time.Sleep(stagePause)

	runStage(result.AgentStatuses[StageRetrieval], func() {
		result.Content = RetrieveContent(result.Analysis, pctx)
	})
	time.Sleep(stagePause)

	runStage(result.AgentStatuses[StageGeneration], func() {
		result.Question = GenerateQuestion(result.Analysis, result.Content, pctx)
	})

	return result
}

// RunBatchPipeline is RunQuestionPipeline but generating count questions
// in one pass, sharing the analysis and retrieval stages.
func RunBatchPipeline(query string, pctx *PipelineContext, count int) (PipelineResult, []GeneratedQuestion) {
	result := PipelineResult{
		AgentStatuses: map[string]*AgentStatus{
			StageQueryAnalysis: {Status: StatusPending},
			StageRetrieval:     {Status: StatusPending},
			StageGeneration:    {Status: StatusPending},
		},
	}

	stagePause := configuredStagePause()

	runStage(result.AgentStatuses[StageQueryAnalysis], func() {
		result.Analysis = AnalyzeQuery(query, pctx)
	})
	time.Sleep(stagePause)

	runStage(result.AgentStatuses[StageRetrieval], func() {
		result.Content = RetrieveContent(result.Analysis, pctx)
	})
	time.Sleep(stagePause)

	var questions []GeneratedQuestion
	runStage(result.AgentStatuses[StageGeneration], func() {
		questions = GenerateQuestionBatch(result.Analysis, result.Content, pctx, count)
	})

	if len(questions) > 0 {
		result.Question = questions[0]
	}
	return result, questions
}

func configuredStagePause() time.Duration {
	if config.AppConfig == nil {
		return 0
	}
	return time.Duration(config.AppConfig.AgentStagePauseMs) * time.Millisecond
}

func runStage(status *AgentStatus, fn func()) {
	status.Status = StatusProcessing
	started := time.Now()
	fn()
	status.ProcessingTime = time.Since(started).Milliseconds()
	status.Status = StatusCompleted
}

func failIncompleteStages(statuses map[string]*AgentStatus, order []string, cause interface{}) {
	for _, name := range order {
		status := statuses[name]
		if status.Status == StatusCompleted {
			continue
		}
		status.Status = StatusFailed
		if err, ok := cause.(error); ok {
			status.Error = err.Error()
		} else {
			status.Error = "stage did not complete"
		}
	}
}

// EvaluateAndRecommend grades a response and attaches a difficulty
// recommendation for the next question.
func EvaluateAndRecommend(assessment *models.Assessment, responseContent, selectedOptionID string) Evaluation {
	eval := EvaluateResponse(assessment, responseContent, selectedOptionID)

	switch {
	case eval.IsCorrect && eval.ConceptualUnderstanding > 80:
		eval.RecommendedDifficulty = "increase"
	case !eval.IsCorrect && eval.ConceptualUnderstanding < 40:
		eval.RecommendedDifficulty = "decrease"
	default:
		eval.RecommendedDifficulty = "keep"
	}
	return eval
}
