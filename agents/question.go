package agents

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"edusynapse/models"
)

// batchDifficultyCycle spreads difficulty across a generated batch.
var batchDifficultyCycle = []string{"easy", "medium", "medium", "hard", "medium"}

// Per-type scoring defaults.
const (
	mcqPoints        = 10
	mcqTimeSeconds   = 90
	fillPoints       = 10
	fillTimeSeconds  = 60
	essayPoints      = 25
	essayTimeSeconds = 600
)

// GenerateQuestion produces one question from retrieved content. Uses the
// LLM when configured, otherwise the academic template bank.
func GenerateQuestion(analysis QueryAnalysis, content RetrievedContent, pctx *PipelineContext) GeneratedQuestion {
	preferredType := pctx.PreferredType
	if preferredType == "" {
		preferredType = analysis.Recommendations.QuestionType
	}
	questionType := selectQuestionType(preferredType, pctx.RecentQuestionTypes)

	// An explicit difficulty request pins the level for the whole run.
	difficulty := pctx.PreferredDifficulty
	if difficulty == "" {
		difficulty = selectDifficulty(analysis.Recommendations.SuggestedDifficulty, pctx.RecentAccuracy)
	}

	llm, err := NewLLMClient()
	if err == nil {
		question, llmErr := generateWithLLM(llm, analysis, content, questionType, difficulty)
		if llmErr == nil {
			return question
		}
		log.Println("LLM question generation failed, using templates:", llmErr)
	}

	question := generateFromTemplate(analysis.Topic.Main, questionType, difficulty, content)
	for attempt := 0; attempt < 3 && alreadyAsked(question.QuestionText, pctx.PreviouslyAsked); attempt++ {
		question = generateFromTemplate(analysis.Topic.Main, questionType, difficulty, content)
	}
	return question
}

func alreadyAsked(text string, asked []string) bool {
	for _, previous := range asked {
		if previous == text {
			return true
		}
	}
	return false
}

// GenerateQuestionBatch produces count questions cycling through the batch
// difficulty pattern.
func GenerateQuestionBatch(analysis QueryAnalysis, content RetrievedContent, pctx *PipelineContext, count int) []GeneratedQuestion {
	questions := make([]GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		stageAnalysis := analysis
		stageAnalysis.Recommendations.SuggestedDifficulty = batchDifficultyCycle[i%len(batchDifficultyCycle)]

		question := GenerateQuestion(stageAnalysis, content, pctx)
		question.BatchIndex = i
		questions = append(questions, question)

		pctx.RecentQuestionTypes = append(pctx.RecentQuestionTypes, question.QuestionType)
		pctx.PreviouslyAsked = append(pctx.PreviouslyAsked, question.QuestionText)
	}
	return questions
}

// selectQuestionType avoids repeating the recommended type when it already
// dominates recent history.
func selectQuestionType(recommended string, history []string) string {
	if recommended == "" {
		recommended = models.QuestionMCQ
	}

	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	occurrences := 0
	for _, t := range recent {
		if t == recommended {
			occurrences++
		}
	}
	if occurrences < 2 {
		return recommended
	}

	alternatives := []string{}
	for _, t := range []string{models.QuestionMCQ, models.QuestionFillInBlank, models.QuestionEssay} {
		if t != recommended {
			alternatives = append(alternatives, t)
		}
	}
	return alternatives[rand.Intn(len(alternatives))]
}

// selectDifficulty draws from a weighted distribution biased by the
// recommendation and recent accuracy.
func selectDifficulty(recommended string, recentAccuracy float64) string {
	weights := map[string]float64{"easy": 0.2, "medium": 0.6, "hard": 0.2}

	if _, ok := weights[recommended]; ok {
		weights[recommended] += 0.3
	}

	if recentAccuracy > 80 {
		weights["hard"] += 0.2
		weights["easy"] -= 0.1
	} else if recentAccuracy < 50 && recentAccuracy > 0 {
		weights["easy"] += 0.2
		weights["hard"] -= 0.1
	}

	for level, w := range weights {
		if w < 0.05 {
			weights[level] = 0.05
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	pick := rand.Float64() * total
	for _, level := range []string{"easy", "medium", "hard"} {
		pick -= weights[level]
		if pick <= 0 {
			return level
		}
	}
	return "medium"
}

func generateWithLLM(llm *LLMClient, analysis QueryAnalysis, content RetrievedContent, questionType, difficulty string) (GeneratedQuestion, error) {
	contextText := ""
	sourceIDs := []string{}
	for _, chunk := range content.ContentChunks {
		contextText += chunk.Content + "\n"
		sourceIDs = append(sourceIDs, chunk.ContentID)
	}
	if len(contextText) > 3000 {
		contextText = contextText[:3000]
	}

	systemPrompt := "You are an educational question generator. Respond with JSON only, shaped as: " +
		`{"question_type":"` + questionType + `","question_text":"...","question_context":"...",` +
		`"options":[{"id":"A","text":"...","is_correct":true}],"blank_answer":"...","acceptable_answers":[],` +
		`"model_answer":"...","rubric":{},"concepts":[],"explanation":"...","difficulty":"` + difficulty + `"}`

	userPrompt := fmt.Sprintf("Topic: %s\nDifficulty: %s\nQuestion type: %s\n\nSource material:\n%s",
		analysis.Topic.Main, difficulty, questionType, contextText)

	var question GeneratedQuestion
	if err := llm.CompleteJSON(systemPrompt, userPrompt, &question); err != nil {
		return GeneratedQuestion{}, err
	}
	if question.QuestionText == "" {
		return GeneratedQuestion{}, fmt.Errorf("model output missing question text")
	}
	if question.QuestionType == models.QuestionMCQ && len(question.Options) < 2 {
		return GeneratedQuestion{}, fmt.Errorf("mcq output missing options")
	}

	question.QuestionType = questionType
	question.Difficulty = difficulty
	question.SourceContentIDs = sourceIDs
	applyScoring(&question)
	if question.Concepts == nil {
		question.Concepts = []string{analysis.Topic.Main}
	}
	return question, nil
}

// mcqTemplate holds a scenario with the correct answer listed first.
type mcqTemplate struct {
	question    string
	answers     []string
	explanation string
}

var mcqTemplates = []mcqTemplate{
	{
		question: "Which of the following best describes the primary purpose of %s?",
		answers: []string{
			"To provide a systematic framework for understanding the subject",
			"To replace all earlier approaches entirely",
			"To serve only as a historical reference",
			"To complicate the underlying principles",
		},
		explanation: "The primary purpose of %s is to provide a systematic framework for understanding the subject.",
	},
	{
		question: "When applying the concepts of %s in practice, which approach is most effective?",
		answers: []string{
			"Starting from fundamental principles and building up",
			"Memorizing results without understanding them",
			"Ignoring edge cases and exceptions",
			"Applying rules without checking assumptions",
		},
		explanation: "Effective application of %s starts from fundamental principles.",
	},
	{
		question: "A student is analyzing a problem related to %s. What should they consider first?",
		answers: []string{
			"The core definitions and assumptions involved",
			"The most complex aspect of the problem",
			"Unrelated topics for broader context",
			"The final answer before the reasoning",
		},
		explanation: "Analysis of %s problems begins with core definitions and assumptions.",
	},
	{
		question: "Which statement about %s is accurate?",
		answers: []string{
			"It builds on foundational concepts that connect to broader principles",
			"It exists in isolation from other areas of study",
			"It has no practical applications",
			"It cannot be learned through practice",
		},
		explanation: "%s builds on foundational concepts connected to broader principles.",
	},
	{
		question: "In the context of %s, what distinguishes a strong understanding from a superficial one?",
		answers: []string{
			"The ability to apply concepts to new situations",
			"The ability to recite definitions verbatim",
			"Familiarity with terminology alone",
			"Speed of answering without reflection",
		},
		explanation: "Strong understanding of %s shows in applying concepts to new situations.",
	},
}

type fillTemplate struct {
	question     string
	answer       string
	alternatives []string
}

var fillTemplates = []fillTemplate{
	{
		question:     "The systematic study of %s requires understanding its core _____.",
		answer:       "principles",
		alternatives: []string{"concepts", "fundamentals", "foundations"},
	},
	{
		question:     "To master %s, learners should practice applying concepts to real _____.",
		answer:       "problems",
		alternatives: []string{"situations", "examples", "scenarios"},
	},
	{
		question:     "A key skill in %s is breaking complex ideas into simpler _____.",
		answer:       "parts",
		alternatives: []string{"components", "pieces", "elements"},
	},
	{
		question:     "Progress in %s depends on connecting new material to prior _____.",
		answer:       "knowledge",
		alternatives: []string{"learning", "understanding", "experience"},
	},
}

var essayTemplates = []struct {
	question string
	rubric   map[string]string
}{
	{
		question: "Explain the key concepts of %s and discuss how they apply to a real-world situation of your choice.",
		rubric: map[string]string{
			"concept_accuracy":  "Key concepts are identified and described correctly",
			"application":       "Concepts are applied to a concrete, relevant example",
			"depth_of_analysis": "The discussion goes beyond surface description",
			"clarity":           "The response is organized and clearly written",
		},
	},
	{
		question: "Compare two different approaches to understanding %s. What are the strengths and limitations of each?",
		rubric: map[string]string{
			"comparison":     "Two distinct approaches are identified and compared",
			"strengths":      "Strengths of each approach are explained",
			"limitations":    "Limitations of each approach are explained",
			"overall_stance": "A reasoned conclusion is drawn from the comparison",
		},
	},
}

var difficultyModifiers = map[string]string{
	"easy":   " Focus on the basic idea.",
	"medium": " Consider how the parts relate to each other.",
	"hard":   " Justify your reasoning with specific details.",
}

// generateFromTemplate builds a question from the academic template bank.
// Seeded RNG keeps variety across calls.
func generateFromTemplate(topic, questionType, difficulty string, content RetrievedContent) GeneratedQuestion {
	if topic == "" {
		topic = "this topic"
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sourceIDs := []string{}
	for _, chunk := range content.ContentChunks {
		sourceIDs = append(sourceIDs, chunk.ContentID)
	}

	var question GeneratedQuestion
	switch questionType {
	case models.QuestionFillInBlank:
		question = fillFromTemplate(topic, rng)
	case models.QuestionEssay:
		question = essayFromTemplate(topic, rng)
	default:
		question = mcqFromTemplate(topic, rng)
	}

	if modifier, ok := difficultyModifiers[difficulty]; ok {
		question.QuestionText += modifier
	}

	question.Difficulty = difficulty
	question.Concepts = []string{topic}
	question.SourceContentIDs = sourceIDs
	question.IsFallback = true
	applyScoring(&question)
	return question
}

func mcqFromTemplate(topic string, rng *rand.Rand) GeneratedQuestion {
	tmpl := mcqTemplates[rng.Intn(len(mcqTemplates))]
	correctText := tmpl.answers[0]

	shuffled := make([]string, len(tmpl.answers))
	copy(shuffled, tmpl.answers)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	optionIDs := []string{"A", "B", "C", "D"}
	options := make([]models.MCQOption, 0, len(shuffled))
	for i, text := range shuffled {
		options = append(options, models.MCQOption{
			ID:        optionIDs[i],
			Text:      text,
			IsCorrect: text == correctText,
		})
	}

	return GeneratedQuestion{
		QuestionType: models.QuestionMCQ,
		QuestionText: fmt.Sprintf(tmpl.question, topic),
		Options:      options,
		Explanation:  fmt.Sprintf(tmpl.explanation, topic),
	}
}

func fillFromTemplate(topic string, rng *rand.Rand) GeneratedQuestion {
	tmpl := fillTemplates[rng.Intn(len(fillTemplates))]

	return GeneratedQuestion{
		QuestionType:      models.QuestionFillInBlank,
		QuestionText:      fmt.Sprintf(tmpl.question, topic),
		BlankAnswer:       tmpl.answer,
		AcceptableAnswers: append([]string{tmpl.answer}, tmpl.alternatives...),
		Explanation:       fmt.Sprintf("The expected answer is %q.", tmpl.answer),
	}
}

func essayFromTemplate(topic string, rng *rand.Rand) GeneratedQuestion {
	tmpl := essayTemplates[rng.Intn(len(essayTemplates))]

	return GeneratedQuestion{
		QuestionType: models.QuestionEssay,
		QuestionText: fmt.Sprintf(tmpl.question, topic),
		ModelAnswer:  fmt.Sprintf("A strong response covers the key concepts of %s with concrete examples and clear reasoning.", topic),
		Rubric:       tmpl.rubric,
		Explanation:  "Essay responses are scored against the rubric.",
	}
}

func applyScoring(question *GeneratedQuestion) {
	switch question.QuestionType {
	case models.QuestionEssay:
		question.Points = essayPoints
		question.TimeLimitSeconds = essayTimeSeconds
	case models.QuestionFillInBlank:
		question.Points = fillPoints
		question.TimeLimitSeconds = fillTimeSeconds
	default:
		question.Points = mcqPoints
		question.TimeLimitSeconds = mcqTimeSeconds
	}
}

// EvaluateResponse grades a learner response against the stored assessment.
func EvaluateResponse(assessment *models.Assessment, responseContent, selectedOptionID string) Evaluation {
	switch assessment.QuestionType {
	case models.QuestionFillInBlank:
		return evaluateFill(assessment, responseContent)
	case models.QuestionEssay:
		return evaluateEssay(assessment, responseContent)
	default:
		return evaluateMCQ(assessment, responseContent, selectedOptionID)
	}
}

func evaluateMCQ(assessment *models.Assessment, responseContent, selectedOptionID string) Evaluation {
	options := assessment.OptionList()
	concepts := models.StringList(assessment.Concepts)

	var correctID, correctText string
	for _, option := range options {
		if option.IsCorrect {
			correctID = option.ID
			correctText = option.Text
			break
		}
	}

	isCorrect := false
	if selectedOptionID != "" && strings.EqualFold(selectedOptionID, correctID) {
		isCorrect = true
	} else if responseContent != "" && strings.EqualFold(strings.TrimSpace(responseContent), correctText) {
		isCorrect = true
	} else if selectedOptionID != "" {
		// Some clients send the option text in place of the id.
		for _, option := range options {
			if option.IsCorrect && strings.EqualFold(selectedOptionID, option.Text) {
				isCorrect = true
				break
			}
		}
	}

	eval := Evaluation{
		IsCorrect:       isCorrect,
		MaxScore:        float64(assessment.Points),
		CorrectAnswer:   correctText,
		CorrectOptionID: correctID,
		Misconceptions:  []string{},
		KnowledgeGaps:   []string{},
	}

	if isCorrect {
		eval.Score = float64(assessment.Points)
		eval.ConceptualUnderstanding = 100
		eval.Explanation = "Correct. " + correctText
		eval.NextSteps = []string{"Continue to next question"}
	} else {
		eval.ConceptualUnderstanding = 30
		eval.Explanation = fmt.Sprintf("The correct answer is %s: %s", correctID, correctText)
		eval.Misconceptions = []string{"Selected incorrect option"}
		eval.KnowledgeGaps = concepts
		eval.NextSteps = []string{"Review the concept"}
	}
	return eval
}

func evaluateFill(assessment *models.Assessment, responseContent string) Evaluation {
	answer := strings.ToLower(strings.TrimSpace(responseContent))
	expected := strings.ToLower(strings.TrimSpace(assessment.BlankAnswer))
	concepts := models.StringList(assessment.Concepts)

	acceptable := map[string]bool{expected: true}
	for _, alt := range models.StringList(assessment.AcceptableAnswers) {
		acceptable[strings.ToLower(strings.TrimSpace(alt))] = true
	}

	eval := Evaluation{
		MaxScore:       float64(assessment.Points),
		CorrectAnswer:  assessment.BlankAnswer,
		Misconceptions: []string{},
		KnowledgeGaps:  []string{},
	}

	switch {
	case answer != "" && acceptable[answer]:
		eval.IsCorrect = true
		eval.Score = float64(assessment.Points)
		eval.ConceptualUnderstanding = 100
		eval.Explanation = "Correct."
		eval.NextSteps = []string{"Continue to next question"}
	case answer != "" && (strings.Contains(expected, answer) || strings.Contains(answer, expected)):
		// Partial credit for a near miss.
		eval.Score = float64(assessment.Points) * 0.5
		eval.ConceptualUnderstanding = 50
		eval.Explanation = fmt.Sprintf("Close. The expected answer is %q.", assessment.BlankAnswer)
		eval.KnowledgeGaps = concepts
		eval.NextSteps = []string{"Review the concept"}
	default:
		eval.ConceptualUnderstanding = 20
		eval.Explanation = fmt.Sprintf("The expected answer is %q.", assessment.BlankAnswer)
		eval.Misconceptions = []string{"Answer does not match the expected term"}
		eval.KnowledgeGaps = concepts
		eval.NextSteps = []string{"Review the concept"}
	}
	return eval
}

// evaluateEssay grades by length heuristics when no LLM is configured;
// with an LLM it grades against the rubric.
func evaluateEssay(assessment *models.Assessment, responseContent string) Evaluation {
	llm, err := NewLLMClient()
	if err == nil {
		eval, llmErr := evaluateEssayWithLLM(llm, assessment, responseContent)
		if llmErr == nil {
			return eval
		}
		log.Println("LLM essay evaluation failed, using heuristics:", llmErr)
	}

	points := float64(assessment.Points)
	wordCount := len(strings.Fields(responseContent))
	concepts := models.StringList(assessment.Concepts)

	eval := Evaluation{
		MaxScore:       points,
		CorrectAnswer:  assessment.ModelAnswer,
		Misconceptions: []string{},
		KnowledgeGaps:  []string{},
		NextSteps:      []string{"Review the model answer"},
	}

	switch {
	case wordCount < 10:
		eval.Score = 0
		eval.ConceptualUnderstanding = 10
		eval.Explanation = "The response is too short to evaluate. Aim for a fuller answer."
		eval.KnowledgeGaps = concepts
	case wordCount < 50:
		eval.Score = points * 0.5
		eval.ConceptualUnderstanding = 50
		eval.Explanation = "A reasonable start. Expand your reasoning with examples and detail."
	default:
		eval.Score = points * 0.7
		eval.ConceptualUnderstanding = 70
		eval.Explanation = "A substantial response. Compare it with the model answer for coverage."
		eval.NextSteps = []string{"Continue to next question"}
	}

	eval.IsCorrect = eval.Score > points*0.5
	return eval
}

func evaluateEssayWithLLM(llm *LLMClient, assessment *models.Assessment, responseContent string) (Evaluation, error) {
	rubric := ""
	if len(assessment.Rubric) > 0 {
		rubric = string(assessment.Rubric)
	}

	systemPrompt := "You are an educational essay grader. Respond with JSON only, shaped as: " +
		`{"is_correct":true,"score":0.0,"conceptual_understanding":0.0,"explanation":"...",` +
		`"misconceptions":[],"knowledge_gaps":[],"next_steps":[]}`

	userPrompt := fmt.Sprintf("Question: %s\nModel answer: %s\nRubric: %s\nMax score: %d\n\nLearner response:\n%s",
		assessment.QuestionText, assessment.ModelAnswer, rubric, assessment.Points, responseContent)

	var eval Evaluation
	if err := llm.CompleteJSON(systemPrompt, userPrompt, &eval); err != nil {
		return Evaluation{}, err
	}

	eval.MaxScore = float64(assessment.Points)
	if eval.Score > eval.MaxScore {
		eval.Score = eval.MaxScore
	}
	eval.CorrectAnswer = assessment.ModelAnswer
	if eval.Misconceptions == nil {
		eval.Misconceptions = []string{}
	}
	if eval.KnowledgeGaps == nil {
		eval.KnowledgeGaps = []string{}
	}
	if eval.NextSteps == nil {
		eval.NextSteps = []string{"Continue to next question"}
	}
	return eval, nil
}
