package agents

import (
	"fmt"
	"log"
	"strings"
	"unicode"
)

// AnalyzeQuery classifies the learner's query into intent, topic and
// recommendations. Uses the LLM when available, otherwise rule-based
// classification.
func AnalyzeQuery(query string, pctx *PipelineContext) QueryAnalysis {
	llm, err := NewLLMClient()
	if err == nil {
		analysis, llmErr := analyzeWithLLM(llm, query, pctx)
		if llmErr == nil {
			return analysis
		}
		log.Println("LLM query analysis failed, falling back to rules:", llmErr)
	}
	return analyzeWithRules(query, pctx)
}

func analyzeWithLLM(llm *LLMClient, query string, pctx *PipelineContext) (QueryAnalysis, error) {
	systemPrompt := "You are an educational query analyzer. Classify the learner's input and respond with JSON only, shaped as: " +
		`{"intent":{"primary":"...","confidence":0.0},"topic":{"main":"...","subtopics":[],"subject":"..."},` +
		`"blooms_level":"...","complexity":"basic|intermediate|advanced",` +
		`"recommendations":{"suggested_difficulty":"easy|medium|hard","question_type":"mcq|fill_in_blank|essay","focus_areas":[]}}`

	userPrompt := fmt.Sprintf("Learner query: %q\nSession topic: %s\nRecent accuracy: %.0f%%",
		query, pctx.Topic, pctx.RecentAccuracy)

	var analysis QueryAnalysis
	if err := llm.CompleteJSON(systemPrompt, userPrompt, &analysis); err != nil {
		return QueryAnalysis{}, err
	}
	if analysis.Intent.Primary == "" {
		return QueryAnalysis{}, fmt.Errorf("model output missing intent")
	}
	fillAnalysisDefaults(&analysis, query, pctx)
	return analysis, nil
}

// analyzeWithRules is a keyword classifier used when no LLM is configured
// or the call fails.
func analyzeWithRules(query string, pctx *PipelineContext) QueryAnalysis {
	queryLower := strings.ToLower(query)
	wordCount := len(strings.Fields(query))

	intent := "general_question"
	switch {
	case containsAny(queryLower, "what is", "define", "meaning of"):
		intent = "definition_seeking"
	case containsAny(queryLower, "explain", "how does", "why"):
		intent = "explanation_seeking"
	case containsAny(queryLower, "confused", "don't understand", "clarify"):
		intent = "clarification_seeking"
	case hasAnyWord(queryLower, "example", "apply", "use"):
		intent = "application_seeking"
	case wordCount < 20:
		intent = "assessment_response"
	}

	topic := pctx.Topic
	if topic == "" {
		words := strings.Fields(query)
		if len(words) > 3 {
			words = words[:3]
		}
		topic = strings.Join(words, " ")
	}

	complexity := "advanced"
	if wordCount < 10 {
		complexity = "basic"
	} else if wordCount < 50 {
		complexity = "intermediate"
	}

	difficulty := "easy"
	if pctx.RecentAccuracy > 80 {
		difficulty = "hard"
	} else if pctx.RecentAccuracy > 60 {
		difficulty = "medium"
	}

	return QueryAnalysis{
		Intent:      Intent{Primary: intent, Confidence: 0.7},
		Topic:       TopicInfo{Main: topic, Subtopics: []string{}, Subject: "general"},
		BloomsLevel: "understand",
		Complexity:  complexity,
		Recommendations: Recommendations{
			SuggestedDifficulty: difficulty,
			QuestionType:        "mcq",
			FocusAreas:          []string{},
		},
	}
}

func fillAnalysisDefaults(analysis *QueryAnalysis, query string, pctx *PipelineContext) {
	if analysis.Topic.Main == "" {
		analysis.Topic.Main = pctx.Topic
	}
	if analysis.Topic.Main == "" {
		words := strings.Fields(query)
		if len(words) > 3 {
			words = words[:3]
		}
		analysis.Topic.Main = strings.Join(words, " ")
	}
	if analysis.Topic.Subtopics == nil {
		analysis.Topic.Subtopics = []string{}
	}
	if analysis.Recommendations.SuggestedDifficulty == "" {
		analysis.Recommendations.SuggestedDifficulty = "medium"
	}
	if analysis.Recommendations.QuestionType == "" {
		analysis.Recommendations.QuestionType = "mcq"
	}
	if analysis.Recommendations.FocusAreas == nil {
		analysis.Recommendations.FocusAreas = []string{}
	}
	if analysis.Intent.Confidence == 0 {
		analysis.Intent.Confidence = 0.3
	}
}

func containsAny(text string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

// hasAnyWord matches whole words only, so short keywords like "use" do
// not fire inside words such as "because" or "confused".
func hasAnyWord(text string, words ...string) bool {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, token := range tokens {
		for _, word := range words {
			if token == word {
				return true
			}
		}
	}
	return false
}
