package agents

import (
	"fmt"
	"sort"
	"strings"

	"edusynapse/services"
)

// intentExpansionTerms widen the search query based on what the learner
// is asking for.
var intentExpansionTerms = map[string][]string{
	"definition_seeking":    {"definition", "meaning"},
	"explanation_seeking":   {"explanation", "how"},
	"application_seeking":   {"example", "application"},
	"clarification_seeking": {"simple explanation", "basics"},
}

// RetrieveContent searches the knowledge base for material matching the
// analyzed query, ranks it against the learner profile, and returns the
// top chunks. Always returns at least one chunk; a fallback is synthesized
// when nothing matches.
func RetrieveContent(analysis QueryAnalysis, pctx *PipelineContext) RetrievedContent {
	query := expandQuery(analysis)

	hits := services.SearchKnowledge(query, analysis.Topic.Main, "", 10, pctx.Modality)

	chunks := make([]ContentChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, ContentChunk{
			ContentID:      hit.ContentID,
			Content:        hit.ContentText,
			Summary:        hit.ContentSummary,
			Topic:          hit.Topic,
			Difficulty:     hit.Difficulty,
			RelevanceScore: hit.RelevanceScore,
			Concepts:       hit.Concepts,
			Source:         "knowledge_base",
		})
	}

	if len(chunks) == 0 {
		chunks = append(chunks, fallbackChunk(analysis.Topic.Main))
	}

	chunks = rankChunks(chunks, analysis, pctx)

	return RetrievedContent{
		Query:         query,
		ContentChunks: chunks,
		TotalFound:    len(chunks),
	}
}

// expandQuery combines the topic, its subtopics and intent expansion terms
// into a single search string.
func expandQuery(analysis QueryAnalysis) string {
	parts := []string{analysis.Topic.Main}
	parts = append(parts, analysis.Topic.Subtopics...)

	if terms, ok := intentExpansionTerms[analysis.Intent.Primary]; ok {
		if len(terms) > 2 {
			terms = terms[:2]
		}
		parts = append(parts, terms...)
	}

	return strings.Join(parts, " ")
}

// fallbackChunk synthesizes placeholder content when the knowledge base
// has nothing for the topic, so question generation can still run.
func fallbackChunk(topic string) ContentChunk {
	if topic == "" {
		topic = "general"
	}
	return ContentChunk{
		ContentID: "fallback_" + strings.ReplaceAll(strings.ToLower(topic), " ", "_"),
		Content: fmt.Sprintf(
			"%s is an important topic of study. Understanding its core concepts, "+
				"principles and applications builds a foundation for deeper learning. "+
				"Key aspects include fundamental definitions, practical examples and "+
				"common problem-solving approaches.", topic),
		Summary:        fmt.Sprintf("Introductory material on %s.", topic),
		Topic:          topic,
		Difficulty:     "medium",
		RelevanceScore: 0.5,
		Concepts:       []string{topic},
		Source:         "fallback",
	}
}

// rankChunks boosts chunks addressing the learner's weak concepts, known
// knowledge gaps and the recommended difficulty, then keeps the top 5.
func rankChunks(chunks []ContentChunk, analysis QueryAnalysis, pctx *PipelineContext) []ContentChunk {
	weaknesses := loweredSet(pctx.Weaknesses)
	gaps := loweredSet(pctx.KnowledgeGaps)

	for i := range chunks {
		score := chunks[i].RelevanceScore

		for _, concept := range chunks[i].Concepts {
			key := strings.ToLower(concept)
			if weaknesses[key] {
				score += 0.1
			}
			if gaps[key] {
				score += 0.15
			}
		}

		if chunks[i].Difficulty == analysis.Recommendations.SuggestedDifficulty {
			score += 0.1
		}

		if score > 1.0 {
			score = 1.0
		}
		chunks[i].FinalScore = score
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].FinalScore > chunks[j].FinalScore
	})

	if len(chunks) > 5 {
		chunks = chunks[:5]
	}
	return chunks
}

func loweredSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
