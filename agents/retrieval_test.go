package agents

import (
	"strings"
	"testing"
)

func TestExpandQuery(t *testing.T) {
	tests := []struct {
		name     string
		analysis QueryAnalysis
		contains []string
	}{
		{
			name: "topic with subtopics and intent terms",
			analysis: QueryAnalysis{
				Intent: Intent{Primary: "definition_seeking"},
				Topic:  TopicInfo{Main: "algebra", Subtopics: []string{"equations", "variables"}},
			},
			contains: []string{"algebra", "equations", "variables", "definition", "meaning"},
		},
		{
			name: "unknown intent adds no expansion terms",
			analysis: QueryAnalysis{
				Intent: Intent{Primary: "assessment_seeking"},
				Topic:  TopicInfo{Main: "biology"},
			},
			contains: []string{"biology"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := expandQuery(tt.analysis)
			for _, part := range tt.contains {
				if !strings.Contains(query, part) {
					t.Errorf("expandQuery() = %q, missing %q", query, part)
				}
			}
		})
	}
}

func TestFallbackChunk(t *testing.T) {
	chunk := fallbackChunk("Linear Algebra")

	if chunk.ContentID != "fallback_linear_algebra" {
		t.Errorf("ContentID = %q", chunk.ContentID)
	}
	if chunk.RelevanceScore != 0.5 {
		t.Errorf("RelevanceScore = %v, want 0.5", chunk.RelevanceScore)
	}
	if chunk.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", chunk.Source)
	}
	if !strings.Contains(chunk.Content, "Linear Algebra") {
		t.Errorf("Content does not mention the topic: %q", chunk.Content)
	}

	empty := fallbackChunk("")
	if empty.ContentID != "fallback_general" {
		t.Errorf("empty topic ContentID = %q", empty.ContentID)
	}
}

func TestRankChunksBoostsAndCaps(t *testing.T) {
	analysis := QueryAnalysis{
		Recommendations: Recommendations{SuggestedDifficulty: "medium"},
	}
	pctx := &PipelineContext{
		Weaknesses:    []string{"Fractions"},
		KnowledgeGaps: []string{"equations"},
	}

	chunks := []ContentChunk{
		{ContentID: "plain", RelevanceScore: 0.6, Difficulty: "hard", Concepts: []string{"geometry"}},
		{ContentID: "boosted", RelevanceScore: 0.6, Difficulty: "medium", Concepts: []string{"fractions", "equations"}},
		{ContentID: "capped", RelevanceScore: 0.95, Difficulty: "medium", Concepts: []string{"fractions", "equations"}},
	}

	ranked := rankChunks(chunks, analysis, pctx)

	byID := map[string]ContentChunk{}
	for _, chunk := range ranked {
		byID[chunk.ContentID] = chunk
	}

	// 0.6 + 0.1 weakness + 0.15 gap + 0.1 difficulty match
	if got := byID["boosted"].FinalScore; got < 0.949 || got > 0.951 {
		t.Errorf("boosted FinalScore = %v, want 0.95", got)
	}
	if got := byID["plain"].FinalScore; got != 0.6 {
		t.Errorf("plain FinalScore = %v, want 0.6", got)
	}
	if got := byID["capped"].FinalScore; got != 1.0 {
		t.Errorf("capped FinalScore = %v, want 1.0", got)
	}

	if ranked[0].ContentID != "capped" {
		t.Errorf("top chunk = %q, want capped", ranked[0].ContentID)
	}
}

func TestRankChunksKeepsTopFive(t *testing.T) {
	chunks := make([]ContentChunk, 8)
	for i := range chunks {
		chunks[i] = ContentChunk{
			ContentID:      string(rune('a' + i)),
			RelevanceScore: float64(i) / 10,
		}
	}

	ranked := rankChunks(chunks, QueryAnalysis{}, &PipelineContext{})
	if len(ranked) != 5 {
		t.Fatalf("got %d chunks, want 5", len(ranked))
	}
	if ranked[0].ContentID != "h" {
		t.Errorf("top chunk = %q, want h", ranked[0].ContentID)
	}
}
