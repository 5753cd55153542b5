package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type KnowledgeChunk struct {
	gorm.Model
	ContentID string `gorm:"uniqueIndex;not null" json:"content_id"`

	// Source information
	SourceType   string `gorm:"default:'manual'" json:"source_type"` // textbook, article, video_transcript
	SourceTitle  string `json:"source_title"`
	SourceURL    string `gorm:"default:''" json:"source_url"`
	SourceAuthor string `gorm:"default:''" json:"source_author"`

	ContentText    string `gorm:"not null" json:"content_text"`
	ContentSummary string `gorm:"default:''" json:"content_summary"`

	Subject   string         `gorm:"index" json:"subject"`
	Topic     string         `gorm:"index" json:"topic"`
	Subtopics datatypes.JSON `json:"subtopics"` // []string

	Difficulty    string `gorm:"default:'medium'" json:"difficulty"`
	AcademicLevel string `gorm:"default:'undergraduate'" json:"academic_level"`

	Keywords      datatypes.JSON `json:"keywords"`      // []string
	Concepts      datatypes.JSON `json:"concepts"`      // []string
	Prerequisites datatypes.JSON `json:"prerequisites"` // []string

	// Vector embedding, stored alongside the row for index rebuilds
	EmbeddingModel  string         `gorm:"default:'hash-seeded-v1'" json:"embedding_model"`
	EmbeddingVector datatypes.JSON `json:"embedding_vector"` // []float64

	QualityScore   float64 `gorm:"default:1" json:"quality_score"`
	RelevanceScore float64 `gorm:"default:1" json:"relevance_score"`
	TimesRetrieved int     `gorm:"default:0" json:"times_retrieved"`

	// Modality suitability, 0-1
	TextSuitability    float64 `gorm:"default:1" json:"text_suitability"`
	VoiceSuitability   float64 `gorm:"default:0.8" json:"voice_suitability"`
	DiagramSuitability float64 `gorm:"default:0.5" json:"diagram_suitability"`

	Metadata  datatypes.JSON `json:"metadata"`
	IsDeleted bool           `gorm:"default:false"`
}
