package services

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"edusynapse/config"
	"edusynapse/database"
	"edusynapse/models"
	"edusynapse/utils"

	"github.com/google/uuid"
)

// KnowledgeSearchResult is one ranked hit from the knowledge base.
type KnowledgeSearchResult struct {
	ContentID      string   `json:"content_id"`
	ContentText    string   `json:"content_text"`
	ContentSummary string   `json:"content_summary"`
	Topic          string   `json:"topic"`
	Difficulty     string   `json:"difficulty"`
	RelevanceScore float64  `json:"relevance_score"`
	Concepts       []string `json:"concepts"`
}

// KnowledgeContent is the input shape for adding content, also the format
// of seed JSON files.
type KnowledgeContent struct {
	ContentID      string   `json:"content_id"`
	SourceType     string   `json:"source_type"`
	SourceTitle    string   `json:"source_title"`
	SourceURL      string   `json:"source_url"`
	ContentText    string   `json:"content_text"`
	ContentSummary string   `json:"content_summary"`
	Subject        string   `json:"subject"`
	Topic          string   `json:"topic"`
	Subtopics      []string `json:"subtopics"`
	Difficulty     string   `json:"difficulty"`
	Keywords       []string `json:"keywords"`
	Concepts       []string `json:"concepts"`
}

var (
	vectorStore     *utils.VectorStore
	vectorStoreOnce sync.Once
)

// KnowledgeIndex returns the process-wide vector index, building it from
// stored chunks on first use.
func KnowledgeIndex() *utils.VectorStore {
	vectorStoreOnce.Do(func() {
		vectorStore = utils.NewVectorStore(config.AppConfig.VectorIndexPath)
		rebuildVectorIndex()
	})
	return vectorStore
}

// rebuildVectorIndex re-indexes all stored chunks, generating embeddings
// for rows that lack one.
func rebuildVectorIndex() {
	db := database.Database.Db

	var chunks []models.KnowledgeChunk
	if err := db.Where("is_deleted = false").Find(&chunks).Error; err != nil {
		log.Printf("Failed to load knowledge chunks for indexing: %v", err)
		return
	}

	for i := range chunks {
		chunk := &chunks[i]

		var vector []float64
		if len(chunk.EmbeddingVector) > 0 {
			_ = json.Unmarshal(chunk.EmbeddingVector, &vector)
		}
		if len(vector) == 0 {
			vector = utils.HashEmbedding(chunk.ContentText)
			chunk.EmbeddingVector = models.MustJSON(vector)
			db.Save(chunk)
		}

		vectorStore.Add(chunk.ContentID, vector, map[string]string{
			"topic":      chunk.Topic,
			"subject":    chunk.Subject,
			"difficulty": chunk.Difficulty,
		})
	}

	if len(chunks) > 0 {
		log.Printf("Rebuilt vector index with %d chunks", len(chunks))
	}
}

// AddKnowledgeContent stores a chunk and indexes its embedding. Returns the
// content ID; adding an existing content_id is a no-op.
func AddKnowledgeContent(content KnowledgeContent) (string, error) {
	db := database.Database.Db

	if content.ContentID == "" {
		content.ContentID = "chunk_" + uuid.NewString()
	}

	var existing models.KnowledgeChunk
	if err := db.Where("content_id = ?", content.ContentID).First(&existing).Error; err == nil {
		return existing.ContentID, nil
	}

	if content.SourceType == "" {
		content.SourceType = "manual"
	}
	if content.Subject == "" {
		content.Subject = "general"
	}
	if content.Topic == "" {
		content.Topic = "general"
	}
	if content.Difficulty == "" {
		content.Difficulty = "medium"
	}

	vector := utils.HashEmbedding(content.ContentText)

	chunk := models.KnowledgeChunk{
		ContentID:       content.ContentID,
		SourceType:      content.SourceType,
		SourceTitle:     content.SourceTitle,
		SourceURL:       content.SourceURL,
		ContentText:     content.ContentText,
		ContentSummary:  content.ContentSummary,
		Subject:         content.Subject,
		Topic:           content.Topic,
		Subtopics:       models.MustJSON(content.Subtopics),
		Difficulty:      content.Difficulty,
		Keywords:        models.MustJSON(content.Keywords),
		Concepts:        models.MustJSON(content.Concepts),
		EmbeddingVector: models.MustJSON(vector),
	}
	if err := db.Create(&chunk).Error; err != nil {
		return "", err
	}

	KnowledgeIndex().Add(chunk.ContentID, vector, map[string]string{
		"topic":      chunk.Topic,
		"subject":    chunk.Subject,
		"difficulty": chunk.Difficulty,
	})

	return chunk.ContentID, nil
}

// SearchKnowledge runs semantic search over the vector index, filtered by
// topic and difficulty, with modality suitability weighting. Falls back to
// keyword search when the index is empty.
func SearchKnowledge(query, topic, difficulty string, limit int, modality string) []KnowledgeSearchResult {
	db := database.Database.Db

	index := KnowledgeIndex()
	if index.Size() == 0 {
		return keywordSearch(query, topic, difficulty, limit)
	}

	queryVector := utils.HashEmbedding(query)
	matches := index.Search(queryVector, limit*2)

	var results []KnowledgeSearchResult
	for _, match := range matches {
		var chunk models.KnowledgeChunk
		if err := db.Where("content_id = ? AND is_deleted = false", match.ContentID).First(&chunk).Error; err != nil {
			continue
		}

		if topic != "" && !strings.EqualFold(chunk.Topic, topic) {
			continue
		}
		if difficulty != "" && chunk.Difficulty != difficulty {
			continue
		}

		modalityScore := 1.0
		switch modality {
		case "voice":
			modalityScore = chunk.VoiceSuitability
		case "diagram":
			modalityScore = chunk.DiagramSuitability
		}

		results = append(results, KnowledgeSearchResult{
			ContentID:      chunk.ContentID,
			ContentText:    chunk.ContentText,
			ContentSummary: chunk.ContentSummary,
			Topic:          chunk.Topic,
			Difficulty:     chunk.Difficulty,
			RelevanceScore: match.Score * modalityScore,
			Concepts:       models.StringList(chunk.Concepts),
		})

		db.Model(&chunk).Update("times_retrieved", chunk.TimesRetrieved+1)
	}

	sortByRelevance(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// keywordSearch scores chunks by keyword and content word overlap.
func keywordSearch(query, topic, difficulty string, limit int) []KnowledgeSearchResult {
	db := database.Database.Db

	tx := db.Where("is_deleted = false")
	if topic != "" {
		tx = tx.Where("topic = ?", topic)
	}
	if difficulty != "" {
		tx = tx.Where("difficulty = ?", difficulty)
	}

	var chunks []models.KnowledgeChunk
	if err := tx.Limit(limit * 2).Find(&chunks).Error; err != nil {
		return nil
	}

	queryWords := wordSet(query)

	var results []KnowledgeSearchResult
	for _, chunk := range chunks {
		contentWords := wordSet(chunk.ContentText)

		keywordMatches := 0
		for _, keyword := range models.StringList(chunk.Keywords) {
			if queryWords[lower(keyword)] {
				keywordMatches++
			}
		}
		contentMatches := 0
		for word := range queryWords {
			if contentWords[word] {
				contentMatches++
			}
		}

		score := float64(keywordMatches*2+contentMatches) / float64(len(queryWords)+1)
		if score <= 0 {
			continue
		}
		if score > 1 {
			score = 1
		}

		results = append(results, KnowledgeSearchResult{
			ContentID:      chunk.ContentID,
			ContentText:    chunk.ContentText,
			ContentSummary: chunk.ContentSummary,
			Topic:          chunk.Topic,
			Difficulty:     chunk.Difficulty,
			RelevanceScore: score,
			Concepts:       models.StringList(chunk.Concepts),
		})
	}

	sortByRelevance(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// LoadSeedContent loads every *.json file under the knowledge base path,
// adding each entry and persisting the rebuilt index.
func LoadSeedContent() (int, error) {
	kbPath := config.AppConfig.KnowledgeBasePath

	entries, err := os.ReadDir(kbPath)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(kbPath, 0o755); mkErr != nil {
				return 0, mkErr
			}
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(kbPath, entry.Name()))
		if err != nil {
			log.Printf("Failed to read %s: %v", entry.Name(), err)
			continue
		}

		var batch []KnowledgeContent
		if err := json.Unmarshal(raw, &batch); err != nil {
			var single KnowledgeContent
			if err := json.Unmarshal(raw, &single); err != nil {
				log.Printf("Failed to parse %s: %v", entry.Name(), err)
				continue
			}
			batch = []KnowledgeContent{single}
		}

		for _, content := range batch {
			if _, err := AddKnowledgeContent(content); err == nil {
				count++
			}
		}
		log.Printf("Loaded content from %s", entry.Name())
	}

	if err := KnowledgeIndex().Save(); err != nil {
		log.Printf("Failed to save vector index: %v", err)
	}
	return count, nil
}

// AvailableTopics lists distinct topics in the knowledge base.
func AvailableTopics() []string {
	db := database.Database.Db

	var topics []string
	db.Model(&models.KnowledgeChunk{}).
		Where("is_deleted = false").
		Distinct("topic").
		Pluck("topic", &topics)
	return topics
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}

func sortByRelevance(results []KnowledgeSearchResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
}
