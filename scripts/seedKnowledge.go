package main

import (
	"encoding/json"
	"log"
	"os"

	"edusynapse/config"
	"edusynapse/database"
	"edusynapse/services"
)

// Seeds the knowledge base from a JSON file passed as the first argument,
// or from the configured knowledge base directory when none is given.
//
//	go run scripts/seedKnowledge.go [content.json]
func main() {
	config.LoadConfig()
	database.ConnectDb()

	if len(os.Args) < 2 {
		count, err := services.LoadSeedContent()
		if err != nil {
			log.Fatalf("Failed to load seed content: %v", err)
		}
		log.Printf("Loaded %d knowledge entries from %s", count, config.AppConfig.KnowledgeBasePath)
		return
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open JSON file: %v", err)
	}

	var batch []services.KnowledgeContent
	if err := json.Unmarshal(raw, &batch); err != nil {
		var single services.KnowledgeContent
		if err := json.Unmarshal(raw, &single); err != nil {
			log.Fatalf("Failed to parse JSON: %v", err)
		}
		batch = []services.KnowledgeContent{single}
	}

	added := 0
	for _, content := range batch {
		contentID, err := services.AddKnowledgeContent(content)
		if err != nil {
			log.Printf("Failed to add %q: %v", content.SourceTitle, err)
			continue
		}
		log.Printf("Added %s (%s)", contentID, content.Topic)
		added++
	}

	if err := services.KnowledgeIndex().Save(); err != nil {
		log.Printf("Failed to save vector index: %v", err)
	}

	log.Printf("Seeding complete: %d of %d entries added", added, len(batch))
}
