package search

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
)

const primaryKey = "video_id"

// Indexer guarda a conexão com o índice de vídeos.
type Indexer struct {
	client    meilisearch.ServiceManager
	indexName string
}

// NewIndexer conecta e garante que o índice existe com os atributos certos.
func NewIndexer(host, apiKey, indexName string) *Indexer {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))

	_, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        indexName,
		PrimaryKey: primaryKey, // id do vídeo na URL: reindexar faz upsert em vez de duplicar
	})
	if err != nil {
		log.Printf("Aviso Meilisearch: %v", err)
	}

	client.Index(indexName).UpdateSearchableAttributes(&[]string{
		"title",
		"channel",
		"hashtags",
		"comments",
	})

	client.Index(indexName).UpdateSortableAttributes(&[]string{
		"likes",
		"comments_count",
		"shared",
	})

	filterableAttrs := []interface{}{"channel", "hashtags"}
	client.Index(indexName).UpdateFilterableAttributes(&filterableAttrs)

	log.Printf("[Search] conectado ao Meilisearch (índice %s)", indexName)

	return &Indexer{
		client:    client,
		indexName: indexName,
	}
}

// VideoID extrai o id numérico de uma URL .../video/<id>. Meilisearch só aceita
// [a-zA-Z0-9_-] na PK, então sem o marcador cai no path higienizado.
func VideoID(videoURL string) string {
	u, err := url.Parse(videoURL)
	path := videoURL
	if err == nil {
		path = u.Path
	}
	if i := strings.LastIndex(path, "/video/"); i >= 0 {
		id := path[i+len("/video/"):]
		if j := strings.IndexAny(id, "/?#"); j >= 0 {
			id = id[:j]
		}
		if id != "" {
			return sanitize(id)
		}
	}
	return sanitize(strings.Trim(path, "/"))
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Document monta o documento do vídeo com o texto dos comentários de topo.
// map em vez de struct pra não sobrescrever campos com zero-values no upsert parcial.
func Document(v *models.Video, comments []models.Comment) map[string]interface{} {
	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		if !c.IsReply {
			texts = append(texts, c.Content)
		}
	}
	return map[string]interface{}{
		primaryKey:       VideoID(v.URL),
		"url":            v.URL,
		"title":          v.Title,
		"channel":        v.Channel,
		"hashtags":       v.Hashtags,
		"likes":          v.Likes,
		"comments_count": v.CommentsCount,
		"shared":         v.Shared,
		"saved":          v.Saved,
		"comments":       texts,
	}
}

// IndexVideo faz upsert parcial do vídeo.
func (i *Indexer) IndexVideo(v *models.Video, comments []models.Comment) error {
	doc := Document(v, comments)
	pk := primaryKey
	task, err := i.client.Index(i.indexName).UpdateDocuments([]map[string]interface{}{doc}, &meilisearch.DocumentOptions{PrimaryKey: &pk})
	if err != nil {
		return fmt.Errorf("erro ao indexar vídeo %s: %w", v.URL, err)
	}

	log.Printf("[Search] enviado para Meilisearch (Task UID: %d, PK: %s)", task.TaskUID, doc[primaryKey])
	return nil
}
