package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

// MongoDB DateTime guarda milissegundos.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// FindVideoByURL devolve storage.ErrNotFound quando a URL não existe.
func (m *Mongo) FindVideoByURL(ctx context.Context, url string) (*models.Video, error) {
	const op = "storage/mongo/FindVideoByURL"

	var out models.Video
	err := m.videos.FindOne(ctx, bson.D{{Key: "url", Value: strings.TrimSpace(url)}}).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}

// SaveVideo insere o vídeo. O registro nunca é atualizado depois.
func (m *Mongo) SaveVideo(ctx context.Context, v *models.Video) error {
	const op = "storage/mongo/SaveVideo"

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.CreatedAt = toMS(v.CreatedAt)
	if v.Hashtags == nil {
		v.Hashtags = []string{}
	}

	if _, err := m.videos.InsertOne(ctx, v); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	return nil
}

// ListVideos devolve os vídeos de urls (na ordem pedida) ou todos, do mais antigo ao mais novo.
func (m *Mongo) ListVideos(ctx context.Context, urls []string) ([]models.Video, error) {
	const op = "storage/mongo/ListVideos"

	filter := bson.D{}
	if len(urls) > 0 {
		filter = bson.D{{Key: "url", Value: bson.D{{Key: "$in", Value: urls}}}}
	}

	cur, err := m.videos.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Video
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	if len(urls) == 0 {
		return out, nil
	}

	byURL := make(map[string]models.Video, len(out))
	for _, v := range out {
		byURL[v.URL] = v
	}
	ordered := make([]models.Video, 0, len(out))
	for _, u := range urls {
		if v, ok := byURL[u]; ok {
			ordered = append(ordered, v)
			delete(byURL, u)
		}
	}
	return ordered, nil
}
