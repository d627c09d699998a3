package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

// SaveComment insere um comentário. Fingerprint repetido vira storage.ErrConflict.
func (m *Mongo) SaveComment(ctx context.Context, c *models.Comment) error {
	const op = "storage/mongo/SaveComment"

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CrawledAt.IsZero() {
		c.CrawledAt = time.Now()
	}
	c.CrawledAt = toMS(c.CrawledAt)

	if _, err := m.comments.InsertOne(ctx, c); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	return nil
}

// FindCommentByFingerprint busca o comentário já gravado com esse fingerprint.
func (m *Mongo) FindCommentByFingerprint(ctx context.Context, fingerprint string) (*models.Comment, error) {
	const op = "storage/mongo/FindCommentByFingerprint"

	var out models.Comment
	if err := m.comments.FindOne(ctx, bson.D{{Key: "fingerprint", Value: fingerprint}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// FindComments lista os comentários do vídeo na ordem em que foram gravados.
func (m *Mongo) FindComments(ctx context.Context, videoID string, f models.CommentFilter) ([]models.Comment, error) {
	const op = "storage/mongo/FindComments"

	filter := bson.D{{Key: "video_id", Value: videoID}}
	if f.HasReplies != nil {
		filter = append(filter, bson.E{Key: "has_replies", Value: *f.HasReplies})
	}
	if f.IsReply != nil {
		filter = append(filter, bson.E{Key: "is_reply", Value: *f.IsReply})
	}

	// position desempata comentários da mesma extração
	opts := options.Find().SetSort(bson.D{{Key: "crawled_at", Value: 1}, {Key: "position", Value: 1}})
	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var out []models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	for i := range out {
		out[i].CrawledAt = out[i].CrawledAt.UTC()
	}
	return out, nil
}

var _ storage.Store = (*Mongo)(nil)
