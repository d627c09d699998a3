package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	videosCollection   = "videos"
	commentsCollection = "comments"
	defaultDBName      = "tiktok_crawler"
)

// Mongo é o adapter do storage.Store para MongoDB.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	videos   *mongodriver.Collection
	comments *mongodriver.Collection
}

// New conecta, faz ping e garante os índices. O nome do banco vem do path da URI.
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(uri))
	m := &Mongo{
		client:   cli,
		db:       db,
		videos:   db.Collection(videosCollection),
		comments: db.Collection(commentsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes:
// - videos.url único (identidade do vídeo)
// - comments.fingerprint único (dedup entre execuções)
// - comments por vídeo na ordem de extração
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.videos.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetName("url_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes (videos): %w", err)
	}

	_, err = m.comments.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetName("fingerprint_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "crawled_at", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetName("video_crawled_position"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes (comments): %w", err)
	}
	return nil
}

// databaseFromURI extrai o nome do banco do path da URI mongodb.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
