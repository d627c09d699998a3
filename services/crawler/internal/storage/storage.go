package storage

import (
	"context"
	"errors"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
)

var (
	// ErrNotFound: registro não existe.
	ErrNotFound = errors.New("not found")
	// ErrConflict: violação de unicidade (url do vídeo ou fingerprint do comentário).
	ErrConflict = errors.New("conflict")
)

// Store é o document store de vídeos e comentários.
type Store interface {
	// FindVideoByURL devolve ErrNotFound quando a URL nunca foi salva.
	FindVideoByURL(ctx context.Context, url string) (*models.Video, error)

	// SaveVideo insere o vídeo e preenche ID/CreatedAt se vazios.
	// URL repetida devolve ErrConflict.
	SaveVideo(ctx context.Context, v *models.Video) error

	// SaveComment insere o comentário e preenche ID/CrawledAt se vazios.
	// Fingerprint repetido devolve ErrConflict.
	SaveComment(ctx context.Context, c *models.Comment) error

	// FindCommentByFingerprint devolve ErrNotFound quando o fingerprint é novo.
	FindCommentByFingerprint(ctx context.Context, fingerprint string) (*models.Comment, error)

	// FindComments lista os comentários de um vídeo na ordem de extração.
	FindComments(ctx context.Context, videoID string, f models.CommentFilter) ([]models.Comment, error)

	// ListVideos devolve os vídeos das URLs pedidas, ou todos quando urls é vazio.
	ListVideos(ctx context.Context, urls []string) ([]models.Video, error)

	Close(ctx context.Context) error
}
