// Package media baixa o arquivo de vídeo e guarda no object storage.
package media

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/search"
)

// ObjectStore é onde o arquivo baixado vai parar.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Location(key string) string
}

type Downloader struct {
	client *resty.Client
	store  ObjectStore
}

// NewDownloader usa o mesmo user agent do browser; o CDN recusa clientes sem Referer.
func NewDownloader(store ObjectStore, userAgent, referer string, timeout time.Duration) *Downloader {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("referer", referer)
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(time.Second)

	return &Downloader{client: client, store: store}
}

// Fetch baixa v.URLSource e preenche MediaObject ou DownloadError. Nunca falha
// o crawl: o erro fica registrado no próprio vídeo.
func (d *Downloader) Fetch(ctx context.Context, v *models.Video) {
	if err := d.fetch(ctx, v); err != nil {
		log.Printf("[Media] ⚠️  download de %s falhou: %v", v.URL, err)
		v.DownloadError = err.Error()
		return
	}
	log.Printf("[Media] ✅ %s → %s", v.URL, v.MediaObject)
}

func (d *Downloader) fetch(ctx context.Context, v *models.Video) error {
	src := strings.TrimSpace(v.URLSource)
	switch {
	case src == "":
		return fmt.Errorf("vídeo sem url de mídia")
	case strings.HasPrefix(src, "blob:"):
		return fmt.Errorf("url de mídia é blob (MSE), não baixável: %s", src)
	}

	res, err := d.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return fmt.Errorf("GET %s: %w", src, err)
	}
	if res.IsError() {
		return fmt.Errorf("GET %s: status %d", src, res.StatusCode())
	}
	body := res.Body()
	if len(body) == 0 {
		return fmt.Errorf("GET %s: corpo vazio", src)
	}

	contentType := res.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := "media/" + search.VideoID(v.URL) + ".mp4"
	if err := d.store.Upload(ctx, key, body, contentType); err != nil {
		return err
	}
	v.MediaObject = d.store.Location(key)
	return nil
}
