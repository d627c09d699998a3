// Package crawler orquestra perfil → vídeos → comentários sobre uma única aba.
package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/loviiin/argus-crawler/pkg/config"
	"github.com/loviiin/argus-crawler/pkg/dedup"
	"github.com/loviiin/argus-crawler/pkg/metrics"
	"github.com/loviiin/argus-crawler/pkg/retry"
	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/scroll"
	"github.com/loviiin/argus-crawler/services/crawler/internal/session"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

// ErrNavigation indica que o Navigator desistiu do alvo.
var ErrNavigation = errors.New("falha de navegação")

// Navigator é satisfeito por *session.Navigator.
type Navigator interface {
	Navigate(ctx context.Context, targetURL string) bool
}

// Page é o que o crawler faz direto na aba, fora do scroll de comentários.
type Page interface {
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	// WaitForAny devolve o primeiro seletor que apareceu dentro de timeout (por seletor).
	WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, bool)
	// ClickFirst clica no primeiro seletor presente e devolve qual foi ("" se nenhum).
	ClickFirst(ctx context.Context, selectors []string) (string, error)
	ScrollViewport(ctx context.Context) error
	// VideoLinks é o passe em-página: hrefs crus de todos os a[href*="/video/"].
	VideoLinks(ctx context.Context) ([]string, error)
}

// CommentPanel carrega e expande o painel de comentários.
type CommentPanel interface {
	scroll.Actions
	scroll.ReplyExpander
	Count(ctx context.Context) (int, error)
}

// MediaFetcher é satisfeito por *media.Downloader.
type MediaFetcher interface {
	Fetch(ctx context.Context, v *models.Video)
}

// Indexer é satisfeito por *search.Indexer.
type Indexer interface {
	IndexVideo(v *models.Video, comments []models.Comment) error
}

// Deps são as dependências do Crawler. Dedup, Diag, Media e Index são opcionais.
type Deps struct {
	Navigator Navigator
	Page      Page
	Panel     CommentPanel
	Store     storage.Store
	Dedup     *dedup.Deduplicator
	Diag      *session.Diagnostics
	Media     MediaFetcher
	Index     Indexer
	Metrics   *metrics.Crawler
}

type Config struct {
	Origin               string
	MaxVideosPerProfile  int
	DelayBetweenVideos   time.Duration
	DelayBetweenProfiles time.Duration
	DelayBetweenComments time.Duration
	MaxRetries           int
	RetryStep            time.Duration
	ProfileScrolls       int
	ProfileScrollSettle  time.Duration
	PageSettle           time.Duration
	Scroll               scroll.Config
	Replies              scroll.ReplyConfig
	Sleep                scroll.SleepFunc
}

// ConfigFrom traduz o config do projeto.
func ConfigFrom(cfg *config.Config) Config {
	sc := scroll.DefaultConfig()
	sc.MaxIterations = cfg.Scroll.MaxIterations
	sc.StallThreshold = cfg.Scroll.StallThreshold
	sc.LoadMoreAt = cfg.Scroll.LoadMoreAt
	sc.Settle = cfg.Scroll.Settle

	rc := scroll.DefaultReplyConfig()
	rc.MaxClicks = cfg.Scroll.MaxReplyClicks
	rc.Settle = cfg.Scroll.ReplySettle

	return Config{
		Origin:               cfg.Crawl.Origin,
		MaxVideosPerProfile:  cfg.Crawl.MaxVideosPerProfile,
		DelayBetweenVideos:   cfg.Crawl.DelayBetweenVideos,
		DelayBetweenProfiles: cfg.Crawl.DelayBetweenProfiles,
		DelayBetweenComments: cfg.Crawl.DelayBetweenComments,
		MaxRetries:           cfg.Crawl.MaxRetries,
		RetryStep:            cfg.Crawl.RetryStep,
		ProfileScrolls:       cfg.Crawl.ProfileScrolls,
		ProfileScrollSettle:  2 * time.Second,
		PageSettle:           cfg.Session.Settle,
		Scroll:               sc,
		Replies:              rc,
	}
}

type Crawler struct {
	nav     Navigator
	page    Page
	panel   CommentPanel
	store   storage.Store
	dedup   *dedup.Deduplicator
	diag    *session.Diagnostics
	media   MediaFetcher
	index   Indexer
	metrics *metrics.Crawler
	cfg     Config
}

func New(d Deps, cfg Config) *Crawler {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if cfg.Sleep != nil {
		cfg.Scroll.Sleep = cfg.Sleep
		cfg.Replies.Sleep = cfg.Sleep
	}
	return &Crawler{
		nav:     d.Navigator,
		page:    d.Page,
		panel:   d.Panel,
		store:   d.Store,
		dedup:   d.Dedup,
		diag:    d.Diag,
		media:   d.Media,
		index:   d.Index,
		metrics: d.Metrics,
		cfg:     cfg,
	}
}

func (c *Crawler) sleep(ctx context.Context, d time.Duration) error {
	if c.cfg.Sleep != nil {
		return c.cfg.Sleep(ctx, d)
	}
	return retry.Sleep(ctx, d)
}

// retryConfig: espera de 1s*tentativa entre as tentativas de um perfil ou vídeo.
func (c *Crawler) retryConfig(name string) retry.Config {
	return retry.Config{MaxAttempts: c.cfg.MaxRetries, Step: c.cfg.RetryStep, Name: name}
}
