package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/go-rod/rod"
	"github.com/redis/go-redis/v9"

	"github.com/loviiin/argus-crawler/pkg/dedup"
	"github.com/loviiin/argus-crawler/services/crawler/internal/crawler"
	"github.com/loviiin/argus-crawler/services/crawler/internal/media"
	"github.com/loviiin/argus-crawler/services/crawler/internal/scroll"
	"github.com/loviiin/argus-crawler/services/crawler/internal/search"
	"github.com/loviiin/argus-crawler/services/crawler/internal/session"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage/minio"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage/mongo"
)

// app junta os recursos de um comando. Fechar em ordem inversa de abertura.
type app struct {
	store   *mongo.Mongo
	rdb     *redis.Client
	dedup   *dedup.Deduplicator
	objects *minio.Objects
	browser *rod.Browser
	crawler *crawler.Crawler
}

// openStore abre só o storage (e o Redis, se configurado). Basta para export.
func openStore(ctx context.Context) (*app, error) {
	store, err := mongo.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a := &app{store: store}
	if err := a.openRedis(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// openRedis liga o dedup quando redis.address está configurado.
func (a *app) openRedis(ctx context.Context) error {
	if cfg.Redis.Address == "" {
		return nil
	}
	a.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := a.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("erro conectando ao Redis %s: %w", cfg.Redis.Address, err)
	}
	a.dedup = dedup.NewDeduplicator(a.rdb, cfg.Redis.TTLHours)
	log.Printf("[App] dedup via Redis em %s", cfg.Redis.Address)
	return nil
}

// openCrawler abre storage, browser e o crawler completo sobre uma aba.
func openCrawler(ctx context.Context) (*app, error) {
	a, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Debug.Upload || cfg.Media.Enabled {
		objs, err := minio.New(ctx, cfg.S3)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.objects = objs
	}

	browser, err := session.NewBrowser(cfg.Browser)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.browser = browser

	rodPage, err := session.NewPage(browser, cfg.Browser)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	var uploader session.Uploader
	if cfg.Debug.Upload && a.objects != nil {
		uploader = a.objects
	}
	diag := session.NewDiagnostics(cfg.Debug.Dir, uploader)
	go session.StartDebugSweeper(ctx, cfg.Debug.Dir, cfg.Debug.TTL)

	page := session.NewRodPage(rodPage, cfg.Session.NavigationTimeout)
	nav := session.NewNavigator(page, session.NewFileCookieStore(cfg.Session.CookiesDir), diag, session.NavConfigFrom(cfg))

	deps := crawler.Deps{
		Navigator: nav,
		Page:      crawler.NewRodPage(page),
		Panel:     scroll.NewCommentActions(rodPage),
		Store:     a.store,
		Dedup:     a.dedup,
		Diag:      diag,
		Metrics:   crawlM,
	}
	if cfg.Media.Enabled && a.objects != nil {
		deps.Media = media.NewDownloader(a.objects, cfg.Browser.UserAgent, cfg.Crawl.Origin+"/", cfg.Media.Timeout)
	}
	if cfg.Meilisearch.Host != "" {
		deps.Index = search.NewIndexer(cfg.Meilisearch.Host, cfg.Meilisearch.Key, cfg.Meilisearch.Index)
	}

	a.crawler = crawler.New(deps, crawler.ConfigFrom(cfg))
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			log.Printf("[App] erro fechando browser: %v", err)
		}
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.store != nil {
		// ctx pode já estar cancelado pelo sinal
		if err := a.store.Close(context.WithoutCancel(ctx)); err != nil {
			log.Printf("[App] erro fechando storage: %v", err)
		}
	}
}

func requireArgs(args []string, what string) error {
	if len(args) == 0 {
		return fmt.Errorf("informe ao menos uma URL de %s", what)
	}
	return nil
}
