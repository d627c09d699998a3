package crawler

import (
	"context"
	"errors"
	"log"

	"github.com/loviiin/argus-crawler/pkg/dedup"
	"github.com/loviiin/argus-crawler/pkg/retry"
	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

// Summary conta o que aconteceu numa execução.
type Summary struct {
	Profiles int
	Videos   int
	Existing int
	Failed   int
}

// Run processa os perfis em ordem: links do perfil, os primeiros
// MaxVideosPerProfile vídeos, com delays entre vídeos e entre perfis. Falhas
// de um item são logadas e puladas; só o cancelamento de ctx interrompe.
func (c *Crawler) Run(ctx context.Context, profiles []string) (Summary, error) {
	var sum Summary

	for pi, profileURL := range profiles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log.Printf("[Crawler] Processando perfil %d/%d: %s", pi+1, len(profiles), profileURL)

		links, err := retry.Do(ctx, c.retryConfig("perfil "+profileURL), func(int) ([]string, error) {
			return c.CrawlProfile(ctx, profileURL)
		})
		if err != nil {
			log.Printf("[Crawler] ❌ erro no perfil %s: %v", profileURL, err)
		} else {
			sum.Profiles++
			if err := c.processVideos(ctx, links, &sum); err != nil {
				return sum, err
			}
		}

		if pi < len(profiles)-1 {
			log.Printf("[Crawler] aguardando %v antes do próximo perfil...", c.cfg.DelayBetweenProfiles)
			if err := c.sleep(ctx, c.cfg.DelayBetweenProfiles); err != nil {
				return sum, err
			}
		}
	}

	log.Printf("[Crawler] ✅ crawl concluído: %d perfis, %d vídeos novos, %d existentes, %d falhas",
		sum.Profiles, sum.Videos, sum.Existing, sum.Failed)
	return sum, nil
}

func (c *Crawler) processVideos(ctx context.Context, links []string, sum *Summary) error {
	toProcess := links
	if c.cfg.MaxVideosPerProfile > 0 && len(toProcess) > c.cfg.MaxVideosPerProfile {
		toProcess = toProcess[:c.cfg.MaxVideosPerProfile]
	}
	log.Printf("[Crawler] %d vídeos encontrados, processando %d", len(links), len(toProcess))

	for i, videoURL := range toProcess {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("[Crawler] vídeo %d/%d: %s", i+1, len(toProcess), videoURL)

		exists, err := c.videoExists(ctx, videoURL)
		switch {
		case err != nil:
			log.Printf("[Crawler] erro verificando %s: %v", videoURL, err)
			sum.Failed++
		case exists:
			log.Printf("[Crawler] vídeo já existe no banco: %s", videoURL)
			sum.Existing++
			// sem navegação, sem delay
			continue
		default:
			_, err := retry.Do(ctx, c.retryConfig("vídeo "+videoURL), func(int) (*models.Video, error) {
				return c.CrawlVideo(ctx, videoURL)
			})
			if err != nil {
				log.Printf("[Crawler] ❌ erro no vídeo %s: %v", videoURL, err)
				sum.Failed++
			} else {
				sum.Videos++
			}
		}

		if err := c.sleep(ctx, c.cfg.DelayBetweenVideos); err != nil {
			return err
		}
	}
	return nil
}

// videoExists consulta o seen-set do Redis antes do banco.
func (c *Crawler) videoExists(ctx context.Context, videoURL string) (bool, error) {
	if c.dedup != nil {
		seen, err := c.dedup.CheckIfProcessed(ctx, dedup.PrefixVideo, videoURL)
		if err != nil {
			log.Printf("[Crawler] erro redis CheckIfProcessed: %v", err)
		} else if seen {
			log.Printf("[Crawler] [Cache HIT] vídeo já processado: %s", videoURL)
			return true, nil
		}
	}
	_, err := c.store.FindVideoByURL(ctx, videoURL)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// RefreshAll atualiza os comentários de vários vídeos com DelayBetweenComments entre eles.
func (c *Crawler) RefreshAll(ctx context.Context, urls []string) (int, error) {
	total := 0
	for i, u := range urls {
		n, err := c.RefreshComments(ctx, u)
		if err != nil {
			log.Printf("[Crawler] ❌ refresh de %s falhou: %v", u, err)
		}
		total += n
		if i < len(urls)-1 {
			if err := c.sleep(ctx, c.cfg.DelayBetweenComments); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}
