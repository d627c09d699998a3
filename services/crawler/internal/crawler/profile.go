package crawler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/loviiin/argus-crawler/services/crawler/internal/extract"
)

var profileContainerSelectors = []string{
	`div[class*="DivThreeColumnContainer"]`,
	`div[data-e2e="user-post-item-list"]`,
	`div[class*="DivItemContainer"]`,
	`div[class*="video-feed"]`,
}

const profileContainerWait = 5 * time.Second

// CrawlProfile devolve as URLs de vídeo do perfil: união do passe em-página
// com o passe sobre o HTML estático, sem duplicatas, na ordem em que apareceram.
func (c *Crawler) CrawlProfile(ctx context.Context, profileURL string) ([]string, error) {
	log.Printf("[Crawler] Crawling profile: %s", profileURL)

	if !c.nav.Navigate(ctx, profileURL) {
		c.metrics.Navigations.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNavigation, profileURL)
	}
	c.metrics.Navigations.WithLabelValues("ok").Inc()

	if err := c.sleep(ctx, c.cfg.PageSettle); err != nil {
		return nil, err
	}

	if sel, ok := c.page.WaitForAny(ctx, profileContainerSelectors, profileContainerWait); ok {
		log.Printf("[Crawler] container de vídeos encontrado: %s", sel)
	} else {
		log.Println("[Crawler] container de vídeos não encontrado, seguindo mesmo assim")
	}

	for i := 0; i < c.cfg.ProfileScrolls; i++ {
		if err := c.page.ScrollViewport(ctx); err != nil {
			log.Printf("[Crawler] erro no scroll %d do perfil: %v", i+1, err)
			break
		}
		if err := c.sleep(ctx, c.cfg.ProfileScrollSettle); err != nil {
			return nil, err
		}
		if i == 0 || i == c.cfg.ProfileScrolls-1 {
			c.diag.Screenshot(ctx, c.page, fmt.Sprintf("profile-scroll-%d", i))
		}
	}

	inPage, err := c.page.VideoLinks(ctx)
	if err != nil {
		log.Printf("[Crawler] erro no passe em-página: %v", err)
	}
	log.Printf("[Crawler] %d links de vídeo no passe em-página", len(inPage))

	html, err := c.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("lendo HTML do perfil: %w", err)
	}
	c.diag.HTML(ctx, "profile", html)

	var static []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		static = extract.ProfileLinks(doc, c.cfg.Origin)
	}
	log.Printf("[Crawler] %d links de vídeo no HTML estático", len(static))

	links := extract.MergeLinks(c.cfg.Origin, inPage, static)
	log.Printf("[Crawler] %d vídeos encontrados no perfil %s", len(links), profileURL)
	return links, nil
}
