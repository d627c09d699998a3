package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/loviiin/argus-crawler/pkg/dedup"
	"github.com/loviiin/argus-crawler/services/crawler/internal/extract"
	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/normalize"
	"github.com/loviiin/argus-crawler/services/crawler/internal/reconcile"
	"github.com/loviiin/argus-crawler/services/crawler/internal/scroll"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

var (
	videoDetailSelectors = []string{
		".css-19j62s8-DivVideoDetailContainer",
		`div[class*="DivVideoDetailContainer"]`,
		`[data-e2e="browse-video"]`,
	}
	// botão "more" da descrição: classe nova primeiro, variantes ButtonExpand depois
	moreButtonSelectors = []string{
		".css-1fhxeoe-DivBtnWrapper button",
		".css-vann6c-ButtonExpand-StyledButtonBottom",
		"button.css-1r94cis-ButtonExpand",
		`button[class*="ButtonExpand"]`,
	}
	commentWaitSelectors = []string{
		".css-13wx63w-DivCommentObjectWrapper",
		`div[class*="DivCommentObjectWrapper"]`,
		`div[class*="DivCommentItemContainer"]`,
		`div[class*="CommentItemContainer"]`,
		`[data-e2e="comment-item"]`,
	}
)

const (
	videoWait   = 30 * time.Second
	commentWait = 10 * time.Second

	lowCommentLoaded   = 30
	lowCommentReported = 100
)

// CrawlVideo extrai e grava um vídeo e seus comentários. Se a URL já está no
// storage devolve o registro existente sem navegar.
func (c *Crawler) CrawlVideo(ctx context.Context, videoURL string) (*models.Video, error) {
	log.Printf("[Crawler] Crawling video: %s", videoURL)

	existing, err := c.store.FindVideoByURL(ctx, videoURL)
	if err == nil {
		log.Printf("[Crawler] vídeo já existe no banco: %s", videoURL)
		c.metrics.Videos.WithLabelValues("existing").Inc()
		c.markSeen(ctx, videoURL)
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if !c.nav.Navigate(ctx, videoURL) {
		c.metrics.Navigations.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNavigation, videoURL)
	}
	c.metrics.Navigations.WithLabelValues("ok").Inc()

	if _, ok := c.page.WaitForAny(ctx, videoDetailSelectors, videoWait); !ok {
		log.Println("[Crawler] container do vídeo não encontrado, seguindo mesmo assim")
	}
	c.expandDescription(ctx)

	html, err := c.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("lendo HTML do vídeo: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse do HTML do vídeo: %w", err)
	}

	v := buildVideo(videoURL, extract.Video(doc, videoURL))
	log.Printf("[Crawler] título: %q | canal: %s | hashtags: %v | fonte: %q", v.Title, v.Channel, v.Hashtags, v.URLSource)

	if c.media != nil {
		c.media.Fetch(ctx, v)
	}

	if err := c.store.SaveVideo(ctx, v); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// outro worker gravou antes
			c.metrics.Videos.WithLabelValues("existing").Inc()
			c.markSeen(ctx, videoURL)
			return c.store.FindVideoByURL(ctx, videoURL)
		}
		c.metrics.Videos.WithLabelValues("failed").Inc()
		return nil, err
	}
	c.metrics.Videos.WithLabelValues("saved").Inc()
	c.markSeen(ctx, videoURL)
	log.Printf("[Crawler] vídeo salvo: %s", videoURL)

	records := c.loadComments(ctx, v)
	saved, skipped := c.saveComments(ctx, v, records)
	log.Printf("[Crawler] %d comentários salvos (%d duplicados) para %s", saved, skipped, videoURL)

	c.reportReplyGap(ctx, v)
	c.indexVideo(ctx, v)
	return v, nil
}

// RefreshComments re-extrai os comentários de um vídeo já gravado e grava só
// os fingerprints novos.
func (c *Crawler) RefreshComments(ctx context.Context, videoURL string) (int, error) {
	v, err := c.store.FindVideoByURL(ctx, videoURL)
	if err != nil {
		return 0, err
	}
	if !c.nav.Navigate(ctx, videoURL) {
		c.metrics.Navigations.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("%w: %s", ErrNavigation, videoURL)
	}
	c.metrics.Navigations.WithLabelValues("ok").Inc()

	records := c.loadComments(ctx, v)
	saved, skipped := c.saveComments(ctx, v, records)
	log.Printf("[Crawler] refresh de %s: %d novos, %d já existentes", videoURL, saved, skipped)

	c.reportReplyGap(ctx, v)
	c.indexVideo(ctx, v)
	return saved, nil
}

// markSeen só roda depois do registro estar no banco.
func (c *Crawler) markSeen(ctx context.Context, videoURL string) {
	if c.dedup == nil {
		return
	}
	if err := c.dedup.MarkAsSeen(ctx, dedup.PrefixVideo, videoURL); err != nil {
		log.Printf("[Crawler] ⚠️  erro redis MarkAsSeen %s: %v", videoURL, err)
	}
}

func buildVideo(videoURL string, raw extract.RawVideo) *models.Video {
	return &models.Video{
		URL:           videoURL,
		Title:         normalize.Text(raw.Title),
		URLSource:     strings.TrimSpace(raw.SourceURL),
		Channel:       raw.Channel,
		Likes:         normalize.ParseAbbreviatedCount(raw.Likes),
		CommentsCount: normalize.ParseAbbreviatedCount(raw.Comments),
		Saved:         normalize.ParseAbbreviatedCount(raw.Saved),
		Shared:        normalize.ParseAbbreviatedCount(raw.Shares),
		Hashtags:      raw.Hashtags,
	}
}

func (c *Crawler) expandDescription(ctx context.Context) {
	sel, err := c.page.ClickFirst(ctx, moreButtonSelectors)
	if err != nil {
		log.Printf("[Crawler] erro clicando em \"more\": %v", err)
		return
	}
	if sel == "" {
		log.Println("[Crawler] botão \"more\" não encontrado")
		return
	}
	log.Printf("[Crawler] clicou em \"more\" (%s)", sel)
	_ = c.sleep(ctx, time.Second)
}

// loadComments rola o painel até convergir, abre as respostas e reconcilia o snapshot.
func (c *Crawler) loadComments(ctx context.Context, v *models.Video) []reconcile.Record {
	if sel, ok := c.page.WaitForAny(ctx, commentWaitSelectors, commentWait); ok {
		log.Printf("[Crawler] comentários encontrados com seletor: %s", sel)
	} else {
		log.Println("[Crawler] container de comentários não encontrado, seguindo mesmo assim")
	}

	res := scroll.LoadAll(ctx, c.panel, c.panel.Count, c.cfg.Scroll)
	c.metrics.ScrollLoops.Observe(float64(res.Iterations))
	if res.Err != nil {
		log.Printf("[Crawler] scroll interrompido: %v", res.Err)
	}
	log.Printf("[Crawler] scroll terminou com %d comentários carregados", res.FinalCount)

	if res.FinalCount < lowCommentLoaded && v.CommentsCount > lowCommentReported {
		log.Printf("[Crawler] ⚠️  poucos comentários carregados (%d) para um vídeo com %d; pode ser limite da plataforma ou falta de login",
			res.FinalCount, v.CommentsCount)
	}

	replies := scroll.ExpandReplies(ctx, c.panel, c.cfg.Replies)
	c.metrics.ReplyClicks.Add(float64(replies.Total()))

	html, err := c.page.HTML(ctx)
	if err != nil {
		log.Printf("[Crawler] erro lendo HTML dos comentários: %v", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[Crawler] erro no parse dos comentários: %v", err)
		return nil
	}

	records := reconcile.Thread(doc, c.cfg.Origin)
	log.Printf("[Crawler] %d comentários encontrados (incluindo respostas)", len(records))
	return records
}

// saveComments grava os registros na ordem da extração. O id de cada chave
// (comment_N ou nativo) é trocado pelo id armazenado para as respostas
// apontarem para o pai gravado. Fingerprint repetido não é regravado.
func (c *Crawler) saveComments(ctx context.Context, v *models.Video, records []reconcile.Record) (saved, skipped int) {
	stored := make(map[string]string, len(records))
	crawledAt := time.Now().UTC()

	for i, r := range records {
		fp := commentFingerprint(v.URL, r)

		var parent *string
		if r.ParentID != "" {
			if id, ok := stored[r.ParentID]; ok {
				parent = &id
			}
		}

		cm := &models.Comment{
			CommentKey:      r.ID,
			VideoID:         v.ID,
			VideoURL:        v.URL,
			Content:         r.Content,
			Author:          r.Author,
			AuthorProfile:   r.AuthorProfile,
			Likes:           r.Likes,
			Date:            r.Date,
			IsReply:         r.IsReply,
			ParentCommentID: parent,
			HasReplies:      r.HasReplies,
			Fingerprint:     fp,
			Position:        i,
			CrawledAt:       crawledAt,
		}

		if c.dedup != nil {
			isNew, err := c.dedup.MarkIfNew(ctx, dedup.PrefixComment, fp)
			if err != nil {
				log.Printf("[Crawler] erro redis MarkIfNew: %v", err)
			} else if !isNew {
				c.rememberExisting(ctx, stored, r.ID, fp)
				skipped++
				continue
			}
		}

		if err := c.store.SaveComment(ctx, cm); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.rememberExisting(ctx, stored, r.ID, fp)
				skipped++
				continue
			}
			log.Printf("[Crawler] erro salvando comentário %s: %v", r.ID, err)
			if c.dedup != nil {
				_ = c.dedup.Forget(ctx, dedup.PrefixComment, fp)
			}
			continue
		}
		stored[r.ID] = cm.ID
		saved++
	}

	c.metrics.CommentsSaved.Add(float64(saved))
	c.metrics.CommentsSkipped.Add(float64(skipped))
	return saved, skipped
}

// commentFingerprint ignora datas relativas ("2d ago"), que mudam entre crawls.
func commentFingerprint(videoURL string, r reconcile.Record) string {
	date := r.Date
	if normalize.IsRelativeDate(date) {
		date = ""
	}
	return dedup.Fingerprint(videoURL, r.Author, r.Content, date)
}

// rememberExisting liga a chave ao id do comentário já gravado, para que
// respostas novas de um pai antigo ainda apontem para ele.
func (c *Crawler) rememberExisting(ctx context.Context, stored map[string]string, key, fp string) {
	existing, err := c.store.FindCommentByFingerprint(ctx, fp)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[Crawler] erro buscando comentário existente: %v", err)
		}
		return
	}
	stored[key] = existing.ID
}

// ReplyGap compara comentários que dizem ter respostas com as respostas gravadas.
type ReplyGap struct {
	WithReplies int
	Replies     int
	Missing     int
}

// reportReplyGap loga quantos comentários com has_replies ficaram sem nenhuma
// resposta extraída (limitação conhecida da expansão).
func (c *Crawler) reportReplyGap(ctx context.Context, v *models.Video) ReplyGap {
	var gap ReplyGap

	parents, err := c.store.FindComments(ctx, v.ID, models.CommentFilter{HasReplies: models.Bool(true), IsReply: models.Bool(false)})
	if err != nil {
		log.Printf("[Crawler] erro buscando comentários com respostas: %v", err)
		return gap
	}
	replies, err := c.store.FindComments(ctx, v.ID, models.CommentFilter{IsReply: models.Bool(true)})
	if err != nil {
		log.Printf("[Crawler] erro buscando respostas: %v", err)
		return gap
	}

	answered := make(map[string]bool, len(replies))
	for _, r := range replies {
		if r.ParentCommentID != nil {
			answered[*r.ParentCommentID] = true
		}
	}

	gap.WithReplies = len(parents)
	gap.Replies = len(replies)
	for _, p := range parents {
		if !answered[p.ID] {
			gap.Missing++
		}
	}

	log.Printf("[Crawler] %d comentários com respostas, %d respostas gravadas", gap.WithReplies, gap.Replies)
	if gap.Missing > 0 {
		log.Printf("[Crawler] ⚠️  %d comentários com respostas ficaram sem nenhuma resposta extraída", gap.Missing)
	}
	return gap
}

func (c *Crawler) indexVideo(ctx context.Context, v *models.Video) {
	if c.index == nil {
		return
	}
	comments, err := c.store.FindComments(ctx, v.ID, models.CommentFilter{})
	if err != nil {
		log.Printf("[Crawler] erro lendo comentários para indexação: %v", err)
		return
	}
	if err := c.index.IndexVideo(v, comments); err != nil {
		log.Printf("[Crawler] erro indexando %s: %v", v.URL, err)
	}
}
