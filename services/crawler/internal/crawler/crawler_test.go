package crawler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loviiin/argus-crawler/pkg/dedup"
	"github.com/loviiin/argus-crawler/pkg/metrics"
	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
	"github.com/loviiin/argus-crawler/services/crawler/internal/reconcile"
	"github.com/loviiin/argus-crawler/services/crawler/internal/scroll"
	"github.com/loviiin/argus-crawler/services/crawler/internal/storage"
)

const origin = "https://www.tiktok.com"

// fakeBrowser faz o papel de Navigator e Page sobre a mesma "aba".
type fakeBrowser struct {
	html     string
	links    map[string][]string
	failures map[string]int // -1 falha sempre
	current  string
	visited  []string
	scrolls  int
	clicked  []string
}

func (b *fakeBrowser) Navigate(_ context.Context, u string) bool {
	b.visited = append(b.visited, u)
	if n, ok := b.failures[u]; ok && n != 0 {
		if n > 0 {
			b.failures[u] = n - 1
		}
		return false
	}
	b.current = u
	return true
}

func (b *fakeBrowser) HTML(context.Context) (string, error)       { return b.html, nil }
func (b *fakeBrowser) Screenshot(context.Context) ([]byte, error) { return []byte("png"), nil }
func (b *fakeBrowser) WaitForAny(_ context.Context, selectors []string, _ time.Duration) (string, bool) {
	return selectors[0], true
}
func (b *fakeBrowser) ClickFirst(_ context.Context, selectors []string) (string, error) {
	b.clicked = append(b.clicked, selectors[0])
	return selectors[0], nil
}
func (b *fakeBrowser) ScrollViewport(context.Context) error { b.scrolls++; return nil }
func (b *fakeBrowser) VideoLinks(context.Context) ([]string, error) {
	return b.links[b.current], nil
}

// fakePanel converge na primeira iteração sem crescimento.
type fakePanel struct{ count int }

func (p *fakePanel) ScrollContainer(context.Context) error               { return nil }
func (p *fakePanel) PressEnd(context.Context) error                      { return nil }
func (p *fakePanel) ScrollLastIntoView(context.Context) error            { return nil }
func (p *fakePanel) ClickLoadMore(context.Context) (bool, error)         { return false, nil }
func (p *fakePanel) Count(context.Context) (int, error)                  { return p.count, nil }
func (p *fakePanel) ClickFirstViewReplies(context.Context) (bool, error) { return false, nil }
func (p *fakePanel) ClickRemainingViewReplies(context.Context) (int, error) {
	return 0, nil
}
func (p *fakePanel) ClickViewRepliesByText(context.Context) (int, error) { return 0, nil }

type memStore struct {
	mu       sync.Mutex
	videos   map[string]*models.Video
	comments []models.Comment
	seq      int
}

func newMemStore() *memStore { return &memStore{videos: map[string]*models.Video{}} }

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) FindVideoByURL(_ context.Context, url string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[url]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) SaveVideo(_ context.Context, v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[v.URL]; ok {
		return storage.ErrConflict
	}
	if v.ID == "" {
		v.ID = s.nextID("video")
	}
	cp := *v
	s.videos[v.URL] = &cp
	return nil
}

func (s *memStore) SaveComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.comments {
		if existing.Fingerprint == c.Fingerprint {
			return storage.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = s.nextID("comment")
	}
	s.comments = append(s.comments, *c)
	return nil
}

func (s *memStore) FindCommentByFingerprint(_ context.Context, fp string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.Fingerprint == fp {
			cp := c
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) FindComments(_ context.Context, videoID string, f models.CommentFilter) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.VideoID != videoID {
			continue
		}
		if f.HasReplies != nil && c.HasReplies != *f.HasReplies {
			continue
		}
		if f.IsReply != nil && c.IsReply != *f.IsReply {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) ListVideos(_ context.Context, urls []string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, u := range urls {
		if v, ok := s.videos[u]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *memStore) Close(context.Context) error { return nil }

func (s *memStore) byContent(content string) models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.Content == content {
			return c
		}
	}
	return models.Comment{}
}

type fakeIndexer struct{ docs map[string]int }

func (f *fakeIndexer) IndexVideo(v *models.Video, comments []models.Comment) error {
	f.docs[v.URL] = len(comments)
	return nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testConfig() Config {
	sc := scroll.DefaultConfig()
	sc.MaxIterations = 5
	sc.StallThreshold = 2
	return Config{
		Origin:              origin,
		MaxVideosPerProfile: 2,
		MaxRetries:          3,
		ProfileScrolls:      3,
		Scroll:              sc,
		Replies:             scroll.DefaultReplyConfig(),
		Sleep:               noSleep,
	}
}

type fixture struct {
	c       *Crawler
	browser *fakeBrowser
	store   *memStore
	index   *fakeIndexer
}

func newFixture(t *testing.T, html string, d *dedup.Deduplicator) fixture {
	t.Helper()
	b := &fakeBrowser{html: html, links: map[string][]string{}, failures: map[string]int{}}
	st := newMemStore()
	idx := &fakeIndexer{docs: map[string]int{}}
	c := New(Deps{
		Navigator: b,
		Page:      b,
		Panel:     &fakePanel{count: 3},
		Store:     st,
		Dedup:     d,
		Index:     idx,
		Metrics:   metrics.New(),
	}, testConfig())
	return fixture{c: c, browser: b, store: st, index: idx}
}

func newTestDedup(t *testing.T) *dedup.Deduplicator {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return dedup.NewDeduplicator(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 24)
}

func topLevel(text, user, date string, inner string) string {
	return `<div class="DivCommentObjectWrapper">
		<div class="DivCommentItemWrapper">
			<div class="DivUsernameContentWrapper"><a href="/@` + user + `"><p>` + user + `</p></a></div>
			<span data-e2e="comment-level-1"><p>` + text + `</p></span>
			<div class="DivCommentSubContentWrapper"><span>` + date + `</span></div>
		</div>` + inner + `
	</div>`
}

func replies(items ...string) string {
	out := `<div class="DivReplyContainer">`
	for _, it := range items {
		out += `<div class="DivCommentItemWrapper"><span data-e2e="comment-level-2"><p>` + it + `</p></span></div>`
	}
	return out + `</div>`
}

func page(comments ...string) string {
	out := `<html><body><div class="DivVideoDetailContainer"><h1 data-e2e="browse-video-desc">Sunset #travel</h1></div>
		<div class="DivCommentListContainer">`
	for _, c := range comments {
		out += c
	}
	return out + `</div></body></html>`
}

const videoURL = "https://www.tiktok.com/@ana/video/7310549811661540615"

func TestCrawlVideoSavesThreadWithStoredParentIDs(t *testing.T) {
	f := newFixture(t, page(
		topLevel("Great video!", "ana", "2d ago", replies("Thanks!", "Agreed")),
		topLevel("Second one", "carol", "1d ago", ""),
	), nil)

	v, err := f.c.CrawlVideo(context.Background(), videoURL)
	require.NoError(t, err)
	require.NotEmpty(t, v.ID)
	assert.Equal(t, []string{videoURL}, f.browser.visited)
	assert.NotEmpty(t, f.browser.clicked, "deveria tentar expandir a descrição")

	comments, err := f.store.FindComments(context.Background(), v.ID, models.CommentFilter{})
	require.NoError(t, err)
	require.Len(t, comments, 4)

	parent := f.store.byContent("Great video!")
	assert.True(t, parent.HasReplies)
	assert.Nil(t, parent.ParentCommentID)
	for _, text := range []string{"Thanks!", "Agreed"} {
		r := f.store.byContent(text)
		require.NotNil(t, r.ParentCommentID, text)
		assert.Equal(t, parent.ID, *r.ParentCommentID, "resposta aponta para o id armazenado do pai")
		assert.True(t, r.IsReply)
	}

	positions := make([]int, 0, len(comments))
	for _, c := range comments {
		positions = append(positions, c.Position)
		assert.Equal(t, videoURL, c.VideoURL)
		assert.NotEmpty(t, c.Fingerprint)
	}
	assert.True(t, sort.IntsAreSorted(positions))
	assert.Equal(t, 4, f.index.docs[videoURL])
}

func TestCrawlVideoExistingSkipsNavigation(t *testing.T) {
	f := newFixture(t, page(topLevel("hi", "ana", "1d ago", "")), nil)
	require.NoError(t, f.store.SaveVideo(context.Background(), &models.Video{URL: videoURL, Title: "old"}))

	v, err := f.c.CrawlVideo(context.Background(), videoURL)
	require.NoError(t, err)
	assert.Equal(t, "old", v.Title)
	assert.Empty(t, f.browser.visited)
	assert.Empty(t, f.store.comments)
}

func TestCrawlVideoNavigationFailure(t *testing.T) {
	f := newFixture(t, page(), nil)
	f.browser.failures[videoURL] = -1

	_, err := f.c.CrawlVideo(context.Background(), videoURL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNavigation))
	_, err = f.store.FindVideoByURL(context.Background(), videoURL)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRefreshCommentsSavesOnlyNewFingerprints(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		t.Run(fmt.Sprintf("redis=%v", withRedis), func(t *testing.T) {
			var d *dedup.Deduplicator
			if withRedis {
				d = newTestDedup(t)
			}
			f := newFixture(t, page(topLevel("Great video!", "ana", "2d ago", replies("Thanks!"))), d)
			ctx := context.Background()

			_, err := f.c.CrawlVideo(ctx, videoURL)
			require.NoError(t, err)
			require.Len(t, f.store.comments, 2)

			// nova resposta para um pai já gravado
			f.browser.html = page(
				topLevel("Great video!", "ana", "2d ago", replies("Thanks!", "Late reply")),
				topLevel("Brand new", "dave", "1h ago", ""),
			)
			n, err := f.c.RefreshComments(ctx, videoURL)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			require.Len(t, f.store.comments, 4)

			parent := f.store.byContent("Great video!")
			late := f.store.byContent("Late reply")
			require.NotNil(t, late.ParentCommentID)
			assert.Equal(t, parent.ID, *late.ParentCommentID)

			n, err = f.c.RefreshComments(ctx, videoURL)
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Len(t, f.store.comments, 4)
		})
	}
}

func TestRefreshCommentsIgnoresRelativeDateDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, page(topLevel("Great video!", "ana", "2d ago", "")), nil)

	_, err := f.c.CrawlVideo(ctx, videoURL)
	require.NoError(t, err)
	require.Len(t, f.store.comments, 1)

	// no dia seguinte o mesmo comentário aparece como "3d ago"
	f.browser.html = page(topLevel("Great video!", "ana", "3d ago", ""))
	n, err := f.c.RefreshComments(ctx, videoURL)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.store.comments, 1)
}

func TestCommentFingerprintKeepsAbsoluteDates(t *testing.T) {
	a := commentFingerprint(videoURL, reconcile.Record{Author: "ana", Content: "hi", Date: "2024-01-05"})
	b := commentFingerprint(videoURL, reconcile.Record{Author: "ana", Content: "hi", Date: "2024-01-06"})
	assert.NotEqual(t, a, b)

	c := commentFingerprint(videoURL, reconcile.Record{Author: "ana", Content: "hi", Date: "5h"})
	d := commentFingerprint(videoURL, reconcile.Record{Author: "ana", Content: "hi", Date: "1d ago"})
	assert.Equal(t, c, d)
}

func TestRefreshCommentsUnknownVideo(t *testing.T) {
	f := newFixture(t, page(), nil)
	_, err := f.c.RefreshComments(context.Background(), videoURL)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, f.browser.visited)
}

func TestReplyGap(t *testing.T) {
	f := newFixture(t, page(
		topLevel("Answered", "ana", "2d ago", replies("yes")),
		topLevel("Lonely", "bob", "2d ago", `<span>View 3 replies</span>`),
	), nil)

	v, err := f.c.CrawlVideo(context.Background(), videoURL)
	require.NoError(t, err)

	gap := f.c.reportReplyGap(context.Background(), v)
	assert.Equal(t, ReplyGap{WithReplies: 2, Replies: 1, Missing: 1}, gap)
}

func TestCrawlProfileMergesPasses(t *testing.T) {
	profile := "https://www.tiktok.com/@ana"
	f := newFixture(t, `<html><body>
		<a href="/@ana/video/2">two</a>
		<a href="/@ana/video/3">three</a>
		<a href="/@ana">profile</a>
	</body></html>`, nil)
	f.browser.links[profile] = []string{"/@ana/video/1", "https://www.tiktok.com/@ana/video/2"}

	links, err := f.c.CrawlProfile(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.tiktok.com/@ana/video/1",
		"https://www.tiktok.com/@ana/video/2",
		"https://www.tiktok.com/@ana/video/3",
	}, links)
	assert.Equal(t, 3, f.browser.scrolls)
}

func TestCrawlProfileNavigationFailure(t *testing.T) {
	profile := "https://www.tiktok.com/@ana"
	f := newFixture(t, "", nil)
	f.browser.failures[profile] = -1

	_, err := f.c.CrawlProfile(context.Background(), profile)
	assert.ErrorIs(t, err, ErrNavigation)
}

func TestRunRetriesSkipsAndCaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, page(topLevel("hi", "ana", "1d ago", "")), nil)

	p1, p2 := "https://www.tiktok.com/@ana", "https://www.tiktok.com/@bob"
	v1, v2, v3 := p1+"/video/1", p1+"/video/2", p1+"/video/3"
	v4 := p2 + "/video/4"
	f.browser.links[p1] = []string{v1, v2, v3}
	f.browser.links[p2] = []string{v4}
	f.browser.failures[v2] = 1
	f.browser.failures[v4] = -1
	require.NoError(t, f.store.SaveVideo(ctx, &models.Video{URL: v1}))

	sum, err := f.c.Run(ctx, []string{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, Summary{Profiles: 2, Videos: 1, Existing: 1, Failed: 1}, sum)

	_, err = f.store.FindVideoByURL(ctx, v2)
	assert.NoError(t, err, "v2 deveria ter sido gravado na segunda tentativa")
	_, err = f.store.FindVideoByURL(ctx, v3)
	assert.ErrorIs(t, err, storage.ErrNotFound, "v3 está além do limite por perfil")
	assert.NotContains(t, f.browser.visited, v1)
}

func TestRunUsesVideoSeenSet(t *testing.T) {
	ctx := context.Background()
	d := newTestDedup(t)
	f := newFixture(t, page(topLevel("hi", "ana", "1d ago", "")), d)

	profile := "https://www.tiktok.com/@ana"
	seen, fresh := profile+"/video/1", profile+"/video/2"
	f.browser.links[profile] = []string{seen, fresh}
	require.NoError(t, d.MarkAsSeen(ctx, dedup.PrefixVideo, seen))

	sum, err := f.c.Run(ctx, []string{profile})
	require.NoError(t, err)
	assert.Equal(t, Summary{Profiles: 1, Videos: 1, Existing: 1}, sum)
	assert.NotContains(t, f.browser.visited, seen, "cache hit no Redis pula a navegação")

	marked, err := d.CheckIfProcessed(ctx, dedup.PrefixVideo, fresh)
	require.NoError(t, err)
	assert.True(t, marked, "vídeo gravado entra no seen-set")
}

func TestCrawlVideoBackfillsSeenSet(t *testing.T) {
	ctx := context.Background()
	d := newTestDedup(t)
	f := newFixture(t, page(), d)
	require.NoError(t, f.store.SaveVideo(ctx, &models.Video{URL: videoURL}))

	_, err := f.c.CrawlVideo(ctx, videoURL)
	require.NoError(t, err)

	marked, err := d.CheckIfProcessed(ctx, dedup.PrefixVideo, videoURL)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, page(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.c.Run(ctx, []string{"https://www.tiktok.com/@ana"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.browser.visited)
}
