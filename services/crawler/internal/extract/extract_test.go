package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRunStopsAtFirstNonEmpty(t *testing.T) {
	doc := mustDoc(t, `<div><p class="a">from A</p><p class="b">from B</p></div>`)
	calledB := false
	strategies := []Strategy[string]{
		Text("empty", func(*goquery.Selection) string { return "   " }),
		Text("a", func(root *goquery.Selection) string { return root.Find(".a").Text() }),
		Text("b", func(root *goquery.Selection) string {
			calledB = true
			return root.Find(".b").Text()
		}),
	}

	v, name, ok := Run(doc.Selection, strategies)
	require.True(t, ok)
	assert.Equal(t, "from A", v)
	assert.Equal(t, "a", name)
	assert.False(t, calledB, "estratégias posteriores não devem ser consultadas")
}

func TestRunExhausted(t *testing.T) {
	doc := mustDoc(t, `<div></div>`)
	v, name, ok := Run(doc.Selection, []Strategy[string]{
		Text("none", func(*goquery.Selection) string { return "" }),
	})
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, name)
	assert.Equal(t, "fallback", Value(doc.Selection, nil, "fallback"))
}

// Página com todas as estratégias presentes: o resultado tem que vir sempre
// da primeira de cada cascata.
const fullVideoPage = `<html><head>
<meta property="og:title" content="Meta title - @metauser">
<meta property="og:video" content="https://cdn/meta.mp4">
<meta property="og:creator" content="@creator">
</head><body>
<div data-e2e="browse-video-desc">
  <span data-e2e="new-desc-span">Sách hay</span>
  <span data-e2e="new-desc-span">  mỗi ngày </span>
  <a data-e2e="search-common-link" href="/tag/books">#books</a>
  <a data-e2e="search-common-link" href="/tag/reading?lang=en">#reading</a>
  <a data-e2e="search-common-link" href="/tag/books">#books</a>
</div>
<div class="css-x-DivDescriptionContainer">legacy title</div>
<span data-e2e="video-desc">attr title</span>
<a href="/tag/other">#other</a>
<video src="https://cdn/direct.mp4"><source src="https://cdn/source.mp4"></video>
<script>{"playAddr":"https://cdn/script.mp4"}</script>
<a href="https://cdn/anchor.mp4">dl</a>
<div class="css-y-DivAvatarContainer"><a href="/@fahasa_official">avatar</a></div>
<span data-e2e="video-author-uniqueid">@uniq</span>
<strong class="css-1-StrongText">1.5K</strong>
<strong class="css-1-StrongText">230</strong>
<strong class="css-1-StrongText">12</strong>
<strong class="css-1-StrongText">2M</strong>
<strong data-e2e="like-count">999</strong>
</body></html>`

func TestVideoPrefersFirstStrategy(t *testing.T) {
	v := Video(mustDoc(t, fullVideoPage), "https://www.tiktok.com/@fahasa_official/video/1")

	assert.Equal(t, "Sách hay mỗi ngày", v.Title)
	assert.Equal(t, []string{"books", "reading"}, v.Hashtags)
	assert.Equal(t, "https://cdn/source.mp4", v.SourceURL)
	assert.Equal(t, "https://www.tiktok.com/@fahasa_official", v.Channel)
	assert.Equal(t, "1.5K", v.Likes)
	assert.Equal(t, "230", v.Comments)
	assert.Equal(t, "12", v.Saved)
	assert.Equal(t, "2M", v.Shares)
}

func TestVideoFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		check func(t *testing.T, v RawVideo)
	}{
		{
			name: "legacy description uses only direct text",
			html: `<div class="DivDescriptionContainer">Hello <b>ignored</b>world</div>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, "Helloworld", v.Title)
			},
		},
		{
			name: "og title and hashtags from title",
			html: `<head><meta property="og:title" content="Đọc sách #booktok #review #booktok"></head>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, "Đọc sách #booktok #review #booktok", v.Title)
				assert.Equal(t, []string{"booktok", "review"}, v.Hashtags)
			},
		},
		{
			name: "page-wide tag links beat title regex",
			html: `<span data-e2e="video-desc">x #fromtitle</span><a href="https://www.tiktok.com/tag/fromlink">t</a>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, []string{"fromlink"}, v.Hashtags)
			},
		},
		{
			name: "script play address",
			html: `<script>window.x={"playAddr":"https://v16.tiktokcdn.com/a.mp4"}</script>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, "https://v16.tiktokcdn.com/a.mp4", v.SourceURL)
			},
		},
		{
			name: "channel from og creator",
			html: `<head><meta property="og:creator" content="@nhanam"></head>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, "https://www.tiktok.com/@nhanam", v.Channel)
			},
		},
		{
			name: "per-field counters when row is incomplete",
			html: `<strong class="StrongText">1</strong><strong data-e2e="like-count">10K</strong><strong data-e2e="share-count">7</strong>`,
			check: func(t *testing.T, v RawVideo) {
				assert.Equal(t, "10K", v.Likes)
				assert.Equal(t, "7", v.Shares)
				assert.Empty(t, v.Comments)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Video(mustDoc(t, "<html>"+tt.html+"</html>"), "https://www.tiktok.com/@someone/video/9"))
		})
	}
}

func TestVideoChannelFromURLAndSentinel(t *testing.T) {
	v := Video(mustDoc(t, `<html></html>`), "https://www.tiktok.com/@fahasa/video/1")
	assert.Equal(t, "https://www.tiktok.com/@fahasa", v.Channel)

	v = Video(mustDoc(t, `<html></html>`), "https://www.tiktok.com/video/1")
	assert.Equal(t, UnknownChannel, v.Channel)
	assert.Empty(t, v.Hashtags)
	assert.NotNil(t, v.Hashtags)
}

func TestMergeLinksUnion(t *testing.T) {
	got := MergeLinks("https://site/o",
		[]string{"https://site/video/1", "/video/2"},
		[]string{"https://site/video/1", "https://site/video/3"},
	)
	assert.ElementsMatch(t, []string{"https://site/video/1", "https://site/o/video/2", "https://site/video/3"}, got)
	assert.Len(t, got, 3)
}

func TestResolveLink(t *testing.T) {
	tests := []struct{ origin, href, want string }{
		{"https://www.tiktok.com", "/@a/video/1", "https://www.tiktok.com/@a/video/1"},
		{"https://www.tiktok.com/", "@a/video/1", "https://www.tiktok.com/@a/video/1"},
		{"https://www.tiktok.com", "//m.tiktok.com/v/1", "https://m.tiktok.com/v/1"},
		{"https://www.tiktok.com", "http://x/video/1", "http://x/video/1"},
		{"", "/video/1", DefaultOrigin + "/video/1"},
		{"https://www.tiktok.com", "  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveLink(tt.origin, tt.href), "%s + %s", tt.origin, tt.href)
	}
}

func TestProfileLinks(t *testing.T) {
	doc := mustDoc(t, `<div>
		<a href="/@fahasa/video/1">1</a>
		<a href="https://www.tiktok.com/@fahasa/video/2">2</a>
		<a href="/@fahasa/video/1">dup</a>
		<a href="/@fahasa">profile</a>
	</div>`)
	assert.Equal(t, []string{
		"https://www.tiktok.com/@fahasa/video/1",
		"https://www.tiktok.com/@fahasa/video/2",
	}, ProfileLinks(doc, "https://www.tiktok.com"))

	legacy := mustDoc(t, `<div class="css-1qb12g8-DivThreeColumnContainer">
		<div class="css-1uqux2o-DivItemContainerV2"><a href="/@x/photo/5">p</a></div>
	</div>`)
	assert.Equal(t, []string{"https://www.tiktok.com/@x/photo/5"}, ProfileLinks(legacy, "https://www.tiktok.com"))
}

func TestCommentFieldCascades(t *testing.T) {
	item := mustDoc(t, `<div class="DivCommentObjectWrapper">
		<div class="css-13x3qpp-DivUsernameContentWrapper"><a href="/@ana"><p>Ana</p></a></div>
		<span data-e2e="comment-level-1"><p>Great video!</p></span>
		<div class="DivCommentText">class text</div>
		<div class="css-njhskk-DivCommentSubContentWrapper"><span>2d ago</span><span>Reply</span></div>
		<div class="css-1nd5cw-DivLikeContainer"><span>1.2K</span></div>
		<div class="css-1idgi02-DivViewRepliesContainer">View 3 replies</div>
	</div>`).Selection

	assert.Equal(t, "Great video!", Value(item, CommentContent, ""))
	a := Value(item, CommentAuthor, Author{})
	assert.Equal(t, Author{Name: "Ana", Profile: "/@ana"}, a)
	assert.Equal(t, "1.2K", Value(item, CommentLikes, ""))
	assert.Equal(t, "2d ago", Value(item, CommentDate, ""))
	assert.True(t, Value(item, CommentHasReplies, false))
}

func TestCommentFieldFallbacks(t *testing.T) {
	item := mustDoc(t, `<div>
		<a href="/@bob"><img class="Avatar-img"></a>
		<p>ok</p><p>the longest paragraph</p>
		<span>15 likes</span><span>3 hours ago</span>
	</div>`).Find("div").First()

	assert.Equal(t, "the longest paragraph", Value(item, CommentContent, ""))
	assert.Equal(t, "15", Value(item, CommentLikes, ""))
	assert.Equal(t, "3 hours ago", Value(item, CommentDate, ""))
	assert.False(t, Value(item, CommentHasReplies, false))
	assert.Equal(t, Author{Name: "@bob", Profile: "/@bob"}, Value(item, CommentAuthor, Author{}))
}

func TestCleanedTextStrategy(t *testing.T) {
	item := mustDoc(t, `<div><span>@bob</span> nice book 12 likes 5d Reply</div>`).Find("div").First()
	assert.Equal(t, "nice book", Value(item, CommentContent, ""))
}

func TestCommentIsland(t *testing.T) {
	doc := mustDoc(t, `<script>var a = 1;</script>
	<script>window.data = {"x":1,"commentList": [
		{"cid":"7301","text":"Top comment","user":{"uniqueId":"ana"},"diggCount":"12","createTime":1700000000,"replyCommentTotal":1,
		 "replies":[{"cid":"7302","text":"reply","user":{"nickname":"Bob"},"diggCount":3}]}
	], "tail": true};</script>`)

	list, ok := CommentIsland(doc)
	require.True(t, ok)
	require.Len(t, list, 1)
	c := list[0]
	assert.Equal(t, "7301", c.NativeID())
	assert.Equal(t, "Top comment", c.Body())
	assert.Equal(t, "ana", c.AuthorName())
	assert.Equal(t, "https://www.tiktok.com/@ana", c.ProfileURL(DefaultOrigin))
	assert.Equal(t, int64(12), c.LikeCount())
	assert.Equal(t, "1700000000", c.DateText())
	assert.True(t, c.ReportsReplies())
	require.Len(t, c.Replies, 1)
	assert.Equal(t, "Bob", c.Replies[0].AuthorName())
	assert.Empty(t, c.Replies[0].ProfileURL(DefaultOrigin))
}

func TestCommentIslandInitProps(t *testing.T) {
	doc := mustDoc(t, `<script>window.__INIT_PROPS__ = {"comments":[{"id":5,"content":"from props","author":"carol","likes":4,"date":"1d","has_replies":true}]}</script>`)
	list, ok := CommentIsland(doc)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "5", list[0].NativeID())
	assert.Equal(t, "from props", list[0].Body())
	assert.Equal(t, "carol", list[0].AuthorName())
	assert.Equal(t, int64(4), list[0].LikeCount())
	assert.Equal(t, "1d", list[0].DateText())
	assert.True(t, list[0].ReportsReplies())
}

func TestCommentIslandAbsentOrEmpty(t *testing.T) {
	for _, html := range []string{
		`<script>var x = {"commentList": []}</script>`,
		`<script>var x = {"commentList": null}</script>`,
		`<script>var x = {"commentList": [broken</script>`,
		`<div>no scripts</div>`,
	} {
		_, ok := CommentIsland(mustDoc(t, html))
		assert.False(t, ok, html)
	}
}

func TestCommentIslandSkipsNullBeforeRealList(t *testing.T) {
	doc := mustDoc(t, `<script>window.a = {"commentList": null, "other": {"commentList": [
		{"cid":"9","text":"Late but real"}
	]}}</script>`)
	list, ok := CommentIsland(doc)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Late but real", list[0].Body())
}

func TestCommentContentCleanupKeepsWordsStartingWithReply(t *testing.T) {
	doc := mustDoc(t, `<div id="c">@ana Replying is fun 2d 12 likes Reply</div>`)
	got := Value(doc.Find("#c"), CommentContent, "")
	assert.Equal(t, "Replying is fun", got)
}
