package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UnknownChannel é o sentinela quando nenhuma estratégia acha o canal.
const UnknownChannel = "Unknown Channel"

// RawVideo são os campos de um vídeo como aparecem na página. Os contadores
// ficam em texto; quem converte é o pacote normalize.
type RawVideo struct {
	Title     string
	Hashtags  []string
	SourceURL string
	Channel   string
	Likes     string
	Comments  string
	Saved     string
	Shares    string
}

const descContainer = `div[data-e2e="browse-video-desc"]`

var (
	hashtagRe  = regexp.MustCompile(`#(\w+)`)
	playAddrRe = regexp.MustCompile(`"playAddr":"([^"]+)"`)
)

var titleStrategies = []Strategy[string]{
	Text("new-desc-spans", func(root *goquery.Selection) string {
		var parts []string
		root.Find(descContainer + ` span[data-e2e="new-desc-span"]`).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		return strings.Join(parts, " ")
	}),
	Text("description-container", func(root *goquery.Selection) string {
		var b strings.Builder
		root.Find(`div[class*="DivDescriptionContainer"]`).First().Contents().Each(func(_ int, n *goquery.Selection) {
			if goquery.NodeName(n) == "#text" {
				b.WriteString(strings.TrimSpace(n.Text()))
			}
		})
		return b.String()
	}),
	Text("video-desc", func(root *goquery.Selection) string {
		return strings.TrimSpace(root.Find(`[data-e2e="video-desc"]`).Text())
	}),
	Text("og-title", func(root *goquery.Selection) string {
		return meta(root, "og:title")
	}),
}

// hashtagStrategies depende do título já extraído (último recurso).
func hashtagStrategies(title string) []Strategy[[]string] {
	return []Strategy[[]string]{
		List("desc-tag-links", func(root *goquery.Selection) []string {
			return tagsFromLinks(root.Find(descContainer+` a[data-e2e="search-common-link"]`), true)
		}),
		List("tag-links", func(root *goquery.Selection) []string {
			return tagsFromLinks(root.Find(`a[href*="/tag/"]`), false)
		}),
		List("title-hashtags", func(*goquery.Selection) []string {
			seen := make(map[string]bool)
			var out []string
			for _, m := range hashtagRe.FindAllStringSubmatch(title, -1) {
				out = appendUnique(out, seen, m[1])
			}
			return out
		}),
	}
}

func tagsFromLinks(links *goquery.Selection, prefixOnly bool) []string {
	seen := make(map[string]bool)
	var out []string
	links.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		idx := strings.Index(href, "/tag/")
		if idx < 0 || (prefixOnly && idx != 0) {
			return
		}
		tag := href[idx+len("/tag/"):]
		if i := strings.IndexAny(tag, "?#/"); i >= 0 {
			tag = tag[:i]
		}
		if unescaped, err := url.PathUnescape(tag); err == nil {
			tag = unescaped
		}
		out = appendUnique(out, seen, strings.TrimSpace(tag))
	})
	return out
}

var sourceStrategies = []Strategy[string]{
	Text("video-source", func(root *goquery.Selection) string {
		return firstAttr(root, "video source", "src")
	}),
	Text("video-src", func(root *goquery.Selection) string {
		return firstAttr(root, "video", "src")
	}),
	Text("og-video", func(root *goquery.Selection) string {
		return meta(root, "og:video")
	}),
	Text("script-play-addr", func(root *goquery.Selection) string {
		var out string
		root.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			body := s.Text()
			if !strings.Contains(body, "playAddr") {
				return true
			}
			if m := playAddrRe.FindStringSubmatch(body); m != nil {
				out = strings.ReplaceAll(m[1], `\u002F`, "/")
				return false
			}
			return true
		})
		return out
	}),
	Text("mp4-anchor", func(root *goquery.Selection) string {
		return firstAttr(root, `a[href*=".mp4"]`, "href")
	}),
}

func channelStrategies(videoURL string) []Strategy[string] {
	return []Strategy[string]{
		Text("avatar-link", func(root *goquery.Selection) string {
			return firstAttr(root, `div[class*="DivAvatarContainer"] a, a[data-e2e="video-author-avatar"]`, "href")
		}),
		Text("author-uniqueid", func(root *goquery.Selection) string {
			t := firstText(root, `[data-e2e="video-author-uniqueid"]`)
			if strings.HasPrefix(t, "@") {
				return "/" + t
			}
			return ""
		}),
		Text("og-creator", func(root *goquery.Selection) string {
			if c := meta(root, "og:creator"); c != "" {
				return "/@" + strings.TrimPrefix(c, "@")
			}
			return ""
		}),
		Text("og-title-author", func(root *goquery.Selection) string {
			parts := strings.Split(meta(root, "og:title"), "-")
			if len(parts) < 2 {
				return ""
			}
			if author := strings.TrimPrefix(strings.TrimSpace(parts[1]), "@"); author != "" {
				return "/@" + author
			}
			return ""
		}),
		Text("video-url-author", func(*goquery.Selection) string {
			for _, seg := range strings.Split(videoURL, "/") {
				if strings.HasPrefix(seg, "@") {
					return "/" + seg
				}
			}
			return ""
		}),
	}
}

// counterStrategies: a fileira de <strong> só vale quando as quatro métricas
// estão presentes (likes, comentários, salvos, compartilhamentos).
func counterStrategies(index int, e2e string) []Strategy[string] {
	return []Strategy[string]{
		Text("strong-text-row", func(root *goquery.Selection) string {
			row := root.Find(`strong[class*="StrongText"]`)
			if row.Length() < 4 {
				return ""
			}
			return row.Eq(index).Text()
		}),
		Text("data-e2e-"+e2e, func(root *goquery.Selection) string {
			return firstText(root, `[data-e2e="`+e2e+`"]`)
		}),
	}
}

var (
	likesStrategies    = counterStrategies(0, "like-count")
	commentsStrategies = counterStrategies(1, "comment-count")
	savedStrategies    = counterStrategies(2, "undefined-count")
	sharesStrategies   = counterStrategies(3, "share-count")
)

// Video extrai os metadados de um vídeo. Campos não encontrados ficam vazios;
// o canal cai no sentinela UnknownChannel.
func Video(doc *goquery.Document, videoURL string) RawVideo {
	root := doc.Selection
	origin := OriginOf(videoURL)

	title := Value(root, titleStrategies, "")
	channel := UnknownChannel
	if c, _, ok := Run(root, channelStrategies(videoURL)); ok {
		channel = ResolveLink(origin, c)
	}

	return RawVideo{
		Title:     title,
		Hashtags:  Value(root, hashtagStrategies(title), []string{}),
		SourceURL: Value(root, sourceStrategies, ""),
		Channel:   channel,
		Likes:     Value(root, likesStrategies, ""),
		Comments:  Value(root, commentsStrategies, ""),
		Saved:     Value(root, savedStrategies, ""),
		Shares:    Value(root, sharesStrategies, ""),
	}
}
