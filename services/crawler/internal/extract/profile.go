package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VideoPathMarker identifica links de vídeo dentro de um perfil.
const VideoPathMarker = "/video/"

// ResolveLink torna href absoluto. Links relativos são prefixados com a
// origem configurada (não é resolução RFC 3986: a origem pode ter caminho).
func ResolveLink(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	}
	if origin == "" {
		origin = DefaultOrigin
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(origin, "/") + href
}

// MergeLinks une as passagens de extração de um perfil: resolve relativos,
// remove duplicados e mantém a ordem em que cada URL apareceu primeiro.
func MergeLinks(origin string, passes ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pass := range passes {
		for _, href := range pass {
			out = appendUnique(out, seen, ResolveLink(origin, href))
		}
	}
	return out
}

var profileLinkStrategies = []Strategy[[]string]{
	List("video-anchors", func(root *goquery.Selection) []string {
		return hrefs(root.Find("a"), true)
	}),
	List("three-column-items", func(root *goquery.Selection) []string {
		items := root.Find(".css-1qb12g8-DivThreeColumnContainer .css-1uqux2o-DivItemContainerV2")
		var out []string
		items.Each(func(_ int, item *goquery.Selection) {
			if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
				out = append(out, href)
			}
		})
		return out
	}),
	List("item-containers", func(root *goquery.Selection) []string {
		var out []string
		root.Find(`div[class*="DivItemContainer"]`).Each(func(_ int, item *goquery.Selection) {
			out = append(out, hrefs(item.Find("a").First(), true)...)
		})
		return out
	}),
}

// ProfileLinks é a passagem estática sobre o HTML do perfil. Os links saem
// absolutos e sem duplicados.
func ProfileLinks(doc *goquery.Document, origin string) []string {
	raw, _, _ := Run(doc.Selection, profileLinkStrategies)
	return MergeLinks(origin, raw)
}

func hrefs(anchors *goquery.Selection, videoOnly bool) []string {
	var out []string
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		if videoOnly && !strings.Contains(href, VideoPathMarker) {
			return
		}
		out = append(out, href)
	})
	return out
}

// OriginOf devolve scheme://host de rawURL, ou DefaultOrigin.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return DefaultOrigin
	}
	return u.Scheme + "://" + u.Host
}
