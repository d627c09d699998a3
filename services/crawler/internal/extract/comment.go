package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Seletores de contêiner de comentário em ordem de preferência. O primeiro
// que encontra algo define o conjunto de candidatos do snapshot.
var CommentContainerSelectors = []string{
	".css-13wx63w-DivCommentObjectWrapper",
	`div[class*="DivCommentObjectWrapper"]`,
	`div[class*="DivCommentItemContainer"], div[class*="CommentItemContainer"]`,
	`[data-e2e="comment-item"]`,
	`div[class*="comment-item"], div[class*="comment-container"]`,
}

const (
	// ReplyContainerSelector casa os blocos que guardam respostas abertas.
	ReplyContainerSelector = `.css-9kgp5o-DivReplyContainer, div[class*="DivReplyContainer"], div[class*="ReplyContainer"]`
	// ReplyItemSelector casa cada resposta dentro de um ReplyContainerSelector.
	ReplyItemSelector = `.css-1gstnae-DivCommentItemWrapper, div[class*="DivCommentItemWrapper"], [data-e2e="comment-item"]`
	// ObjectWrapperSelector é o invólucro de um comentário de topo.
	ObjectWrapperSelector = `.css-13wx63w-DivCommentObjectWrapper, div[class*="DivCommentObjectWrapper"]`
)

var (
	usernameRe    = regexp.MustCompile(`@([\w.]+)`)
	likesTextRe   = regexp.MustCompile(`(?i)(\d+[KMB]?)\s*likes?`)
	dateRe        = regexp.MustCompile(`(?i)(\d+[dhm]\b|\d+\s*(?:days?|hours?|minutes?|seconds?)\s*ago|\d{4}-\d{1,2}-\d{1,2})`)
	viewRepliesRe = regexp.MustCompile(`(?i)view\s+\d+\s+repl`)

	// ruído removido quando o conteúdo vem do texto bruto do contêiner
	noise = []*regexp.Regexp{
		regexp.MustCompile(`@[\w.]+`),
		regexp.MustCompile(`(?i)\d+[KMB]?\s*likes?`),
		regexp.MustCompile(`(?i)\d+[dhm]\b|\d+\s*(?:days?|hours?|minutes?|seconds?)\s*ago`),
		regexp.MustCompile(`(?i)View\s+\d+\s+repl(?:y|ies)`),
		regexp.MustCompile(`(?i)\bReply\b`),
	}
)

// Author é o par nome/perfil de quem comentou. Profile pode ser relativo.
type Author struct {
	Name    string
	Profile string
}

// CommentContent é a cascata do texto de um comentário.
var CommentContent = []Strategy[string]{
	Text("comment-level-1", func(root *goquery.Selection) string {
		return firstText(root, `span[data-e2e="comment-level-1"] p`)
	}),
	Text("comment-text-attr", func(root *goquery.Selection) string {
		return firstText(root, `[data-e2e="comment-level-1"] p, [data-e2e="comment-text"] p, span[data-e2e="comment-level-2"] p`)
	}),
	Text("comment-text-class", func(root *goquery.Selection) string {
		return firstText(root, `div[class*="DivCommentText"], div[class*="CommentText"]`)
	}),
	Text("longest-paragraph", func(root *goquery.Selection) string {
		var longest string
		root.Find("p").Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); len(t) > len(longest) {
				longest = t
			}
		})
		return longest
	}),
	Text("cleaned-text", func(root *goquery.Selection) string {
		t := root.Text()
		for _, re := range noise {
			t = re.ReplaceAllString(t, "")
		}
		return strings.Join(strings.Fields(t), " ")
	}),
}

func author(name, profile string) (Author, bool) {
	name = strings.TrimSpace(name)
	return Author{Name: name, Profile: strings.TrimSpace(profile)}, name != ""
}

// CommentAuthor é a cascata do autor.
var CommentAuthor = []Strategy[Author]{
	{Name: "username-content-wrapper", Extract: func(root *goquery.Selection) (Author, bool) {
		p := root.Find(".css-13x3qpp-DivUsernameContentWrapper a p").First()
		href, _ := p.Closest("a").Attr("href")
		return author(p.Text(), href)
	}},
	{Name: "comment-username-attr", Extract: func(root *goquery.Selection) (Author, bool) {
		el := root.Find(`[data-e2e="comment-username-1"], [data-e2e="comment-username-2"]`).First()
		href, _ := el.Closest("a").Attr("href")
		if href == "" {
			href, _ = el.Find("a").First().Attr("href")
		}
		return author(el.Text(), href)
	}},
	{Name: "username-wrapper-class", Extract: func(root *goquery.Selection) (Author, bool) {
		a := root.Find(`div[class*="DivUsernameWrapper"] a, div[class*="UsernameWrapper"] a, div[class*="DivUsernameContentWrapper"] a`).First()
		href, _ := a.Attr("href")
		return author(a.Find("p, span").First().Text(), href)
	}},
	{Name: "at-mention", Extract: func(root *goquery.Selection) (Author, bool) {
		m := usernameRe.FindStringSubmatch(root.Text())
		if m == nil {
			return Author{}, false
		}
		return author("@"+m[1], "/@"+m[1])
	}},
	{Name: "avatar-link", Extract: func(root *goquery.Selection) (Author, bool) {
		var href string
		root.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if a.Find(`img[class*="avatar"], img[class*="Avatar"]`).Length() > 0 {
				href, _ = a.Attr("href")
				return false
			}
			return true
		})
		m := usernameRe.FindStringSubmatch(href)
		if m == nil {
			return Author{}, false
		}
		return author("@"+m[1], href)
	}},
}

// CommentLikes devolve o contador de likes cru.
var CommentLikes = []Strategy[string]{
	Text("like-container", func(root *goquery.Selection) string {
		return firstText(root, ".css-1nd5cw-DivLikeContainer span")
	}),
	Text("like-container-class", func(root *goquery.Selection) string {
		return firstText(root, `div[class*="DivLikeContainer"] span, div[class*="LikeContainer"] span, div[class*="DivLikeWrapper"] span, div[class*="LikeWrapper"] span`)
	}),
	Text("comment-like-count", func(root *goquery.Selection) string {
		return firstText(root, `[data-e2e="comment-like-count"]`)
	}),
	Text("likes-text", func(root *goquery.Selection) string {
		if m := likesTextRe.FindStringSubmatch(root.Text()); m != nil {
			return m[1]
		}
		return ""
	}),
	Text("like-aria-label", func(root *goquery.Selection) string {
		label := firstAttr(root, `[aria-label*="Like"]`, "aria-label")
		if m := likesTextRe.FindStringSubmatch(label); m != nil {
			return m[1]
		}
		return ""
	}),
}

// CommentDate devolve a data como texto livre ("2d ago", "2024-1-3").
var CommentDate = []Strategy[string]{
	Text("sub-content-wrapper", func(root *goquery.Selection) string {
		return firstText(root, ".css-njhskk-DivCommentSubContentWrapper span")
	}),
	Text("sub-content-class", func(root *goquery.Selection) string {
		return firstText(root, `div[class*="DivCommentSubContent"] span, div[class*="CommentSubContent"] span, div[class*="CommentSubContentWrapper"] span`)
	}),
	Text("date-pattern", func(root *goquery.Selection) string {
		if m := dateRe.FindStringSubmatch(root.Text()); m != nil {
			return m[1]
		}
		return ""
	}),
}

// CommentHasReplies detecta a affordance de "ver respostas". É heurístico:
// ausência não prova que o comentário não tenha respostas.
var CommentHasReplies = []Strategy[bool]{
	Flag("reply-container", func(root *goquery.Selection) bool {
		return root.Find(".css-9kgp5o-DivReplyContainer, .css-1idgi02-DivViewRepliesContainer").Length() > 0
	}),
	Flag("reply-container-class", func(root *goquery.Selection) bool {
		return root.Find(`div[class*="DivReplyContainer"], div[class*="ReplyContainer"], div[class*="ViewRepliesContainer"], [data-e2e="view-more-replies"]`).Length() > 0
	}),
	Flag("view-replies-text", func(root *goquery.Selection) bool {
		t := root.Text()
		return strings.Contains(t, "View replies") || strings.Contains(t, "View more replies") || viewRepliesRe.MatchString(t)
	}),
}
