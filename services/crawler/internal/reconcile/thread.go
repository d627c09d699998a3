// Package reconcile monta a lista plana de comentários (com referências
// explícitas ao pai) a partir de um snapshot já expandido da página.
package reconcile

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/loviiin/argus-crawler/services/crawler/internal/extract"
	"github.com/loviiin/argus-crawler/services/crawler/internal/normalize"
)

// Record é um comentário reconciliado. ID é o id nativo (data island) ou
// sintético (comment_N); ParentID vazio significa sem pai.
type Record struct {
	ID            string
	Content       string
	Author        string
	AuthorProfile string
	Likes         int64
	Date          string
	IsReply       bool
	ParentID      string
	HasReplies    bool
	Native        bool
}

// Thread recalcula a lista inteira de comentários do snapshot. Não guarda
// estado entre chamadas. Se houver data island com comentários, ele é a
// fonte e o DOM é ignorado.
func Thread(doc *goquery.Document, origin string) []Record {
	if origin == "" {
		origin = extract.DefaultOrigin
	}
	b := &builder{
		origin:    origin,
		byContent: make(map[string]string),
		ambiguous: make(map[string]bool),
		walked:    make(map[*html.Node]bool),
		visited:   make(map[*html.Node]bool),
	}

	if list, ok := extract.CommentIsland(doc); ok {
		b.fromIsland(list)
		log.Printf("[Reconcile] %d comentários via data island", len(b.out))
		return b.out
	}

	b.fromDOM(doc)
	return b.out
}

type builder struct {
	origin    string
	next      int
	out       []Record
	byContent map[string]string
	ambiguous map[string]bool
	walked    map[*html.Node]bool // reply containers já percorridos estruturalmente
	visited   map[*html.Node]bool // candidatos de topo já processados
	nativeIDs map[string]bool
}

func (b *builder) syntheticID() string {
	b.next++
	return fmt.Sprintf("comment_%d", b.next)
}

func (b *builder) fromIsland(list []extract.IslandComment) {
	b.nativeIDs = make(map[string]bool)
	for _, c := range list {
		// pai descartado: as respostas ficam órfãs, como no DOM
		parent, _ := b.islandRecord(c, "", false)
		for _, r := range c.Replies {
			b.islandRecord(r, parent, true)
		}
	}
}

func (b *builder) islandRecord(c extract.IslandComment, parentID string, isReply bool) (string, bool) {
	content := normalize.Text(c.Body())
	if utf8.RuneCountInString(content) <= 1 {
		return "", false
	}
	id := c.NativeID()
	native := id != ""
	if native {
		if b.nativeIDs[id] {
			return id, true
		}
		b.nativeIDs[id] = true
	} else {
		id = b.syntheticID()
	}

	b.out = append(b.out, Record{
		ID:            id,
		Content:       content,
		Author:        c.AuthorName(),
		AuthorProfile: c.ProfileURL(b.origin),
		Likes:         c.LikeCount(),
		Date:          normalize.DateText(c.DateText()),
		IsReply:       isReply,
		ParentID:      parentID,
		HasReplies:    !isReply && (c.ReportsReplies() || len(c.Replies) > 0),
		Native:        native,
	})
	return id, true
}

func candidates(doc *goquery.Document) *goquery.Selection {
	for _, sel := range extract.CommentContainerSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return doc.Find(extract.CommentContainerSelectors[0])
}

func (b *builder) fromDOM(doc *goquery.Document) {
	containers := candidates(doc)
	if containers.Length() == 0 {
		log.Println("[Reconcile] nenhum contêiner de comentário encontrado")
		return
	}

	containers.Each(func(_ int, c *goquery.Selection) {
		node := c.Nodes[0]
		if b.coveredByAncestor(node) {
			return
		}

		if rc := c.Closest(extract.ReplyContainerSelector); rc.Length() > 0 {
			b.orphan(c, rc)
			return
		}

		b.visited[node] = true
		replies := replyContainersOf(c)
		parentID := ""
		if rec, ok := b.item(topLevelScope(c), c, false); ok {
			rec.ID = b.syntheticID()
			rec.HasReplies = rec.HasReplies || len(replies) > 0
			b.remember(rec.Content, rec.ID)
			b.out = append(b.out, rec)
			parentID = rec.ID
		}

		// pai descartado: as respostas ficam como órfãs (ParentID vazio)
		for _, rc := range replies {
			b.walkReplies(rc, parentID)
		}
	})
}

// coveredByAncestor evita processar duas vezes nós aninhados (candidato dentro
// de outro candidato ou de um reply container já percorrido).
func (b *builder) coveredByAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if b.visited[p] || b.walked[p] {
			return true
		}
	}
	return false
}

// topLevelScope devolve uma cópia do contêiner sem os blocos de resposta, para
// que as cascatas de texto não leiam conteúdo das respostas.
func topLevelScope(c *goquery.Selection) *goquery.Selection {
	scope := c.Clone()
	scope.Find(extract.ReplyContainerSelector).Remove()
	return scope
}

// replyContainersOf acha o bloco de respostas logo após o comentário ou
// aninhado nele.
func replyContainersOf(c *goquery.Selection) []*goquery.Selection {
	if next := c.Next(); next.Is(extract.ReplyContainerSelector) {
		return []*goquery.Selection{next}
	}
	var out []*goquery.Selection
	c.Find(extract.ReplyContainerSelector).Each(func(_ int, rc *goquery.Selection) {
		if rc.ParentsUntilSelection(c).Filter(extract.ReplyContainerSelector).Length() == 0 {
			out = append(out, rc)
		}
	})
	return out
}

func (b *builder) walkReplies(rc *goquery.Selection, parentID string) {
	b.walked[rc.Nodes[0]] = true
	rc.Find(extract.ReplyItemSelector).Each(func(_ int, item *goquery.Selection) {
		if item.ParentsUntilSelection(rc).Filter(extract.ReplyItemSelector).Length() > 0 {
			return
		}
		rec, ok := b.item(item, item, true)
		if !ok {
			return
		}
		rec.ID = b.syntheticID()
		rec.ParentID = parentID
		b.out = append(b.out, rec)
	})
}

// orphan trata um candidato que está dentro de um reply container não
// alcançado pela caminhada estrutural: vira resposta e o pai é procurado pelo
// conteúdo. Sem match único, fica sem pai.
func (b *builder) orphan(c, rc *goquery.Selection) {
	b.visited[c.Nodes[0]] = true
	rec, ok := b.item(c, c, true)
	if !ok {
		return
	}
	rec.ID = b.syntheticID()
	rec.ParentID = b.parentByContent(rc)
	if rec.ParentID == "" {
		log.Printf("[Reconcile] resposta órfã sem pai resolvido: %.40q", rec.Content)
	}
	b.out = append(b.out, rec)
}

func (b *builder) parentByContent(rc *goquery.Selection) string {
	for _, cand := range []*goquery.Selection{rc.Prev(), rc.Closest(extract.ObjectWrapperSelector)} {
		if cand.Length() == 0 {
			continue
		}
		content := normalize.Text(extract.Value(topLevelScope(cand), extract.CommentContent, ""))
		if content == "" {
			continue
		}
		if b.ambiguous[content] {
			return ""
		}
		if id, ok := b.byContent[content]; ok {
			return id
		}
	}
	return ""
}

func (b *builder) remember(content, id string) {
	if _, dup := b.byContent[content]; dup {
		b.ambiguous[content] = true
		return
	}
	b.byContent[content] = id
}

// item extrai os campos de um comentário. scope é onde as cascatas de texto
// rodam; full é o contêiner inteiro (para detectar respostas). Conteúdo com
// um caractere ou menos é descartado.
func (b *builder) item(scope, full *goquery.Selection, isReply bool) (Record, bool) {
	content := normalize.Text(extract.Value(scope, extract.CommentContent, ""))
	if utf8.RuneCountInString(content) <= 1 {
		return Record{}, false
	}

	a := extract.Value(scope, extract.CommentAuthor, extract.Author{})
	if a.Name == "" {
		a.Name = "Unknown"
	}
	profile := ""
	if a.Profile != "" {
		profile = extract.ResolveLink(b.origin, a.Profile)
	}

	return Record{
		Content:       content,
		Author:        a.Name,
		AuthorProfile: profile,
		Likes:         normalize.ParseAbbreviatedCount(extract.Value(scope, extract.CommentLikes, "")),
		Date:          normalize.DateText(extract.Value(scope, extract.CommentDate, "")),
		IsReply:       isReply,
		HasReplies:    extract.Value(full, extract.CommentHasReplies, false),
	}, true
}
