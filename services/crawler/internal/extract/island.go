package extract

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IslandComment é um comentário como vem no JSON embutido na página.
type IslandComment struct {
	ID                flexString      `json:"id"`
	CID               flexString      `json:"cid"`
	Text              string          `json:"text"`
	Content           string          `json:"content"`
	User              *islandUser     `json:"user"`
	Author            string          `json:"author"`
	AuthorProfile     string          `json:"author_profile"`
	DiggCount         flexInt         `json:"diggCount"`
	Likes             flexInt         `json:"likes"`
	CreateTime        flexString      `json:"createTime"`
	Date              flexString      `json:"date"`
	ReplyCommentTotal flexInt         `json:"replyCommentTotal"`
	HasReplies        flexInt         `json:"has_replies"`
	Replies           []IslandComment `json:"replies"`
}

type islandUser struct {
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
}

// NativeID devolve id ou cid.
func (c IslandComment) NativeID() string {
	if c.ID != "" {
		return string(c.ID)
	}
	return string(c.CID)
}

// Body devolve text ou content.
func (c IslandComment) Body() string {
	if strings.TrimSpace(c.Text) != "" {
		return c.Text
	}
	return c.Content
}

// AuthorName segue uniqueId → nickname → author → Unknown.
func (c IslandComment) AuthorName() string {
	if c.User != nil {
		if c.User.UniqueID != "" {
			return c.User.UniqueID
		}
		if c.User.Nickname != "" {
			return c.User.Nickname
		}
	}
	if c.Author != "" {
		return c.Author
	}
	return "Unknown"
}

// ProfileURL monta o perfil a partir do uniqueId quando existe.
func (c IslandComment) ProfileURL(origin string) string {
	if c.User != nil && c.User.UniqueID != "" {
		return ResolveLink(origin, "/@"+c.User.UniqueID)
	}
	if c.AuthorProfile != "" {
		return ResolveLink(origin, c.AuthorProfile)
	}
	return ""
}

// LikeCount usa diggCount e cai para likes.
func (c IslandComment) LikeCount() int64 {
	if c.DiggCount > 0 {
		return int64(c.DiggCount)
	}
	return int64(c.Likes)
}

// DateText devolve createTime (epoch em texto) ou date.
func (c IslandComment) DateText() string {
	if c.CreateTime != "" {
		return string(c.CreateTime)
	}
	return string(c.Date)
}

// ReportsReplies indica se o item declara respostas.
func (c IslandComment) ReportsReplies() bool {
	return c.ReplyCommentTotal > 0 || c.HasReplies > 0
}

// island é um marcador de início de JSON dentro de um <script>.
type island struct {
	marker string
	open   byte
}

var islands = []island{
	{marker: `"commentList"`, open: '['},
	{marker: "window.__INIT_PROPS__", open: '{'},
}

// CommentIsland procura uma lista estruturada de comentários nos scripts da
// página. ok só é true quando a lista existe e não está vazia.
func CommentIsland(doc *goquery.Document) ([]IslandComment, bool) {
	var found []IslandComment
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		for _, is := range islands {
			list, ok := decodeIsland(body, is)
			if ok && len(list) > 0 {
				found = list
				return false
			}
		}
		return true
	})
	return found, len(found) > 0
}

// decodeIsland tenta cada ocorrência do marcador até uma decodificar com
// comentários ("commentList":null antes da lista real é comum).
func decodeIsland(body string, is island) ([]IslandComment, bool) {
	for {
		idx := strings.Index(body, is.marker)
		if idx < 0 {
			return nil, false
		}
		body = body[idx+len(is.marker):]
		if list, ok := decodeAt(body, is); ok && len(list) > 0 {
			return list, true
		}
	}
}

func decodeAt(rest string, is island) ([]IslandComment, bool) {
	start := strings.IndexByte(rest, is.open)
	if start < 0 || strings.TrimSpace(strings.TrimLeft(rest[:start], " \t\r\n:=")) != "" {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(rest[start:]))
	if is.open == '[' {
		var list []IslandComment
		if err := dec.Decode(&list); err != nil {
			return nil, false
		}
		return list, true
	}

	var props struct {
		Comments []IslandComment `json:"comments"`
	}
	if err := dec.Decode(&props); err != nil {
		return nil, false
	}
	return props.Comments, props.Comments != nil
}

// flexString aceita string ou número no JSON.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexInt aceita número, string numérica ou booleano.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*f = 0
		return nil
	case bytes.Equal(b, []byte("true")):
		*f = 1
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}
