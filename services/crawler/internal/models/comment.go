package models

import "time"

// Comment é um comentário persistido. CommentKey é o id atribuído na extração
// (comment_N ou o id nativo da plataforma); ParentCommentID aponta para o ID
// armazenado do pai e fica vazio em comentários de topo e respostas órfãs.
// Position é a ordem do comentário dentro da extração que o gravou.
type Comment struct {
	ID              string    `bson:"_id" json:"id"`
	CommentKey      string    `bson:"comment_key" json:"comment_key"`
	VideoID         string    `bson:"video_id" json:"video_id"`
	VideoURL        string    `bson:"video_url" json:"video_url"`
	Content         string    `bson:"content" json:"content"`
	Author          string    `bson:"author" json:"author"`
	AuthorProfile   string    `bson:"author_profile,omitempty" json:"author_profile,omitempty"`
	Likes           int64     `bson:"likes" json:"likes"`
	Date            string    `bson:"date" json:"date"`
	IsReply         bool      `bson:"is_reply" json:"is_reply"`
	ParentCommentID *string   `bson:"parent_comment_id" json:"parent_comment_id"`
	HasReplies      bool      `bson:"has_replies" json:"has_replies"`
	Fingerprint     string    `bson:"fingerprint" json:"fingerprint"`
	Position        int       `bson:"position" json:"position"`
	CrawledAt       time.Time `bson:"crawled_at" json:"crawled_at"`
}

// CommentFilter filtra comentários de um vídeo; campos nil não restringem.
type CommentFilter struct {
	HasReplies *bool
	IsReply    *bool
}

// Bool devolve um ponteiro para b (atalho para montar filtros).
func Bool(b bool) *bool { return &b }
