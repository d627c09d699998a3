// Package export gera a planilha de vídeos com os comentários indentados por thread.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
)

// Header é a primeira linha da planilha.
var Header = []string{"Channel", "Title", "Hashtags", "Link Video", "Likes", "Shares", "Saved", "Comments", "Comment Details"}

const replyPrefix = "    ↳ "

// Source é o que o export precisa do storage.
type Source interface {
	ListVideos(ctx context.Context, urls []string) ([]models.Video, error)
	FindComments(ctx context.Context, videoID string, f models.CommentFilter) ([]models.Comment, error)
}

// CommentDetails formata um comentário por linha; respostas ganham o prefixo ↳.
func CommentDetails(comments []models.Comment) string {
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		prefix := ""
		if c.IsReply {
			prefix = replyPrefix
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s (👍 %d)", prefix, c.Author, c.Content, c.Likes))
	}
	return strings.Join(lines, "\n")
}

// Row monta a linha da planilha de um vídeo.
func Row(v models.Video, comments []models.Comment) []string {
	return []string{
		v.Channel,
		v.Title,
		strings.Join(v.Hashtags, ", "),
		v.URL,
		strconv.FormatInt(v.Likes, 10),
		strconv.FormatInt(v.Shared, 10),
		strconv.FormatInt(v.Saved, 10),
		strconv.FormatInt(v.CommentsCount, 10),
		CommentDetails(comments),
	}
}

// Sheet é uma planilha pronta em memória.
type Sheet struct {
	Videos   []models.Video
	Comments map[string][]models.Comment
}

// Build lê os vídeos (todos, se urls vazio) e seus comentários.
func Build(ctx context.Context, src Source, urls []string) (*Sheet, error) {
	videos, err := src.ListVideos(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("listando vídeos: %w", err)
	}

	s := &Sheet{Videos: videos, Comments: make(map[string][]models.Comment, len(videos))}
	for _, v := range videos {
		comments, err := src.FindComments(ctx, v.ID, models.CommentFilter{})
		if err != nil {
			return nil, fmt.Errorf("comentários de %s: %w", v.URL, err)
		}
		s.Comments[v.ID] = comments
	}
	log.Printf("[Export] %d vídeos carregados para exportação", len(videos))
	return s, nil
}

// WriteCSV grava a planilha em formato CSV (RFC 4180).
func (s *Sheet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, v := range s.Videos {
		if err := cw.Write(Row(v, s.Comments[v.ID])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV grava a planilha em path, criando o diretório se preciso.
func (s *Sheet) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("criando diretório de export: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("criando %s: %w", path, err)
	}
	if err := s.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("gravando %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("[Export] ✅ %d vídeos exportados para %s", len(s.Videos), path)
	return nil
}

// RenderSummary imprime um resumo por vídeo no terminal.
func (s *Sheet) RenderSummary(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Channel", "Title", "Likes", "Comments", "Stored", "Replies"})

	var totalStored, totalReplies int
	for _, v := range s.Videos {
		comments := s.Comments[v.ID]
		replies := 0
		for _, c := range comments {
			if c.IsReply {
				replies++
			}
		}
		totalStored += len(comments)
		totalReplies += replies
		t.AppendRow(table.Row{v.Channel, truncate(v.Title, 40), v.Likes, v.CommentsCount, len(comments), replies})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d vídeos", len(s.Videos)), "", "", totalStored, totalReplies})

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
