package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
)

type memSource struct {
	videos   []models.Video
	comments map[string][]models.Comment
}

func (m *memSource) ListVideos(_ context.Context, urls []string) ([]models.Video, error) {
	if len(urls) == 0 {
		return m.videos, nil
	}
	var out []models.Video
	for _, u := range urls {
		for _, v := range m.videos {
			if v.URL == u {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (m *memSource) FindComments(_ context.Context, videoID string, _ models.CommentFilter) ([]models.Comment, error) {
	return m.comments[videoID], nil
}

func fixture() *memSource {
	parent := "c1"
	return &memSource{
		videos: []models.Video{
			{ID: "v1", URL: "https://www.tiktok.com/@a/video/1", Channel: "a", Title: "Hello, world", Hashtags: []string{"#go", "#dev"}, Likes: 1500, Shared: 3, Saved: 7, CommentsCount: 2},
			{ID: "v2", URL: "https://www.tiktok.com/@a/video/2", Channel: "a", Title: "Second"},
		},
		comments: map[string][]models.Comment{
			"v1": {
				{ID: "c1", Author: "ana", Content: "Great video!", Likes: 12, HasReplies: true},
				{ID: "c2", Author: "a", Content: "Thanks!", Likes: 1, IsReply: true, ParentCommentID: &parent},
			},
		},
	}
}

func TestCommentDetails(t *testing.T) {
	src := fixture()
	got := CommentDetails(src.comments["v1"])
	assert.Equal(t, "ana: Great video! (👍 12)\n    ↳ a: Thanks! (👍 1)", got)
	assert.Equal(t, "", CommentDetails(nil))
}

func TestWriteCSVRoundTrips(t *testing.T) {
	sheet, err := Build(context.Background(), fixture(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"a", "Hello, world", "#go, #dev", "https://www.tiktok.com/@a/video/1",
		"1500", "3", "7", "2",
		"ana: Great video! (👍 12)\n    ↳ a: Thanks! (👍 1)",
	}, records[1])
	assert.Equal(t, "", records[2][8])
}

func TestBuildFiltersByURL(t *testing.T) {
	sheet, err := Build(context.Background(), fixture(), []string{"https://www.tiktok.com/@a/video/2"})
	require.NoError(t, err)
	require.Len(t, sheet.Videos, 1)
	assert.Equal(t, "Second", sheet.Videos[0].Title)
}

func TestSaveCSVAndSummary(t *testing.T) {
	sheet, err := Build(context.Background(), fixture(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "videos.csv")
	require.NoError(t, sheet.SaveCSV(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Channel,Title,Hashtags"))

	var out bytes.Buffer
	sheet.RenderSummary(&out)
	assert.Contains(t, out.String(), "Hello, world")
	assert.Contains(t, strings.ToLower(out.String()), "2 vídeos", "rodapé sai em maiúsculas")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
