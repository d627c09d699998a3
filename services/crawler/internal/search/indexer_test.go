package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loviiin/argus-crawler/services/crawler/internal/models"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.tiktok.com/@fahasa_official/video/7310549811661540615", "7310549811661540615"},
		{"https://www.tiktok.com/@a/video/123?is_from_webapp=1", "123"},
		{"https://www.tiktok.com/@a/video/123/", "123"},
		{"https://site/o/video/2", "2"},
		{"https://www.tiktok.com/@a.b", "_a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VideoID(tt.url), tt.url)
	}
}

func TestDocumentKeepsTopLevelComments(t *testing.T) {
	v := &models.Video{URL: "https://www.tiktok.com/@a/video/9", Title: "hello #go", Channel: "@a", Hashtags: []string{"#go"}, Likes: 1500}
	doc := Document(v, []models.Comment{
		{Content: "Great video!"},
		{Content: "Thanks!", IsReply: true},
	})

	assert.Equal(t, "9", doc["video_id"])
	assert.Equal(t, int64(1500), doc["likes"])
	assert.Equal(t, []string{"Great video!"}, doc["comments"])
}
