package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExposed(t *testing.T) {
	m := New()
	m.Videos.WithLabelValues("saved").Inc()
	m.Videos.WithLabelValues("saved").Inc()
	m.Videos.WithLabelValues("existing").Inc()
	m.CommentsSaved.Add(12)
	m.ScrollLoops.Observe(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Videos.WithLabelValues("saved")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.CommentsSaved))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `argus_crawler_videos_total{result="saved"} 2`), text)
	assert.Contains(t, text, "argus_crawler_comments_saved_total 12")
	assert.Contains(t, text, "argus_crawler_scroll_iterations_count 1")
}
