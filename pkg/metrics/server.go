package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawler reúne os contadores expostos em /metrics.
type Crawler struct {
	Registry        *prometheus.Registry
	Videos          *prometheus.CounterVec
	CommentsSaved   prometheus.Counter
	CommentsSkipped prometheus.Counter
	Navigations     *prometheus.CounterVec
	ScrollLoops     prometheus.Histogram
	ReplyClicks     prometheus.Counter
}

// New registra as métricas num registry próprio (evita colisão com o global em testes).
func New() *Crawler {
	reg := prometheus.NewRegistry()
	m := &Crawler{
		Registry: reg,
		Videos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_crawler_videos_total",
			Help: "Vídeos processados por resultado (saved, existing, failed).",
		}, []string{"result"}),
		CommentsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argus_crawler_comments_saved_total",
			Help: "Comentários gravados no storage.",
		}),
		CommentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argus_crawler_comments_duplicate_total",
			Help: "Comentários ignorados por fingerprint repetido.",
		}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argus_crawler_navigations_total",
			Help: "Navegações por resultado (ok, failed).",
		}, []string{"result"}),
		ScrollLoops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "argus_crawler_scroll_iterations",
			Help:    "Iterações do loop de scroll até convergir.",
			Buckets: []float64{1, 3, 5, 10, 15, 20, 30},
		}),
		ReplyClicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argus_crawler_reply_clicks_total",
			Help: "Cliques em \"View replies\".",
		}),
	}
	reg.MustRegister(m.Videos, m.CommentsSaved, m.CommentsSkipped, m.Navigations, m.ScrollLoops, m.ReplyClicks)
	return m
}

// Handler expõe o registry no formato Prometheus.
func (m *Crawler) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartMetricsServer inicia um servidor HTTP que expõe /metrics. Bloqueia.
func StartMetricsServer(port string, m *Crawler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	log.Printf("Metrics server ouvindo em %s/metrics", port)
	if err := http.ListenAndServe(port, mux); err != nil {
		log.Printf("metrics: servidor encerrado: %v", err)
	}
}
