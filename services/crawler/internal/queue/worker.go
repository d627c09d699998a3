package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/loviiin/argus-crawler/pkg/retry"
)

// Fetcher é a parte da Subscription pull usada pelo worker.
type Fetcher interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
}

// Handler processa um job. Erro devolve a mensagem para a fila (Nak).
type Handler func(ctx context.Context, job Job) error

// Stats resume o que o worker consumiu.
type Stats struct {
	Done    int
	Failed  int
	Invalid int
}

// WorkerConfig controla espera do Fetch e o delay anti-rate-limit entre jobs.
type WorkerConfig struct {
	FetchWait  time.Duration
	ErrorPause time.Duration
	Delay      time.Duration
}

var DefaultWorkerConfig = WorkerConfig{
	FetchWait:  10 * time.Second,
	ErrorPause: 2 * time.Second,
	Delay:      5 * time.Second,
}

// Subscribe cria o pull subscriber durável. Todos os workers usam o mesmo
// durable para dividir a carga; AckWait longo evita redelivery no meio de um perfil.
func Subscribe(js nats.JetStreamContext) (*nats.Subscription, error) {
	return js.PullSubscribe("jobs.crawl.>", Durable, nats.AckWait(30*time.Minute))
}

// Consume busca um job por vez até ctx terminar.
func Consume(ctx context.Context, sub Fetcher, handle Handler, cfg WorkerConfig) Stats {
	var stats Stats
	for {
		if ctx.Err() != nil {
			return stats
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(cfg.FetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue // fila vazia
			}
			log.Printf("[Worker] Erro no Fetch: %v", err)
			if retry.Sleep(ctx, cfg.ErrorPause) != nil {
				return stats
			}
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		msg := msgs[0]
		job, err := Decode(msg.Data)
		if err != nil {
			log.Printf("[Worker] ❌ %v", err)
			stats.Invalid++
			// payload inválido nunca vai funcionar: termina em vez de Nak
			if err := msg.Term(); err != nil {
				log.Printf("[Worker] erro no Term: %v", err)
			}
			continue
		}

		log.Printf("[Worker] 📥 job %s: %s %s", job.ID, job.Kind, job.URL)
		if err := handle(ctx, job); err != nil {
			log.Printf("[Worker] ❌ erro processando %s: %v", job.URL, err)
			stats.Failed++
			if err := msg.Nak(); err != nil {
				log.Printf("[Worker] erro no Nak: %v", err)
			}
			continue
		}

		stats.Done++
		if err := msg.Ack(); err != nil {
			log.Printf("[Worker] erro no Ack: %v", err)
		}
		log.Printf("[Worker] ✅ job %s concluído", job.ID)

		if retry.Sleep(ctx, cfg.Delay) != nil {
			return stats
		}
	}
}
