package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/loviiin/argus-crawler/pkg/dedup"
)

// Publisher é a parte do JetStreamContext usada para enfileirar.
type Publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Enqueuer publica jobs, pulando URLs já enfileiradas dentro do TTL do dedup.
type Enqueuer struct {
	pub   Publisher
	dedup *dedup.Deduplicator
}

func NewEnqueuer(pub Publisher, d *dedup.Deduplicator) *Enqueuer {
	return &Enqueuer{pub: pub, dedup: d}
}

// Enqueue devolve quantos jobs foram publicados.
func (e *Enqueuer) Enqueue(ctx context.Context, kind Kind, urls []string) (int, error) {
	subject, err := kind.Subject()
	if err != nil {
		return 0, err
	}

	published := 0
	for _, u := range urls {
		if e.dedup != nil {
			isNew, err := e.dedup.MarkIfNew(ctx, dedup.PrefixJob, string(kind)+":"+u)
			if err != nil {
				log.Printf("[Queue] erro verificando duplicidade de %s: %v", u, err)
			} else if !isNew {
				log.Printf("[Queue] [Cache HIT] job já enfileirado: %s", u)
				continue
			}
		}

		data, err := json.Marshal(NewJob(kind, u))
		if err != nil {
			return published, fmt.Errorf("erro marshal job: %w", err)
		}
		if _, err := e.pub.Publish(subject, data); err != nil {
			if e.dedup != nil {
				_ = e.dedup.Forget(ctx, dedup.PrefixJob, string(kind)+":"+u)
			}
			return published, fmt.Errorf("erro ao publicar job %s: %w", u, err)
		}
		log.Printf("[Queue] 📤 %s → %s", u, subject)
		published++
	}
	return published, nil
}
