// Package queue publica e consome jobs de crawl via NATS JetStream.
package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	StreamName     = "CRAWL"
	SubjectProfile = "jobs.crawl.profile"
	SubjectVideo   = "jobs.crawl.video"
	Durable        = "crawler-worker-group"
)

type Kind string

const (
	KindProfile Kind = "profile"
	KindVideo   Kind = "video"
)

// Job é uma URL de perfil ou de vídeo para o worker processar.
type Job struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	URL        string    `json:"url"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewJob cria um job com id novo.
func NewJob(kind Kind, url string) Job {
	return Job{ID: uuid.NewString(), Kind: kind, URL: url, EnqueuedAt: time.Now().UTC()}
}

// Subject devolve o subject do tipo de job.
func (k Kind) Subject() (string, error) {
	switch k {
	case KindProfile:
		return SubjectProfile, nil
	case KindVideo:
		return SubjectVideo, nil
	}
	return "", fmt.Errorf("tipo de job desconhecido: %q", k)
}

// ParseKind aceita "profile" e "video".
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, err := k.Subject(); err != nil {
		return "", err
	}
	return k, nil
}

// Decode valida o payload de uma mensagem.
func Decode(data []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("erro unmarshal job: %w", err)
	}
	if job.URL == "" {
		return Job{}, fmt.Errorf("job %s sem url", job.ID)
	}
	if _, err := job.Kind.Subject(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// EnsureStream garante que o stream CRAWL exista.
func EnsureStream(js nats.JetStreamContext) {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectProfile, SubjectVideo},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		log.Printf("Stream %s: %v (ok se já existe)", StreamName, err)
	}
}

// Connect abre a conexão e o contexto JetStream.
func Connect(url string) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, fmt.Errorf("erro NATS: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("erro JetStream: %w", err)
	}
	EnsureStream(js)
	return nc, js, nil
}
