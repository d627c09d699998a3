package scroll

import (
	"context"
	"log"
	"time"
)

// ReplyExpander abre os blocos de respostas, que só entram no DOM depois do clique.
type ReplyExpander interface {
	// ClickFirstViewReplies clica no primeiro "View replies" visível.
	ClickFirstViewReplies(ctx context.Context) (bool, error)
	// ClickRemainingViewReplies clica via DOM em todos os que sobraram.
	ClickRemainingViewReplies(ctx context.Context) (int, error)
	// ClickViewRepliesByText clica nos elementos com texto "View N replies".
	ClickViewRepliesByText(ctx context.Context) (int, error)
}

type ReplyConfig struct {
	MaxClicks  int
	Settle     time.Duration
	BulkSettle time.Duration
	Sleep      SleepFunc
}

func DefaultReplyConfig() ReplyConfig {
	return ReplyConfig{
		MaxClicks:  100,
		Settle:     1500 * time.Millisecond,
		BulkSettle: 5 * time.Second,
	}
}

func (c ReplyConfig) sleep(ctx context.Context, d time.Duration) error {
	return Config{Sleep: c.Sleep}.sleep(ctx, d)
}

type ReplyResult struct {
	Clicked int
	Bulk    int
	ByText  int
	// Err guarda o primeiro erro; as fases seguintes rodam mesmo assim.
	Err error
}

// Total soma os cliques das três fases.
func (r ReplyResult) Total() int { return r.Clicked + r.Bulk + r.ByText }

// ExpandReplies clica um a um até não sobrar nenhum (limite MaxClicks); se
// houve cliques, faz uma varredura em lote; por fim clica pelo texto.
func ExpandReplies(ctx context.Context, e ReplyExpander, cfg ReplyConfig) ReplyResult {
	var res ReplyResult
	fail := func(err error) {
		log.Printf("[Replies] %v", err)
		if res.Err == nil {
			res.Err = err
		}
	}

	for res.Clicked < cfg.MaxClicks {
		ok, err := e.ClickFirstViewReplies(ctx)
		if err != nil {
			fail(err)
			break
		}
		if !ok {
			break
		}
		res.Clicked++
		if err := cfg.sleep(ctx, cfg.Settle); err != nil {
			res.Err = err
			return res
		}
	}
	log.Printf("[Replies] %d cliques em \"View replies\"", res.Clicked)

	if res.Clicked > 0 {
		if err := cfg.sleep(ctx, cfg.BulkSettle); err != nil {
			res.Err = err
			return res
		}
		n, err := e.ClickRemainingViewReplies(ctx)
		if err != nil {
			fail(err)
		}
		res.Bulk = n
		if err := cfg.sleep(ctx, cfg.BulkSettle); err != nil {
			res.Err = err
			return res
		}
	}

	n, err := e.ClickViewRepliesByText(ctx)
	if err != nil {
		fail(err)
	}
	res.ByText = n
	if n > 0 {
		if err := cfg.sleep(ctx, cfg.BulkSettle); err != nil && res.Err == nil {
			res.Err = err
		}
	}
	return res
}
