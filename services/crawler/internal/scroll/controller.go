// Package scroll carrega listas preguiçosas (comentários, grade de vídeos)
// até a contagem de itens estabilizar.
package scroll

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/loviiin/argus-crawler/pkg/retry"
)

// Actions são as ações de carregamento disparadas a cada iteração.
type Actions interface {
	// ScrollContainer rola o contêiner reconhecido ou, sem ele, a página.
	ScrollContainer(ctx context.Context) error
	PressEnd(ctx context.Context) error
	ScrollLastIntoView(ctx context.Context) error
	// ClickLoadMore clica num botão de "carregar mais" se existir.
	ClickLoadMore(ctx context.Context) (bool, error)
}

// Counter conta os itens carregados no momento.
type Counter func(ctx context.Context) (int, error)

// SleepFunc espera d ou até ctx acabar.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Config struct {
	MaxIterations  int
	StallThreshold int
	// LoadMoreAt é a iteração sem crescimento em que se tenta o "load more".
	LoadMoreAt     int
	Settle         time.Duration
	StepPause      time.Duration
	LoadMoreSettle time.Duration
	Sleep          SleepFunc
}

// DefaultConfig: 30 iterações, para após 5 sem crescimento, "load more" na 3ª.
func DefaultConfig() Config {
	return Config{
		MaxIterations:  30,
		StallThreshold: 5,
		LoadMoreAt:     3,
		Settle:         3 * time.Second,
		StepPause:      500 * time.Millisecond,
		LoadMoreSettle: 5 * time.Second,
	}
}

func (c Config) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return retry.Sleep(ctx, d)
}

// Result é o estado final do loop. Err != nil indica que o loop foi abortado;
// FinalCount continua válido (última leitura bem-sucedida).
type Result struct {
	FinalCount     int
	Iterations     int
	Stalls         int
	LoadMoreClicks int
	Err            error
}

// LoadAll repete as ações de carregamento até MaxIterations ou até a contagem
// ficar StallThreshold iterações seguidas sem crescer. Qualquer erro de ação
// ou de contagem encerra o loop.
func LoadAll(ctx context.Context, a Actions, count Counter, cfg Config) Result {
	var res Result
	prev := 0

	for res.Iterations < cfg.MaxIterations && res.Stalls < cfg.StallThreshold {
		res.Iterations++

		n, err := iterate(ctx, a, count, cfg)
		if err != nil {
			res.Err = fmt.Errorf("scroll iteração %d: %w", res.Iterations, err)
			log.Printf("[Scroll] abortando loop: %v", res.Err)
			return res
		}
		res.FinalCount = n

		if n == prev {
			res.Stalls++
			log.Printf("[Scroll] sem novos itens (%d), %d/%d", n, res.Stalls, cfg.StallThreshold)
			if res.Stalls == cfg.LoadMoreAt {
				res.LoadMoreClicks += tryLoadMore(ctx, a, cfg)
			}
		} else {
			res.Stalls = 0
			prev = n
			log.Printf("[Scroll] %d itens após a iteração %d", n, res.Iterations)
		}

		if err := cfg.sleep(ctx, cfg.Settle); err != nil {
			res.Err = err
			return res
		}
	}
	return res
}

func iterate(ctx context.Context, a Actions, count Counter, cfg Config) (int, error) {
	if err := a.ScrollContainer(ctx); err != nil {
		return 0, fmt.Errorf("scroll do contêiner: %w", err)
	}
	if err := cfg.sleep(ctx, cfg.StepPause); err != nil {
		return 0, err
	}
	if err := a.PressEnd(ctx); err != nil {
		return 0, fmt.Errorf("tecla End: %w", err)
	}
	if err := cfg.sleep(ctx, cfg.StepPause); err != nil {
		return 0, err
	}
	if err := a.ScrollLastIntoView(ctx); err != nil {
		return 0, fmt.Errorf("scroll até o último item: %w", err)
	}
	n, err := count(ctx)
	if err != nil {
		return 0, fmt.Errorf("contando itens: %w", err)
	}
	return n, nil
}

// tryLoadMore é best-effort: falha só gera log.
func tryLoadMore(ctx context.Context, a Actions, cfg Config) int {
	clicked, err := a.ClickLoadMore(ctx)
	if err != nil {
		log.Printf("[Scroll] erro no load more: %v", err)
		return 0
	}
	if !clicked {
		return 0
	}
	log.Println("[Scroll] clicou em load more")
	_ = cfg.sleep(ctx, cfg.LoadMoreSettle)
	return 1
}
