package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/loviiin/argus-crawler/services/crawler/internal/queue"
)

func init() {
	rootCmd.AddCommand(workCmd)
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Consome jobs do stream CRAWL, um por vez, até receber SIGINT/SIGTERM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		nc, js, err := queue.Connect(cfg.Nats.URL)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub, err := queue.Subscribe(js)
		if err != nil {
			return fmt.Errorf("erro ao criar pull subscriber: %w", err)
		}
		defer sub.Unsubscribe()

		a, err := openCrawler(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		wcfg := queue.DefaultWorkerConfig
		wcfg.Delay = cfg.Crawl.DelayBetweenVideos

		handle := func(ctx context.Context, job queue.Job) error {
			switch job.Kind {
			case queue.KindProfile:
				sum, err := a.crawler.Run(ctx, []string{job.URL})
				if err != nil {
					return err
				}
				if sum.Profiles == 0 {
					return fmt.Errorf("perfil %s não pôde ser lido", job.URL)
				}
				return nil
			case queue.KindVideo:
				_, err := a.crawler.CrawlVideo(ctx, job.URL)
				return err
			}
			return fmt.Errorf("tipo de job desconhecido: %q", job.Kind)
		}

		log.Printf("Worker rodando! Consumindo %s sequencialmente...", queue.StreamName)
		stats := queue.Consume(ctx, sub, handle, wcfg)
		log.Printf("Worker encerrado: %d ok, %d falhas, %d inválidos", stats.Done, stats.Failed, stats.Invalid)
		return nil
	},
}
