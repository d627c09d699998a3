package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loviiin/argus-crawler/services/crawler/internal/queue"
)

var enqueueKind *string

func init() {
	enqueueKind = enqueueCmd.Flags().String("kind", string(queue.KindProfile), "tipo do job: profile ou video")
	rootCmd.AddCommand(enqueueCmd)
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [--kind profile|video] <url...>",
	Short: "Publica URLs no stream CRAWL para os workers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := queue.ParseKind(*enqueueKind)
		if err != nil {
			return err
		}
		urls := args
		if len(urls) == 0 && kind == queue.KindProfile {
			urls = cfg.Crawl.Profiles
		}
		if err := requireArgs(urls, string(kind)); err != nil {
			return err
		}
		ctx := cmd.Context()

		nc, js, err := queue.Connect(cfg.Nats.URL)
		if err != nil {
			return err
		}
		defer nc.Close()

		// só o Redis do app: o dedup de jobs não precisa do Mongo
		a := &app{}
		defer a.close(ctx)
		if err := a.openRedis(ctx); err != nil {
			return err
		}

		n, err := queue.NewEnqueuer(js, a.dedup).Enqueue(ctx, kind, urls)
		fmt.Printf("%d de %d jobs publicados\n", n, len(urls))
		return err
	},
}
