package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(commentsCmd)
}

var commentsCmd = &cobra.Command{
	Use:   "comments <video-url...>",
	Short: "Recarrega os comentários de vídeos já gravados e salva só os novos.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireArgs(args, "vídeo"); err != nil {
			return err
		}
		ctx := cmd.Context()

		a, err := openCrawler(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		n, err := a.crawler.RefreshAll(ctx, args)
		fmt.Printf("%d comentários novos em %d vídeos\n", n, len(args))
		return err
	},
}
