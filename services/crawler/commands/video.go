package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(videoCmd)
}

var videoCmd = &cobra.Command{
	Use:   "video <video-url...>",
	Short: "Extrai vídeos avulsos. URLs já gravadas não são revisitadas.",
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

		failed := 0
		for _, u := range args {
			v, err := a.crawler.CrawlVideo(ctx, u)
			if err != nil {
				log.Printf("❌ %s: %v", u, err)
				failed++
				continue
			}
			fmt.Printf("%s\t%s\t%d curtidas\n", v.URL, v.Title, v.Likes)
		}
		if failed > 0 {
			return fmt.Errorf("%d de %d vídeos falharam", failed, len(args))
		}
		return nil
	},
}
