package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/loviiin/argus-crawler/services/crawler/internal/export"
)

var crawlNoExport *bool

func init() {
	crawlNoExport = crawlCmd.Flags().Bool("no-export", false, "não gera o CSV no final")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [profile-url...]",
	Short: "Percorre os perfis (args ou crawl.profiles) e grava vídeos e comentários.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		profiles := args
		if len(profiles) == 0 {
			profiles = cfg.Crawl.Profiles
		}
		if err := requireArgs(profiles, "perfil"); err != nil {
			return err
		}

		a, err := openCrawler(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		log.Printf("🚀 Iniciando crawl de %d perfis (máx %d vídeos por perfil)", len(profiles), cfg.Crawl.MaxVideosPerProfile)
		sum, err := a.crawler.Run(ctx, profiles)
		if err != nil {
			log.Printf("crawl interrompido: %v", err)
		}
		fmt.Printf("perfis: %d | vídeos novos: %d | existentes: %d | falhas: %d\n",
			sum.Profiles, sum.Videos, sum.Existing, sum.Failed)

		if *crawlNoExport || ctx.Err() != nil {
			return err
		}
		sheet, xerr := export.Build(ctx, a.store, nil)
		if xerr != nil {
			return xerr
		}
		if xerr := sheet.SaveCSV(cfg.Export.Path); xerr != nil {
			return xerr
		}
		sheet.RenderSummary(os.Stdout)
		return err
	},
}
