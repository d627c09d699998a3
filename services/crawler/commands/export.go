package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/loviiin/argus-crawler/services/crawler/internal/export"
)

var exportOut *string

func init() {
	exportOut = exportCmd.Flags().StringP("out", "o", "", "arquivo CSV (padrão: export.path)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [video-url...]",
	Short: "Gera o CSV de vídeos e comentários a partir do banco.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		sheet, err := export.Build(ctx, a.store, args)
		if err != nil {
			return err
		}
		path := *exportOut
		if path == "" {
			path = cfg.Export.Path
		}
		if err := sheet.SaveCSV(path); err != nil {
			return err
		}
		sheet.RenderSummary(os.Stdout)
		return nil
	},
}
