package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loviiin/argus-crawler/pkg/config"
	"github.com/loviiin/argus-crawler/pkg/logger"
	"github.com/loviiin/argus-crawler/pkg/metrics"
)

var (
	cfg      *config.Config
	crawlM   *metrics.Crawler
	logClose io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "argus-crawler",
	Short: "argus-crawler extrai vídeos e comentários de perfis TikTok.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		closer, err := logger.Setup(cfg.Log.Dir)
		if err != nil {
			return err
		}
		logClose = closer

		crawlM = metrics.New()
		if cfg.Metrics.Port != "" {
			go metrics.StartMetricsServer(cfg.Metrics.Port, crawlM)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			logClose.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "caminho do config.yaml (padrão: CONFIG_PATH ou busca local)")
	flags.Bool("headless", false, "roda o Chrome sem janela")
	flags.Int("max-videos", 0, "limite de vídeos por perfil")
	flags.StringSlice("profile", nil, "URL de perfil (pode repetir)")
	flags.String("metrics-port", "", "endereço do /metrics, ex: :9090")

	for _, name := range []string{"config", "headless", "max-videos", "profile", "metrics-port"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetEnvPrefix("ARGUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig lê o YAML + env do projeto e aplica por cima as flags (ou ARGUS_*).
func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		return applyOverrides(config.LoadConfig()), nil
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return applyOverrides(c), nil
}

func applyOverrides(c *config.Config) *config.Config {
	if viper.IsSet("headless") {
		c.Browser.Headless = viper.GetBool("headless")
	}
	if viper.IsSet("max-videos") {
		c.Crawl.MaxVideosPerProfile = viper.GetInt("max-videos")
	}
	if p := viper.GetStringSlice("profile"); len(p) > 0 {
		c.Crawl.Profiles = p
	}
	if viper.IsSet("metrics-port") {
		c.Metrics.Port = viper.GetString("metrics-port")
	}
	return c
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("Erro: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
