package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config representa a estrutura completa do config.yaml.
// Valores do YAML são aplicados primeiro; variáveis de ambiente sobrescrevem
// e os env-default só preenchem campos que ficaram vazios.
type Config struct {
	App struct {
		Env string `yaml:"env" env:"APP_ENV" env-default:"local"`
	} `yaml:"app"`

	Crawl    CrawlConfig    `yaml:"crawl"`
	Browser  BrowserConfig  `yaml:"browser"`
	Session  SessionConfig  `yaml:"session"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Debug    DebugConfig    `yaml:"debug"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Export   ExportConfig   `yaml:"export"`
	Media    MediaConfig    `yaml:"media"`
	Nats     NatsConfig     `yaml:"nats"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`

	Meilisearch struct {
		Host  string `yaml:"host" env:"MEILI_HOST"`
		Key   string `yaml:"key" env:"MEILI_KEY"`
		Index string `yaml:"index" env:"MEILI_INDEX" env-default:"videos"`
	} `yaml:"meilisearch"`

	S3 S3Config `yaml:"s3"`
}

// CrawlConfig agrupa as opções do driver de crawl (perfis, limites e delays).
type CrawlConfig struct {
	Profiles             []string      `yaml:"profiles" env:"CRAWL_PROFILES" env-separator:","`
	Origin               string        `yaml:"origin" env:"CRAWL_ORIGIN" env-default:"https://www.tiktok.com"`
	MaxVideosPerProfile  int           `yaml:"max_videos_per_profile" env:"MAX_VIDEOS_PER_PROFILE" env-default:"4"`
	DelayBetweenVideos   time.Duration `yaml:"delay_between_videos" env:"DELAY_BETWEEN_VIDEOS" env-default:"5s"`
	DelayBetweenProfiles time.Duration `yaml:"delay_between_profiles" env:"DELAY_BETWEEN_PROFILES" env-default:"10s"`
	DelayBetweenComments time.Duration `yaml:"delay_between_comments" env:"DELAY_BETWEEN_COMMENTS" env-default:"2s"`
	MaxRetries           int           `yaml:"max_retries" env:"MAX_RETRIES" env-default:"3"`
	RetryStep            time.Duration `yaml:"retry_step" env:"RETRY_STEP" env-default:"1s"`
	ProfileScrolls       int           `yaml:"profile_scrolls" env:"PROFILE_SCROLLS" env-default:"10"`
}

type BrowserConfig struct {
	Headless    bool   `yaml:"headless" env:"HEADLESS" env-default:"false"`
	Bin         string `yaml:"bin" env:"CHROME_PATH"`
	UserDataDir string `yaml:"user_data_dir" env:"USER_DATA_DIR" env-default:"./chrome-profile"`
	DebugPort   string `yaml:"debug_port" env:"DEBUG_PORT"`
	UserAgent   string `yaml:"user_agent" env:"USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
	Language    string `yaml:"accept_language" env:"ACCEPT_LANGUAGE" env-default:"en-US,en;q=0.9"`
}

// SessionConfig controla navegação, cookies e as esperas de login/captcha.
type SessionConfig struct {
	CookiesDir        string        `yaml:"cookies_dir" env:"COOKIES_DIR" env-default:"./cookies"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" env:"NAVIGATION_TIMEOUT" env-default:"120s"`
	Settle            time.Duration `yaml:"settle" env:"NAVIGATION_SETTLE" env-default:"5s"`
	RetryBase         time.Duration `yaml:"retry_base" env:"NAVIGATION_RETRY_BASE" env-default:"5s"`
	RetryStep         time.Duration `yaml:"retry_step" env:"NAVIGATION_RETRY_STEP" env-default:"2s"`
	LoginPolls        int           `yaml:"login_polls" env:"LOGIN_POLLS" env-default:"30"`
	LoginPollInterval time.Duration `yaml:"login_poll_interval" env:"LOGIN_POLL_INTERVAL" env-default:"10s"`
	CaptchaWait       time.Duration `yaml:"captcha_wait" env:"CAPTCHA_WAIT" env-default:"5m"`
}

type ScrollConfig struct {
	MaxIterations  int           `yaml:"max_iterations" env:"SCROLL_MAX_ITERATIONS" env-default:"30"`
	StallThreshold int           `yaml:"stall_threshold" env:"SCROLL_STALL_THRESHOLD" env-default:"5"`
	LoadMoreAt     int           `yaml:"load_more_at" env:"SCROLL_LOAD_MORE_AT" env-default:"3"`
	Settle         time.Duration `yaml:"settle" env:"SCROLL_SETTLE" env-default:"3s"`
	MaxReplyClicks int           `yaml:"max_reply_clicks" env:"MAX_REPLY_CLICKS" env-default:"100"`
	ReplySettle    time.Duration `yaml:"reply_settle" env:"REPLY_SETTLE" env-default:"1500ms"`
}

type DebugConfig struct {
	Dir    string        `yaml:"dir" env:"DEBUG_DIR" env-default:"./debug"`
	TTL    time.Duration `yaml:"ttl" env:"DEBUG_TTL" env-default:"72h"`
	Upload bool          `yaml:"upload" env:"DEBUG_UPLOAD" env-default:"false"`
}

type LogConfig struct {
	Dir string `yaml:"dir" env:"LOG_DIR" env-default:"./logs"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT"`
}

type ExportConfig struct {
	Path string `yaml:"path" env:"EXPORT_PATH" env-default:"./export/videos.csv"`
}

type MediaConfig struct {
	Enabled bool          `yaml:"enabled" env:"MEDIA_ENABLED" env-default:"false"`
	Timeout time.Duration `yaml:"timeout" env:"MEDIA_TIMEOUT" env-default:"60s"`
}

type NatsConfig struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type RedisConfig struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTLHours int    `yaml:"ttl_hours" env:"REDIS_TTL_HOURS" env-default:"720"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"MONGO_URI" env-default:"mongodb://localhost:27017/tiktok_crawler"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"argus-crawler"`
}

// LoadConfig segue a busca de arquivo do resto do projeto e encerra o processo
// se a configuração for inválida.
func LoadConfig() *Config {
	cfg, err := Load(findConfigPath())
	if err != nil {
		log.Fatalf("Erro fatal lendo config: %v", err)
	}
	return cfg
}

// Load lê o YAML em path (opcional), aplica o ambiente e valida.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		absPath, _ := filepath.Abs(path)
		log.Printf("Carregando config de: %s", absPath)

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("abrindo config %q: %w", path, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("erro ao decodificar YAML: %w", err)
		}
	} else {
		log.Println("Aviso: config.yaml não encontrado. Usando padrões/env vars.")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("erro aplicando env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigPath() string {
	// 1. Variável de ambiente (Docker/Prod)
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	// 2. Local dev: diretório atual e "subindo" pastas
	for _, p := range []string{"config.yaml", "config/config.yaml", "../../config/config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Crawl.MaxVideosPerProfile < 0 {
		return fmt.Errorf("config: max_videos_per_profile must be >= 0")
	}
	if c.Crawl.MaxRetries < 1 {
		return fmt.Errorf("config: max_retries must be >= 1")
	}
	if c.Scroll.MaxIterations < 1 || c.Scroll.StallThreshold < 1 {
		return fmt.Errorf("config: scroll max_iterations and stall_threshold must be >= 1")
	}
	if c.Crawl.Origin == "" {
		return fmt.Errorf("config: empty crawl origin")
	}
	return nil
}
