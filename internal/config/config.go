package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DeliveryRedis   = "redis"
	DeliveryWebhook = "webhook"

	MinMaxResults = 1
	MaxMaxResults = 20
)

type Config struct {
	AppPort       string `long:"port" env:"APP_PORT" default:"9000" description:"HTTP port of the interaction endpoint"`
	BasicAuthUser string `long:"basic-user" env:"APP_BASIC_USER" description:"Basic Auth user (optional)"`
	BasicAuthPass string `long:"basic-pass" env:"APP_BASIC_PASS" description:"Basic Auth password (optional)"`

	DefaultQuery      string `long:"query" env:"ARXIV_SEARCH_QUERY" default:"cat:cs.AI" description:"Default search query"`
	DefaultMaxResults int    `long:"max-results" env:"ARXIV_MAX_RESULTS" default:"10" description:"Default number of results per source"`

	CronSpec   string `long:"schedule" env:"COLLECTION_SCHEDULE" default:"0 0 9 * * *" description:"Six-field cron spec of the periodic collection"`
	ChannelID  string `long:"channel-id" env:"CHANNEL_ID" description:"Destination channel of the periodic collection; empty disables it"`
	Delivery   string `long:"delivery" env:"DELIVERY" default:"redis" choice:"redis" choice:"webhook" description:"How periodic results are delivered"`
	RedisAddr  string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for pub/sub delivery"`
	WebhookURL string `long:"webhook-url" env:"WEBHOOK_URL" description:"Webhook URL for webhook delivery"`

	CollectTimeout     time.Duration `long:"collect-timeout" env:"COLLECT_TIMEOUT" default:"30s" description:"Deadline of a single collector call (0 disables it)"`
	CollectConcurrency int           `long:"collect-concurrency" env:"COLLECT_CONCURRENCY" default:"4" description:"Collectors run at once for scope all"`

	ArxivAPIURL string `long:"arxiv-api-url" env:"ARXIV_API_URL" default:"http://export.arxiv.org/api/query" description:"arXiv query endpoint"`
	HNAPIURL    string `long:"hn-api-url" env:"HN_API_URL" default:"https://hn.algolia.com/api/v1/search" description:"Hacker News search endpoint"`

	// 仅 cmd/collect 使用
	Source string `long:"source" env:"COLLECT_SOURCE" default:"all" description:"Source of a one-shot collection (a source name or all)"`

	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
}

// Load 读取 .env（若存在）、环境变量与命令行参数
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env failed")
	}
	return LoadArgs(os.Args[1:])
}

// LoadArgs 解析给定的参数；请求 --help 时返回 (nil, nil)
func LoadArgs(args []string) (*Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().Msgf("config loaded: port=%s cron=%q query=%q max_results=%d", cfg.AppPort, cfg.CronSpec, cfg.DefaultQuery, cfg.DefaultMaxResults)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultMaxResults < MinMaxResults || c.DefaultMaxResults > MaxMaxResults {
		return fmt.Errorf("default max results must be within %d-%d, got %d", MinMaxResults, MaxMaxResults, c.DefaultMaxResults)
	}
	if c.CollectTimeout < 0 {
		return fmt.Errorf("collect timeout must not be negative, got %s", c.CollectTimeout)
	}
	if c.ChannelID != "" && c.Delivery == DeliveryWebhook && c.WebhookURL == "" {
		return fmt.Errorf("webhook delivery needs WEBHOOK_URL")
	}
	return nil
}

// PeriodicEnabled 未配置目标频道时定时采集不做任何事
func (c *Config) PeriodicEnabled() bool {
	return c.ChannelID != ""
}

// ClampMaxResults 将用户输入限制在 1-20 之间
func ClampMaxResults(n int) int {
	if n < MinMaxResults {
		return MinMaxResults
	}
	if n > MaxMaxResults {
		return MaxMaxResults
	}
	return n
}
