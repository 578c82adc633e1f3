package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/xplorer/internal/aggregator"
	"github.com/LJTian/xplorer/internal/collector"
	"github.com/LJTian/xplorer/internal/config"
	"github.com/LJTian/xplorer/internal/formatter"
	"github.com/LJTian/xplorer/internal/scheduler"
	"github.com/rs/zerolog/log"
)

const ScheduledLabel = "scheduled collection"

type Settings struct {
	DefaultSource     string
	DefaultQuery      string
	DefaultMaxResults int
	CronSpec          string
	ChannelID         string
}

// Bot 持有聚合器与默认参数，由指令处理和定时任务共享
type Bot struct {
	agg      *aggregator.Aggregator
	settings Settings
	now      func() time.Time
}

func New(agg *aggregator.Aggregator, settings Settings) *Bot {
	if settings.DefaultSource == "" {
		settings.DefaultSource = strings.ToLower(collector.ArxivName)
	}
	settings.DefaultMaxResults = config.ClampMaxResults(settings.DefaultMaxResults)
	return &Bot{agg: agg, settings: settings, now: time.Now}
}

func (b *Bot) Aggregator() *aggregator.Aggregator {
	return b.agg
}

// Handle 分发一次指令并返回要回复的文本
func (b *Bot) Handle(ctx context.Context, cmd Command) (string, error) {
	log.Info().Msgf("received command: %s", cmd.Name)

	switch cmd.Name {
	case CommandCollect:
		source, query, maxResults := b.Resolve(cmd.Options)
		return b.Collect(ctx, source, query, maxResults), nil
	case CommandSources:
		return b.Sources(), nil
	case CommandSchedule:
		return b.Schedule(), nil
	default:
		log.Warn().Msgf("unknown command: %s", cmd.Name)
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}
}

// Resolve 用默认值补齐缺省参数，并把 max_results 限制在 1-20
func (b *Bot) Resolve(opts Options) (source, query string, maxResults int) {
	source = b.settings.DefaultSource
	if opts.Source != nil && strings.TrimSpace(*opts.Source) != "" {
		source = strings.TrimSpace(*opts.Source)
	}
	query = b.settings.DefaultQuery
	if opts.Query != nil && strings.TrimSpace(*opts.Query) != "" {
		query = *opts.Query
	}
	maxResults = b.settings.DefaultMaxResults
	if opts.MaxResults != nil {
		maxResults = config.ClampMaxResults(*opts.MaxResults)
	}
	return source, query, maxResults
}

// Collect 聚合并渲染结果；指定数据源失败时返回面向用户的错误文本
func (b *Bot) Collect(ctx context.Context, source, query string, maxResults int) string {
	res, err := b.agg.Aggregate(ctx, source, query, maxResults)
	if err != nil {
		return RenderError(err)
	}
	return formatter.Format(res.Articles, source)
}

// Digest 是定时任务的入口：scope=all + 默认参数，返回文本与文章数
func (b *Bot) Digest(ctx context.Context) (string, int) {
	log.Info().Msg("running periodic collection")

	res, err := b.agg.Aggregate(ctx, collector.ScopeAll, b.settings.DefaultQuery, b.settings.DefaultMaxResults)
	if err != nil {
		log.Error().Err(err).Msg("periodic collection failed")
		return RenderError(err), 0
	}
	for _, f := range res.Failures {
		log.Warn().Err(f.Err).Msgf("periodic collection: %s skipped", f.Source)
	}
	return formatter.Format(res.Articles, ScheduledLabel), len(res.Articles)
}

func (b *Bot) Sources() string {
	var sb strings.Builder
	sb.WriteString("Available Sources:\n\n")
	for _, c := range b.agg.Registry().All() {
		fmt.Fprintf(&sb, "• %s: %s\n", c.Name(), c.Description())
	}
	return formatter.Cap(sb.String(), formatter.MaxMessageChars)
}

func (b *Bot) Schedule() string {
	var sb strings.Builder
	sb.WriteString("Collection Schedule:\n\n")
	fmt.Fprintf(&sb, "Cron: %s\n", b.settings.CronSpec)

	if next, err := scheduler.NextRun(b.settings.CronSpec, b.now()); err != nil {
		fmt.Fprintf(&sb, "Invalid schedule: %v\n", err)
	} else {
		fmt.Fprintf(&sb, "Next run: %s\n", next.Format(time.RFC3339))
	}

	if b.settings.ChannelID == "" {
		sb.WriteString("\nPeriodic collection is disabled: no destination channel is configured.")
	} else {
		sb.WriteString("\nThe bot will automatically collect articles based on this schedule.")
	}
	return sb.String()
}

// RenderError 将聚合错误转换为回复文本
func RenderError(err error) string {
	var unknown *aggregator.UnknownSourceError
	if errors.As(err, &unknown) {
		return "Unknown source: " + unknown.Name
	}
	return formatter.Cap("Error: "+err.Error(), formatter.MaxMessageChars)
}
