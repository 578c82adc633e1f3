package bot

import (
	"fmt"

	"github.com/LJTian/xplorer/internal/aggregator"
	"github.com/LJTian/xplorer/internal/collector"
	"github.com/LJTian/xplorer/internal/config"
)

// DefaultCollectors 返回启动时注册的采集器，顺序即 scope=all 时的合并顺序
func DefaultCollectors(cfg *config.Config) []collector.Collector {
	return []collector.Collector{
		collector.NewArxivCollector(cfg.ArxivAPIURL),
		collector.NewHackerNewsCollector(cfg.HNAPIURL),
		&collector.PlaceholderCollector{},
	}
}

// FromConfig 组装注册表、聚合器与 Bot
func FromConfig(cfg *config.Config) (*Bot, error) {
	registry, err := collector.NewRegistry(DefaultCollectors(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("init collector registry: %w", err)
	}

	agg := aggregator.New(registry,
		aggregator.WithTimeout(cfg.CollectTimeout),
		aggregator.WithConcurrency(cfg.CollectConcurrency),
	)

	return New(agg, Settings{
		DefaultQuery:      cfg.DefaultQuery,
		DefaultMaxResults: cfg.DefaultMaxResults,
		CronSpec:          cfg.CronSpec,
		ChannelID:         cfg.ChannelID,
	}), nil
}
