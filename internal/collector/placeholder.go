package collector

import (
	"context"

	"github.com/rs/zerolog/log"
)

const PlaceholderName = "Example Articles"

// PlaceholderCollector 不访问任何网络，始终返回空列表，用来演示如何接入新的数据源
type PlaceholderCollector struct{}

func (p *PlaceholderCollector) Name() string {
	return PlaceholderName
}

func (p *PlaceholderCollector) Description() string {
	return "Example collector for article sites (placeholder implementation)"
}

func (p *PlaceholderCollector) Collect(_ context.Context, query string, maxResults int) ([]Article, error) {
	log.Debug().Msgf("placeholder collector called: query=%q max_results=%d", query, maxResults)
	return []Article{}, nil
}
