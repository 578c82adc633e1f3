package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/xplorer/internal/collector"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// UnknownSourceError 表示请求的数据源没有注册
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return "unknown source: " + e.Name
}

// SourceError 记录 scope=all 时单个采集器的失败
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

type Result struct {
	Articles []collector.Article
	Failures []SourceError
}

type Option func(*Aggregator)

// WithTimeout 为每一次 Collect 调用设置独立的超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// WithConcurrency 限制 scope=all 时同时运行的采集器数量，1 即顺序执行
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

type Aggregator struct {
	registry    *collector.Registry
	timeout     time.Duration
	concurrency int
}

func New(registry *collector.Registry, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry:    registry,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Registry() *collector.Registry {
	return a.registry
}

// Aggregate 按 scope 运行一个或全部采集器。
// scope=all 时单个采集器失败只记录在 Result.Failures 中，不影响其余采集器；
// 指定数据源时，未注册或采集失败都会直接返回错误。
func (a *Aggregator) Aggregate(ctx context.Context, scope, query string, maxResults int) (Result, error) {
	if maxResults < 1 {
		return Result{}, fmt.Errorf("aggregate: max results must be positive, got %d", maxResults)
	}

	if strings.EqualFold(scope, collector.ScopeAll) {
		return a.collectAll(ctx, query, maxResults), nil
	}

	c, ok := a.registry.Lookup(scope)
	if !ok {
		return Result{}, &UnknownSourceError{Name: scope}
	}

	articles, err := a.collect(ctx, c, query, maxResults)
	if err != nil {
		log.Error().Err(err).Msgf("collect from %s failed", c.Name())
		return Result{}, err
	}
	log.Info().Msgf("collected %d articles from %s", len(articles), c.Name())
	return Result{Articles: articles}, nil
}

func (a *Aggregator) collectAll(ctx context.Context, query string, maxResults int) Result {
	collectors := a.registry.All()

	type slot struct {
		articles []collector.Article
		err      error
	}
	slots := make([]slot, len(collectors))

	// 并发执行，但按注册顺序合并结果；每个 goroutine 都返回 nil，错误只落在自己的槽位里
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, c := range collectors {
		i, c := i, c
		g.Go(func() error {
			articles, err := a.collect(ctx, c, query, maxResults)
			slots[i] = slot{articles: articles, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Articles: []collector.Article{}}
	for i, c := range collectors {
		s := slots[i]
		if s.err != nil {
			log.Error().Err(s.err).Msgf("collect from %s failed", c.Name())
			res.Failures = append(res.Failures, SourceError{Source: c.Name(), Err: s.err})
			continue
		}
		log.Info().Msgf("collected %d articles from %s", len(s.articles), c.Name())
		res.Articles = append(res.Articles, s.articles...)
	}
	return res
}

func (a *Aggregator) collect(ctx context.Context, c collector.Collector, query string, maxResults int) ([]collector.Article, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	articles, err := c.Collect(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []collector.Article{}
	}
	return articles, nil
}
