package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
)

const (
	ArxivName             = "Arxiv"
	ArxivDefaultBaseURL   = "http://export.arxiv.org/api/query"
	arxivMaxResponseBytes = 8 << 20 // 8MB
	arxivClientTimeout    = 30 * time.Second
)

// ArxivCollector 通过 arXiv 官方 API（Atom feed）检索论文
type ArxivCollector struct {
	baseURL string
	client  *http.Client
}

func NewArxivCollector(baseURL string) *ArxivCollector {
	if baseURL == "" {
		baseURL = ArxivDefaultBaseURL
	}
	return &ArxivCollector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: arxivClientTimeout},
	}
}

func (a *ArxivCollector) Name() string {
	return ArxivName
}

func (a *ArxivCollector) Description() string {
	return "Collects academic papers from arXiv.org"
}

func (a *ArxivCollector) Collect(ctx context.Context, query string, maxResults int) ([]Article, error) {
	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d", a.baseURL, EncodeQuery(query), maxResults)
	log.Info().Msgf("fetch from arxiv: %s", url)

	body, err := a.fetch(ctx, url)
	if err != nil {
		return nil, transportError(ArxivName, err)
	}

	articles, err := a.decode(body)
	if err != nil {
		log.Error().Err(err).Msg("arxiv: parse feed failed")
		return nil, decodeError(ArxivName, err)
	}
	return articles, nil
}

func (a *ArxivCollector) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, arxivMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// decode 将 Atom feed 的 entry 映射为 Article；没有 entry 时返回空列表。
// gofeed.Parser 在首次解析时会写入自身的 translator 字段，不能跨 goroutine 共享，每次调用单独创建。
// published 缺失时 gofeed 会退回到 updated。
func (a *ArxivCollector) decode(body []byte) ([]Article, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		authors := make([]string, 0, len(item.Authors))
		for _, p := range item.Authors {
			if p == nil {
				continue
			}
			authors = append(authors, p.Name)
		}

		articles = append(articles, Article{
			Title:         collapse(item.Title),
			Authors:       authors,
			URL:           item.GUID,
			PublishedDate: item.Published,
			Summary:       collapse(item.Description),
			Source:        ArxivName,
		})
	}
	return articles, nil
}
