package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	HackerNewsName       = "HackerNews"
	HackerNewsDefaultURL = "https://hn.algolia.com/api/v1/search"
	hnItemURL            = "https://news.ycombinator.com/item?id="
	hnMaxResponseBytes   = 2 << 20 // 2MB
	hnClientTimeout      = 10 * time.Second
)

// HackerNewsCollector 通过 Algolia 搜索 API 检索 Hacker News 故事
type HackerNewsCollector struct {
	baseURL string
	client  *http.Client
}

func NewHackerNewsCollector(baseURL string) *HackerNewsCollector {
	if baseURL == "" {
		baseURL = HackerNewsDefaultURL
	}
	return &HackerNewsCollector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: hnClientTimeout},
	}
}

func (h *HackerNewsCollector) Name() string {
	return HackerNewsName
}

func (h *HackerNewsCollector) Description() string {
	return "Searches stories posted to Hacker News"
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	StoryText string `json:"story_text"`
}

func (h *HackerNewsCollector) Collect(ctx context.Context, query string, maxResults int) ([]Article, error) {
	url := fmt.Sprintf("%s?query=%s&tags=story&hitsPerPage=%d", h.baseURL, EncodeQuery(query), maxResults)
	log.Info().Msgf("fetch from hackernews: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError(HackerNewsName, fmt.Errorf("build request: %w", err))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, transportError(HackerNewsName, fmt.Errorf("fetch search: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, transportError(HackerNewsName, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out hnSearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, hnMaxResponseBytes)).Decode(&out); err != nil {
		return nil, decodeError(HackerNewsName, fmt.Errorf("unmarshal search: %w", err))
	}

	hits := out.Hits
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	results := make([]Article, 0, len(hits))
	for _, hit := range hits {
		itemURL := hit.URL
		if itemURL == "" {
			itemURL = hnItemURL + hit.ObjectID
		}

		authors := []string{}
		if hit.Author != "" {
			authors = append(authors, hit.Author)
		}

		results = append(results, Article{
			Title:         collapse(hit.Title),
			Authors:       authors,
			URL:           itemURL,
			PublishedDate: hit.CreatedAt,
			Summary:       collapse(hit.StoryText),
			Source:        HackerNewsName,
		})
	}

	if len(results) == 0 {
		log.Info().Msg("hackernews: no items fetched")
	}
	return results, nil
}
