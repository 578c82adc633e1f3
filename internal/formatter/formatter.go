package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/LJTian/xplorer/internal/collector"
)

const (
	// 单条聊天回复的上限，按字符（rune）计
	MaxMessageChars = 2000
	MaxItems        = 5
	MaxSummaryChars = 200
	Ellipsis        = "..."
)

// Format 为纯函数，输出不超过 MaxMessageChars 个字符
func Format(articles []collector.Article, label string) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No articles found from %s.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d article(s) from %s:\n\n", len(articles), label)

	for i, a := range articles {
		if i >= MaxItems {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(a.Authors, ", "))
		fmt.Fprintf(&b, "Published: %s\n", a.PublishedDate)
		fmt.Fprintf(&b, "URL: %s\n", a.URL)
		fmt.Fprintf(&b, "Summary: %s\n\n", truncate(a.Summary, MaxSummaryChars))
	}

	if len(articles) > MaxItems {
		fmt.Fprintf(&b, "_...and %d more articles_\n", len(articles)-MaxItems)
	}

	return Cap(b.String(), MaxMessageChars)
}

// Cap 截断到最多 limit 个字符，末尾三个字符为省略号
func Cap(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(Ellipsis)
	if keep < 0 {
		keep = 0
	}
	return prefix(s, keep) + Ellipsis
}

// truncate 保留前 n 个字符并追加省略号
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return prefix(s, n) + Ellipsis
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
