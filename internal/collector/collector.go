package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Article 统一采集后的文章结构，字段全部必填（允许为空串/空列表）
type Article struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"published_date"`
	Summary       string   `json:"summary"`
	// Source 与产出它的 Collector.Name() 一致
	Source string `json:"source"`
}

// Collector 抽象每一个内容源
type Collector interface {
	Name() string
	Description() string
	// Collect 无结果时返回空切片而不是错误
	Collect(ctx context.Context, query string, maxResults int) ([]Article, error)
}

var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("decode failure")
)

// CollectionError 是采集器对外暴露的统一错误，Kind 为 ErrTransport 或 ErrDecode
type CollectionError struct {
	Collector string
	Kind      error
	Cause     error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Collector, e.Kind, e.Cause)
}

func (e *CollectionError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func transportError(name string, cause error) error {
	return &CollectionError{Collector: name, Kind: ErrTransport, Cause: cause}
}

func decodeError(name string, cause error) error {
	return &CollectionError{Collector: name, Kind: ErrDecode, Cause: cause}
}

// EncodeQuery 只保留 ASCII 字母、数字与 -_.~，其余每个字节编码为 %XX
func EncodeQuery(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// collapse 去掉首尾空白，并把内部换行/连续空白合并为单个空格
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
