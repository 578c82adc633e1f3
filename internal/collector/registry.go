package collector

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ScopeAll 是聚合所有采集器时使用的保留名称，不能被注册为采集器名
const ScopeAll = "all"

var ErrDuplicateCollector = errors.New("duplicate collector name")

// Registry 按注册顺序保存采集器，名字大小写不敏感
type Registry struct {
	mu         sync.RWMutex
	collectors []Collector
}

func NewRegistry(collectors ...Collector) (*Registry, error) {
	r := &Registry{}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 追加一个采集器；重名或使用保留名属于配置错误
func (r *Registry) Register(c Collector) error {
	name := c.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("register collector: empty name")
	}
	if strings.EqualFold(name, ScopeAll) {
		return fmt.Errorf("register collector %q: name is reserved", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.collectors {
		if strings.EqualFold(existing.Name(), name) {
			return fmt.Errorf("register collector %q: %w", name, ErrDuplicateCollector)
		}
	}
	r.collectors = append(r.collectors, c)
	return nil
}

func (r *Registry) Lookup(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.collectors {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// All 返回注册顺序的快照，调用方可以在不持锁的情况下遍历
func (r *Registry) All() []Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Collector, len(r.collectors))
	copy(out, r.collectors)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collectors)
}
