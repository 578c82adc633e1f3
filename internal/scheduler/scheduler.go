package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// 六段式 cron：秒 分 时 日 月 周
var specParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Pipeline 生成一次定时推送的内容
type Pipeline interface {
	Digest(ctx context.Context) (text string, count int)
}

// Publisher 把文本投递到固定的目标频道
type Publisher interface {
	Publish(ctx context.Context, channelID, content string) error
}

type Scheduler struct {
	cron      *cron.Cron
	pipeline  Pipeline
	publisher Publisher
	channelID string
	timeout   time.Duration
}

// New 注册定时采集任务；channelID 为空时不注册任务，RunOnce 也不会做任何事
func New(spec, channelID string, p Pipeline, pub Publisher, timeout time.Duration) (*Scheduler, error) {
	c := cron.New(cron.WithParser(specParser))

	s := &Scheduler{
		cron:      c,
		pipeline:  p,
		publisher: pub,
		channelID: channelID,
		timeout:   timeout,
	}

	if channelID == "" {
		log.Warn().Msg("CHANNEL_ID not set, periodic collection disabled")
		return s, nil
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("add collection job %q: %w", spec, err)
	}
	log.Info().Msgf("periodic collection will post to channel %s (cron %q)", channelID, spec)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度，不再触发新任务；返回的 ctx 在正在执行的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Shutdown 停止调度并等待正在执行的任务结束，ctx 到期时不再等待
func (s *Scheduler) Shutdown(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// RunOnce 对外暴露的单次执行入口，方便手动触发
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	if s.channelID == "" || s.publisher == nil {
		return
	}
	log.Info().Msg("start periodic collection job...")

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, count := s.pipeline.Digest(ctx)
	if count == 0 {
		log.Info().Msg("periodic collection found nothing, skip posting")
		return
	}

	if err := s.publisher.Publish(ctx, s.channelID, text); err != nil {
		log.Error().Err(err).Msgf("send periodic collection to channel %s failed", s.channelID)
		return
	}
	log.Info().Msgf("periodic collection done, posted %d articles to channel %s", count, s.channelID)
}

// NextRun 计算 spec 在 from 之后的下一次触发时间
func NextRun(spec string, from time.Time) (time.Time, error) {
	sched, err := specParser.Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Validate 检查 spec 是否为合法的六段式 cron 表达式
func Validate(spec string) error {
	_, err := specParser.Parse(spec)
	return err
}
