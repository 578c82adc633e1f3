package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LJTian/xplorer/internal/bot"
	"github.com/LJTian/xplorer/internal/config"
	"github.com/LJTian/xplorer/internal/logger"
	"github.com/rs/zerolog/log"
)

// 一个仅执行一次采集的命令行入口：聚合后把回复文本打印到标准输出
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	if cfg == nil {
		return
	}
	logger.Setup(cfg.LogLevel, os.Stderr)

	b, err := bot.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init bot failed")
	}

	ctx := context.Background()
	fmt.Println(b.Collect(ctx, cfg.Source, cfg.DefaultQuery, cfg.DefaultMaxResults))
}
