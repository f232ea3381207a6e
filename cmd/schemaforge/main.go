// =============================================================================
// schemaforge 主入口
// =============================================================================
// 读取一份 ContentAnalysis JSON，运行生成管线，输出 JSON-LD
//
// 使用方法:
//
//	schemaforge -input page.json                      # 自动检测模式
//	schemaforge -input page.json -types FAQPage       # 用户指定模式
//	schemaforge -input page.json -config config.yaml  # 指定配置文件
//
// 未配置 Provider 凭证时自动走离线路径，便于本地试用。
// =============================================================================

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/schemaforge/config"
	"github.com/BaSui01/schemaforge/internal/metrics"
	"github.com/BaSui01/schemaforge/internal/telemetry"
	"github.com/BaSui01/schemaforge/pipeline"
	"github.com/BaSui01/schemaforge/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML 配置文件路径")
		inputPath  = flag.String("input", "", "ContentAnalysis JSON 文件路径")
		typesFlag  = flag.String("types", "", "逗号分隔的请求 @type 列表（用户指定模式）")
		timeout    = flag.Duration("timeout", 2*time.Minute, "单次生成的总超时")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: schemaforge -input page.json [-types FAQPage,Article] [-config config.yaml]")
		os.Exit(2)
	}

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	tel, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("init telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(ctx)
	}()

	analysis, err := readAnalysis(*inputPath)
	if err != nil {
		logger.Fatal("read content analysis", zap.Error(err))
	}

	var opts types.GenerationOptions
	if *typesFlag != "" {
		for _, t := range strings.Split(*typesFlag, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.RequestedTypes = append(opts.RequestedTypes, t)
			}
		}
	}
	opts.IncludeImages = true
	opts.IncludeVideos = true
	opts.IncludeFAQ = true
	opts.IncludeBreadcrumbs = true

	collector := metrics.NewCollector(prometheus.NewRegistry(), logger)
	gen := pipeline.New(cfg, logger, collector)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := gen.Generate(ctx, analysis, opts)
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("marshal result", zap.Error(err))
	}
	fmt.Println(string(out))
}

func readAnalysis(path string) (types.ContentAnalysis, error) {
	var analysis types.ContentAnalysis
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis, err
	}
	if err := json.Unmarshal(data, &analysis); err != nil {
		return analysis, fmt.Errorf("parse %s: %w", path, err)
	}
	return analysis, nil
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// 日志进 stderr，stdout 留给 JSON-LD 输出。
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
