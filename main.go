package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"profile-optimizer-go/internal/agent"
	"profile-optimizer-go/internal/api/handler"
	"profile-optimizer-go/internal/api/router"
	"profile-optimizer-go/internal/config"
	appCoreLogger "profile-optimizer-go/internal/logger"
	"profile-optimizer-go/internal/parser"
	"profile-optimizer-go/internal/processor"
	"profile-optimizer-go/internal/storage"
	"profile-optimizer-go/internal/tracing"
	"profile-optimizer-go/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"
	serviceName = "profile-optimizer"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化分布式追踪（如果启用）
	shutdownTracing, err := tracing.InitTracerProvider(ctx, serviceName, version, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭追踪导出器失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	llm, err := agent.NewGroqChatModel(
		cfg.Groq.APIKey,
		cfg.Groq.Model,
		cfg.Groq.APIURL,
		agent.WithTemperature(cfg.Groq.Temperature),
		agent.WithRequestTimeout(time.Duration(cfg.Groq.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		glog.Fatalf("初始化LLM客户端失败: %v", err)
	}
	// 客户端侧限流，避免撞上Groq的QPM限额
	limitedLLM := ratelimit.NewRateLimitedChatModel(llm, cfg.Groq.QPM)
	glog.Info("LLM客户端初始化成功")

	pdfExtractor := parser.NewPDFDocumentExtractor(
		parser.WithExtractorLogger(appCoreLogger.Logger),
	)
	glog.Info("PDF提取器初始化成功")

	// 接口字段必须显式按nil判空赋值，直接塞入nil指针会得到非nil接口
	components := processor.Components{
		PDFExtractor: pdfExtractor,
		ChatModel:    limitedLLM,
	}
	if storageManager.MySQL != nil {
		components.Store = storageManager.MySQL
	}
	if storageManager.MinIO != nil {
		components.ObjectStore = storageManager.MinIO
	}
	if storageManager.Redis != nil {
		components.Cache = storageManager.Redis
	}

	profileProcessor, err := processor.NewProfileProcessor(components, processor.Settings{
		Logger: appCoreLogger.Logger,
	})
	if err != nil {
		glog.Fatalf("初始化档案处理器失败: %v", err)
	}
	glog.Info("档案处理器初始化成功")

	profileHandler := handler.NewProfileHandler(cfg, profileProcessor)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, profileHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog全局日志，并把Hertz的hlog桥接到同一输出
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	zlog.Logger = appCoreLogger.Logger

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if level, err := zerolog.ParseLevel(cfg.Logger.Level); err == nil {
		switch level {
		case zerolog.DebugLevel:
			glog.SetLevel(glog.LevelDebug)
		case zerolog.WarnLevel:
			glog.SetLevel(glog.LevelWarn)
		case zerolog.ErrorLevel:
			glog.SetLevel(glog.LevelError)
		default:
			glog.SetLevel(glog.LevelInfo)
		}
	}
}
