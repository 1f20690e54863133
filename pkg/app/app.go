// Package app 提供应用程序的初始化与运行：HTTP 服务、事件消费者与定时任务.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/reportvault/pkg/api"
	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/events"
	"github.com/yeisme/reportvault/pkg/internal/jobs"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/storage"
	kvc "github.com/yeisme/reportvault/pkg/internal/storage/kv"
	"github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/middleware"
	"github.com/yeisme/reportvault/pkg/rule"
	"github.com/yeisme/reportvault/pkg/scheduler"
	"github.com/yeisme/reportvault/pkg/tracing"
)


type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
	logger  zerolog.Logger
}

// NewApp 在配置加载后按顺序初始化日志、追踪、指标、存储与调度器，并挂载中间件和路由.
func NewApp(ctx context.Context) (*App, error) {
	config := configs.GetConfig()

	rule.Init()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Init()
	l := log.Logger()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		_ = manager.Close()

		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, manager, config.Jobs); err != nil {
		_ = manager.Close()

		return nil, fmt.Errorf("register jobs: %w", err)
	}

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.GzipMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.AuthMiddleware(config.Auth),
		middleware.RoleMiddleware(config.Auth),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
		middleware.CollaboratorsMiddleware(collaborators(manager, config.Events)),
	)

	if err := metrics.StartMetricsServer(config.Metrics, engine); err != nil {
		_ = manager.Close()

		return nil, err
	}

	api.RegisterGroup(engine, config)

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
		sched:   sched,
		logger:  log.Component("app"),
	}, nil
}

// collaborators 事件开启时审计与活动通知都经由消息队列发布.
func collaborators(mgr *storage.Manager, cfg configs.EventsConfig) service.Collaborators {
	if !cfg.Enabled || mgr.MQ == nil {
		return service.Collaborators{}
	}

	var dedupe kvc.KVStore
	if mgr.KV != nil {
		dedupe = mgr.KV
	}

	pub := events.NewPublisher(mgr.MQ, dedupe, cfg)

	return service.Collaborators{Audit: pub, Activity: pub}
}

// Run 运行 HTTP 服务、事件消费者与调度器，任一失败或 ctx 取消时全部退出.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		return events.RunConsumers(gctx, a.manager.MQ, a.config.Events)
	})

	g.Go(func() error {
		a.sched.Start()
		<-gctx.Done()

		return a.sched.Stop()
	})

	g.Go(func() error {
		<-gctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
		defer cancel()

		a.logger.Info().Msg("shutting down")

		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// Close 释放存储与追踪资源.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
	defer cancel()

	return errors.Join(a.manager.Close(), tracing.ShutdownTracer(ctx))
}
