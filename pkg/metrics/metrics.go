// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、目录树与批量操作指标.
//
// Example:
//
//	import "github.com/yeisme/reportvault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.FolderOps.WithLabelValues("create", metrics.Result(err)).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/reportvault/pkg/configs"
)

const namespace = "reportvault"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 处理中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// FolderOps 目录单项操作计数，result 为 ok 或错误类别.
	FolderOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folder_operations_total",
			Help:      "Folder operations by kind and result",
		},
		[]string{"op", "result"},
	)

	// ReportOps 报告单项操作计数.
	ReportOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_operations_total",
			Help:      "Report operations by kind and result",
		},
		[]string{"op", "result"},
	)

	// BulkItems 批量操作逐项结果.
	BulkItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Bulk operation items by action, kind and result",
		},
		[]string{"action", "kind", "result"},
	)

	// BulkRequests 批量请求整体结果（success/partial/failed）.
	BulkRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_requests_total",
			Help:      "Bulk requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// TreeAnomalies 最近一次完整性巡检发现的异常数.
	TreeAnomalies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_anomalies",
			Help:      "Anomalies found by the last tree integrity scan",
		},
		[]string{"kind"},
	)

	// EventsPublished 事件发布计数.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			FolderOps, ReportOps, BulkItems, BulkRequests, TreeAnomalies, EventsPublished,
		} {
			if err = registry.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// Handler 返回 /metrics 处理器，同时暴露默认注册表（GORM 插件注册在默认注册表）.
func Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)
}

// StartMetricsServer 在给定引擎上挂载 Metrics 与可选的 pprof 端点.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(Handler()))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Result 把错误归类为指标标签值.
func Result(err error) string {
	if err == nil {
		return "ok"
	}

	if c, ok := err.(interface{ MetricLabel() string }); ok {
		return c.MetricLabel()
	}

	return "error"
}

// NewCounter 创建并注册新的计数器指标.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	registry.MustRegister(counter)

	return counter
}

// NewGauge 创建并注册新的仪表盘指标.
func NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	registry.MustRegister(gauge)

	return gauge
}
