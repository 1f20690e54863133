// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"

	"github.com/yeisme/reportvault/pkg/configs"
	ctxPkg "github.com/yeisme/reportvault/pkg/context"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/storage"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 jobs.tree_integrity_cron 巡检目录树，结果写入 tree_anomalies 指标
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.JobsConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	if !cfg.Enabled {
		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	return sched.AddCron(baseCtx, JobTreeIntegrity, cfg.TreeIntegrityCron, func(ctx context.Context) error {
		_, err := CheckTree(ctx, service.New(ctx).Inspector)

		return err
	})
}

// CheckTree 执行一次目录树巡检并更新指标，异常逐条记录为警告日志.
func CheckTree(ctx context.Context, inspector *service.Inspector) (*service.IntegrityReport, error) {
	l := nlog.Component("jobs").With().Str("job", JobTreeIntegrity).Logger()

	report, err := inspector.Scan(ctx)
	if err != nil {
		return nil, err
	}

	for kind, n := range report.Counts() {
		metrics.TreeAnomalies.WithLabelValues(string(kind)).Set(float64(n))
	}

	if report.Healthy() {
		l.Info().Int("folders", report.Folders).Int("reports", report.Reports).Msg("tree is healthy")

		return report, nil
	}

	for i, a := range report.Anomalies {
		if i == maxLoggedAnomalies {
			l.Warn().Int("omitted", len(report.Anomalies)-i).Msg("more anomalies omitted")

			break
		}

		l.Warn().Str("kind", string(a.Kind)).Str("id", a.ID).Msg(a.Detail)
	}

	l.Warn().
		Int("folders", report.Folders).
		Int("reports", report.Reports).
		Int("anomalies", len(report.Anomalies)).
		Msg("tree integrity check found anomalies")

	return report, nil
}
