package jobs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/jobs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
	tu "github.com/yeisme/reportvault/pkg/internal/testutil"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/scheduler"
)

func ptr(s string) *string { return &s }

func TestCheckTreeUpdatesGauges(t *testing.T) {
	db := tu.NewDB(t)
	svc := service.NewServices(service.Deps{DB: db})

	require.NoError(t, db.Create(&model.Folder{ID: "a", Name: "a", ParentID: ptr("b"), CreatedBy: "u"}).Error)
	require.NoError(t, db.Create(&model.Folder{ID: "b", Name: "b", ParentID: ptr("a"), CreatedBy: "u"}).Error)
	require.NoError(t, db.Create(&model.Folder{ID: "c", Name: "c", ParentID: ptr("gone"), CreatedBy: "u"}).Error)

	report, err := jobs.CheckTree(t.Context(), svc.Inspector)
	require.NoError(t, err)
	assert.False(t, report.Healthy())

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.TreeAnomalies.WithLabelValues(string(service.AnomalyCycle))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TreeAnomalies.WithLabelValues(string(service.AnomalyDanglingParent))), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.TreeAnomalies.WithLabelValues(string(service.AnomalyOrphanReport))), 0)

	// 修复后再次巡检，指标回落为 0
	require.NoError(t, db.Model(&model.Folder{}).Where("id IN ?", []string{"a", "c"}).Update("parent_id", nil).Error)

	report, err = jobs.CheckTree(t.Context(), svc.Inspector)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.TreeAnomalies.WithLabelValues(string(service.AnomalyCycle))), 0)
}

func TestCheckTreeWithoutDB(t *testing.T) {
	svc := service.NewServices(service.Deps{})

	_, err := jobs.CheckTree(t.Context(), svc.Inspector)
	require.Error(t, err)
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)

	require.Error(t, jobs.RegisterCronJobs(nil, nil, configs.JobsConfig{}))
	require.Error(t, jobs.RegisterCronJobs(sched, nil, configs.JobsConfig{}))
}
