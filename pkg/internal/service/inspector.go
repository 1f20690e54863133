package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/store"
)

// AnomalyKind 目录树异常类别.
type AnomalyKind string

const (
	AnomalyDanglingParent AnomalyKind = "dangling_parent" // parent_id 指向不存在的目录
	AnomalyCycle          AnomalyKind = "cycle"           // 祖先链成环
	AnomalyOrphanReport   AnomalyKind = "orphan_report"   // folder_id 指向不存在的目录
	AnomalyDuplicateName  AnomalyKind = "duplicate_name"  // 同一位置下同名的活动目录
)

// AnomalyKinds 全部异常类别.
func AnomalyKinds() []AnomalyKind {
	return []AnomalyKind{AnomalyDanglingParent, AnomalyCycle, AnomalyOrphanReport, AnomalyDuplicateName}
}

// Anomaly 一条异常.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	ID     string      `json:"id"`
	Detail string      `json:"detail"`
}

// IntegrityReport 一次巡检的结果.
type IntegrityReport struct {
	Folders   int       `json:"folders"`
	Reports   int       `json:"reports"`
	Anomalies []Anomaly `json:"anomalies"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Healthy 没有发现异常.
func (r *IntegrityReport) Healthy() bool { return len(r.Anomalies) == 0 }

// Counts 按类别统计，所有类别都有值.
func (r *IntegrityReport) Counts() map[AnomalyKind]int {
	out := make(map[AnomalyKind]int, 4)
	for _, k := range AnomalyKinds() {
		out[k] = 0
	}

	for _, a := range r.Anomalies {
		out[a.Kind]++
	}

	return out
}

// Inspector 只读巡检目录树，发现写入路径无法阻止的数据损坏（手工修改、外部导入）.
type Inspector struct {
	db *gorm.DB
}

// Scan 读取全部目录结构与报告归属并检查不变量.
func (i *Inspector) Scan(ctx context.Context) (*IntegrityReport, error) {
	if i.db == nil {
		return nil, errNoDB
	}

	folders, err := store.For[model.Folder](i.db).Find(ctx,
		store.Select("id", "name", "parent_id", "status"),
		store.OrderBy("id ASC"),
	)
	if err != nil {
		return nil, err
	}

	reports, err := store.For[model.Report](i.db).Find(ctx,
		store.Select("id", "folder_id"),
		store.NotNull("folder_id"),
		store.OrderBy("id ASC"),
	)
	if err != nil {
		return nil, err
	}

	count, err := countReports(ctx, i.db)
	if err != nil {
		return nil, err
	}

	res := &IntegrityReport{
		Folders:   len(folders),
		Reports:   int(count),
		Anomalies: []Anomaly{},
		ScannedAt: time.Now().UTC(),
	}

	byID := make(map[string]*model.Folder, len(folders))
	for idx := range folders {
		byID[folders[idx].ID] = &folders[idx]
	}

	for _, f := range folders {
		if f.ParentID != nil {
			if _, ok := byID[*f.ParentID]; !ok {
				res.add(AnomalyDanglingParent, f.ID, fmt.Sprintf("parent %s does not exist", *f.ParentID))
			}
		}
	}

	for _, id := range findCycles(folders, byID) {
		res.add(AnomalyCycle, id, "folder is its own ancestor")
	}

	res.Anomalies = append(res.Anomalies, findDuplicates(folders)...)

	for _, r := range reports {
		if _, ok := byID[*r.FolderID]; !ok {
			res.add(AnomalyOrphanReport, r.ID, fmt.Sprintf("folder %s does not exist", *r.FolderID))
		}
	}

	return res, nil
}

func (r *IntegrityReport) add(kind AnomalyKind, id, detail string) {
	r.Anomalies = append(r.Anomalies, Anomaly{Kind: kind, ID: id, Detail: detail})
}

func countReports(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64

	if err := db.WithContext(ctx).Model(&model.Report{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}

	return n, nil
}

// findCycles 三色标记找出位于环上的目录，结果按 ID 排序.
func findCycles(folders []model.Folder, byID map[string]*model.Folder) []string {
	const (
		white = iota
		grey
		black
	)

	color := make(map[string]int, len(folders))
	onCycle := make(map[string]struct{})

	for _, f := range folders {
		if color[f.ID] != white {
			continue
		}

		path := make([]string, 0, 8)
		cur, ok := byID[f.ID]

		for ok && color[cur.ID] == white {
			color[cur.ID] = grey
			path = append(path, cur.ID)

			if cur.ParentID == nil {
				ok = false

				break
			}

			cur, ok = byID[*cur.ParentID]
		}

		if ok && color[cur.ID] == grey {
			for idx := len(path) - 1; idx >= 0; idx-- {
				onCycle[path[idx]] = struct{}{}
				if path[idx] == cur.ID {
					break
				}
			}
		}

		for _, id := range path {
			color[id] = black
		}
	}

	out := make([]string, 0, len(onCycle))
	for id := range onCycle {
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

// findDuplicates 同一父目录下同名的活动目录，每组报告一次；已归档的同名目录是允许的.
func findDuplicates(folders []model.Folder) []Anomaly {
	groups := make(map[string][]*model.Folder)
	keys := make([]string, 0)

	for idx := range folders {
		f := &folders[idx]
		if f.Status != model.StatusActive {
			continue
		}

		key := f.ParentKey() + "\x00" + f.Name
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}

		groups[key] = append(groups[key], f)
	}

	out := make([]Anomaly, 0)

	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		ids := make([]string, 0, len(group))
		for _, f := range group {
			ids = append(ids, f.ID)
		}

		out = append(out, Anomaly{
			Kind:   AnomalyDuplicateName,
			ID:     ids[0],
			Detail: fmt.Sprintf("%d active folders named %q share a parent: %v", len(ids), group[0].Name, ids),
		})
	}

	return out
}
