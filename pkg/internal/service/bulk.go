package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
)

// BulkAction 批量动作.
type BulkAction string

const (
	BulkRestore BulkAction = "restore"
	BulkArchive BulkAction = "archive"
	BulkDelete  BulkAction = "delete"
	BulkMove    BulkAction = "move"
)

// Outcome 批量请求的整体结果.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// BulkRequest 选中的目录与报告.
type BulkRequest struct {
	FolderIDs []string
	ReportIDs []string
}

// BulkMoveRequest 批量移动，TargetFolderID 为 nil 表示根目录.
type BulkMoveRequest struct {
	BulkRequest
	TargetFolderID *string
}

// ItemError 单个条目的失败原因.
type ItemError struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkResult 批量操作汇总，Message 可以直接展示给用户.
type BulkResult struct {
	Action     BulkAction  `json:"action"`
	Folders    int         `json:"folders"`
	Reports    int         `json:"reports"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
	FirstError string      `json:"first_error,omitempty"`
	Outcome    Outcome     `json:"outcome"`
	Message    string      `json:"message"`
}

// BulkService 批量操作协调：逐项调用目录与报告服务并汇总结果.
// 默认宽容处理，单项的领域错误被收集而不中断整批；非领域错误（存储故障）总是中断.
type BulkService struct {
	folders *FolderService
	reports *ReportService
	cfg     configs.BulkConfig
}

// Restore 批量恢复，同名冲突的目录逐项报告.
func (b *BulkService) Restore(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	return b.setStatus(ctx, BulkRestore, req, model.StatusActive)
}

// Archive 批量归档.
func (b *BulkService) Archive(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	return b.setStatus(ctx, BulkArchive, req, model.StatusArchived)
}

func (b *BulkService) setStatus(ctx context.Context, action BulkAction, req BulkRequest, status model.Status) (*BulkResult, error) {
	req, err := b.normalize(req)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Action: action, Errors: []ItemError{}}

	for _, id := range req.FolderIDs {
		_, err := b.folders.SetStatus(ctx, id, status)
		if err := b.track(ctx, res, KindFolder, id, err, false); err != nil {
			return b.finish(res), err
		}
	}

	for _, id := range req.ReportIDs {
		_, err := b.reports.SetStatus(ctx, id, status)
		if err := b.track(ctx, res, KindReport, id, err, false); err != nil {
			return b.finish(res), err
		}
	}

	return b.finish(res), nil
}

// Delete 批量永久删除，目录先于报告处理；已随上级目录删除的条目计为跳过.
func (b *BulkService) Delete(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	req, err := b.normalize(req)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Action: BulkDelete, Errors: []ItemError{}}

	for _, id := range req.FolderIDs {
		_, err := b.folders.Delete(ctx, id)
		if err := b.track(ctx, res, KindFolder, id, err, b.cfg.FailFast); err != nil {
			return b.finish(res), err
		}
	}

	for _, id := range req.ReportIDs {
		err := b.reports.Delete(ctx, id)
		if err := b.track(ctx, res, KindReport, id, err, b.cfg.FailFast); err != nil {
			return b.finish(res), err
		}
	}

	return b.finish(res), nil
}

// Move 批量移动：报告用一次 MoveMany，目录逐个移动并逐个检查环与同名.
func (b *BulkService) Move(ctx context.Context, req BulkMoveRequest) (*BulkResult, error) {
	items, err := b.normalize(req.BulkRequest)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Action: BulkMove, Errors: []ItemError{}}

	if len(items.ReportIDs) > 0 {
		affected, err := b.reports.MoveMany(ctx, items.ReportIDs, req.TargetFolderID)
		if err != nil {
			for _, id := range items.ReportIDs {
				if terr := b.track(ctx, res, KindReport, id, err, b.cfg.FailFast); terr != nil {
					return b.finish(res), terr
				}
			}
		} else {
			res.Reports = int(affected)
			metrics.BulkItems.WithLabelValues(string(BulkMove), KindReport, metrics.Result(nil)).Add(float64(affected))
		}
	}

	for _, id := range items.FolderIDs {
		_, err := b.folders.Move(ctx, id, req.TargetFolderID)
		if err := b.track(ctx, res, KindFolder, id, err, b.cfg.FailFast); err != nil {
			return b.finish(res), err
		}
	}

	return b.finish(res), nil
}

// normalize 去重并检查条目数量.
func (b *BulkService) normalize(req BulkRequest) (BulkRequest, error) {
	req.FolderIDs = uniqueIDs(req.FolderIDs)
	req.ReportIDs = uniqueIDs(req.ReportIDs)

	total := len(req.FolderIDs) + len(req.ReportIDs)
	if total == 0 {
		return req, &ValidationError{Field: "items", Message: "No items selected."}
	}

	if b.cfg.MaxItems > 0 && total > b.cfg.MaxItems {
		return req, &ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("Too many items selected (limit %d).", b.cfg.MaxItems),
		}
	}

	return req, nil
}

// track 记录单项结果，返回非 nil 时整批中止.
func (b *BulkService) track(ctx context.Context, res *BulkResult, kind, id string, err error, failFast bool) error {
	metrics.BulkItems.WithLabelValues(string(res.Action), kind, metrics.Result(err)).Inc()

	switch {
	case err == nil:
		if kind == KindFolder {
			res.Folders++
		} else {
			res.Reports++
		}

		return nil
	case res.Action == BulkDelete && errors.Is(err, ErrNotFound):
		res.Skipped++

		return nil
	case !IsDomainError(err):
		l := nlog.Component("bulk")
		l.Error().Err(err).
			Str("action", string(res.Action)).
			Str("kind", kind).
			Str("id", id).
			Msg("bulk operation aborted")
		res.addError(kind, id, err)

		return err
	default:
		res.addError(kind, id, err)

		if failFast {
			return err
		}

		return nil
	}
}

func (r *BulkResult) addError(kind, id string, err error) {
	msg := PublicMessage(err)

	r.Failed++
	r.Errors = append(r.Errors, ItemError{Kind: kind, ID: id, Message: msg})

	if r.FirstError == "" {
		r.FirstError = msg
	}
}

// finish 计算整体结果并生成提示文本.
func (b *BulkService) finish(res *BulkResult) *BulkResult {
	succeeded := res.Folders + res.Reports + res.Skipped

	switch {
	case res.Failed == 0:
		res.Outcome = OutcomeSuccess
	case succeeded == 0:
		res.Outcome = OutcomeFailed
	default:
		res.Outcome = OutcomePartial
	}

	res.Message = bulkMessage(res)
	metrics.BulkRequests.WithLabelValues(string(res.Action), string(res.Outcome)).Inc()

	return res
}

var pastTense = map[BulkAction]string{
	BulkRestore: "Restored",
	BulkArchive: "Archived",
	BulkDelete:  "Deleted",
	BulkMove:    "Moved",
}

func bulkMessage(res *BulkResult) string {
	if res.Outcome == OutcomeFailed {
		return fmt.Sprintf("Could not %s the selected items: %s", res.Action, res.FirstError)
	}

	var sb strings.Builder

	sb.WriteString(pastTense[res.Action])
	sb.WriteString(" ")
	sb.WriteString(plural(res.Folders, "folder"))
	sb.WriteString(" and ")
	sb.WriteString(plural(res.Reports, "file"))
	sb.WriteString(".")

	if res.Skipped > 0 {
		fmt.Fprintf(&sb, " %s already removed.", plural(res.Skipped, "item"))
	}

	if res.Failed > 0 {
		fmt.Fprintf(&sb, " %s failed: %s", plural(res.Failed, "item"), res.FirstError)
	}

	return sb.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
