package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/store"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/queue"
)

// defaultFileType 未声明内容类型时使用.
const defaultFileType = "application/octet-stream"

// ReportService 报告放置：按目录列出、批量移动、更新、上传与删除.
// 报告名称没有唯一性约束，同一目录下允许同名报告.
type ReportService struct {
	deps Deps
}

// CreateReportInput 上传报告参数.
type CreateReportInput struct {
	Title      string
	FileName   string
	FileType   string
	Data       []byte
	FolderID   *string
	UploadedBy string
	ActivityID *string
}

// ReportPatch 部分更新，nil 表示不修改.
// FolderIDSet 为 true 时按 FolderID 修改所在目录，FolderID 为 nil 表示移到根目录.
type ReportPatch struct {
	Title       *string
	FileName    *string
	Status      *model.Status
	FolderIDSet bool
	FolderID    *string
}

// Empty 是否没有任何修改.
func (p ReportPatch) Empty() bool {
	return p.Title == nil && p.FileName == nil && p.Status == nil && !p.FolderIDSet
}

// Get 读取报告元数据，不含内容.
func (s *ReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	if s.deps.DB == nil {
		return nil, errNoDB
	}

	return requireReport(ctx, s.deps.DB, id, store.Omit("file_data"))
}

// Download 读取报告及其内容.
func (s *ReportService) Download(ctx context.Context, id string) (report *model.Report, data []byte, err error) {
	ctx, done := startOp(ctx, metrics.ReportOps, "report", "download")
	defer func() { done(err) }()

	if s.deps.DB == nil {
		return nil, nil, errNoDB
	}

	report, err = requireReport(ctx, s.deps.DB, id)
	if err != nil {
		return nil, nil, err
	}

	data, err = s.deps.Blobs.Get(ctx, report.FileData)
	if err != nil {
		return nil, nil, fmt.Errorf("load content of report %s: %w", id, err)
	}

	return report, data, nil
}

// ListByFolder 按目录与状态列出报告，最新的在前.
func (s *ReportService) ListByFolder(ctx context.Context, filter model.FolderFilter, status *model.Status) ([]model.Report, error) {
	if s.deps.DB == nil {
		return nil, errNoDB
	}

	scopes := []store.Scope{store.Omit("file_data")}
	if ref, ok := filter.ParentRef(); ok {
		scopes = append(scopes, store.NullableEq("folder_id", ref))
	}

	if status != nil {
		scopes = append(scopes, store.Eq("status", *status))
	}

	scopes = append(scopes, store.OrderBy("created_at DESC, id DESC"))

	return store.For[model.Report](s.deps.DB).Find(ctx, scopes...)
}

// MoveMany 用一条 UPDATE 把报告移动到目标目录（nil 为根目录），返回受影响行数.
// 不存在的 ID 自然不产生影响，不逐个校验.
func (s *ReportService) MoveMany(ctx context.Context, ids []string, targetFolderID *string) (affected int64, err error) {
	ctx, done := startOp(ctx, metrics.ReportOps, "report", "move")
	defer func() { done(err) }()

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	target := normalizeID(targetFolderID)

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		if target != nil {
			if _, err := requireFolder(ctx, tx, *target); err != nil {
				return err
			}
		}

		reports := store.For[model.Report](tx)

		// 计数按存在的报告，已在目标目录中的也计入
		existing, err := reports.Pluck(ctx, "id", store.In("id", ids))
		if err != nil || len(existing) == 0 {
			return err
		}

		if _, err := reports.UpdateWhere(ctx,
			map[string]any{"folder_id": nullable(target)},
			store.In("id", existing),
		); err != nil {
			return err
		}

		affected = int64(len(existing))

		return nil
	})
	if err != nil {
		return 0, err
	}

	dest := "root"
	if target != nil {
		dest = *target
	}

	record(ctx, s.deps.Audit, AuditEntry{
		Actor:       actor(ctx),
		Action:      ActionReportMoved,
		TargetKind:  KindReport,
		TargetID:    strings.Join(ids, ","),
		Description: fmt.Sprintf("moved %d report(s) to %s", affected, dest),
		Detail:      queue.ReportsMovedPayload{ReportIDs: ids, TargetFolderID: target, Affected: affected},
	})

	return affected, nil
}

// Update 部分更新报告.
func (s *ReportService) Update(ctx context.Context, id string, patch ReportPatch) (report *model.Report, err error) {
	ctx, done := startOp(ctx, metrics.ReportOps, "report", "update")
	defer func() { done(err) }()

	values, changed, err := patchValues(patch)
	if err != nil {
		return nil, err
	}

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		if _, err := requireReport(ctx, tx, id, store.Select("id")); err != nil {
			return err
		}

		if patch.FolderIDSet && patch.FolderID != nil {
			if _, err := requireFolder(ctx, tx, *patch.FolderID); err != nil {
				return err
			}
		}

		if len(values) > 0 {
			if _, err := store.For[model.Report](tx).Update(ctx, id, values); err != nil {
				return err
			}
		}

		report, err = requireReport(ctx, tx, id, store.Omit("file_data"))

		return err
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		record(ctx, s.deps.Audit, AuditEntry{
			Actor:       actor(ctx),
			Action:      ActionReportUpdated,
			TargetKind:  KindReport,
			TargetID:    id,
			Description: fmt.Sprintf("updated report %q (%s)", report.Title, strings.Join(changed, ", ")),
			Detail:      queue.ReportEventPayload{Report: reportRef(report), Changed: changed},
		})
	}

	return report, nil
}

// SetStatus 修改报告状态，报告没有同名约束，恢复不会冲突.
func (s *ReportService) SetStatus(ctx context.Context, id string, status model.Status) (*model.Report, error) {
	return s.Update(ctx, id, ReportPatch{Status: &status})
}

// patchValues 校验补丁并转换为列值.
func patchValues(p ReportPatch) (map[string]any, []string, error) {
	values := make(map[string]any, 4)
	changed := make([]string, 0, 4)

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, nil, &ValidationError{Field: "title", Message: "Title cannot be empty."}
		}

		values["title"] = title
		changed = append(changed, "title")
	}

	if p.FileName != nil {
		name := strings.TrimSpace(*p.FileName)
		if name == "" {
			return nil, nil, &ValidationError{Field: "file_name", Message: "File name cannot be empty."}
		}

		values["file_name"] = name
		changed = append(changed, "file_name")
	}

	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, nil, &ValidationError{Field: "status", Message: fmt.Sprintf("Invalid status %q.", *p.Status)}
		}

		values["status"] = *p.Status
		changed = append(changed, "status")
	}

	if p.FolderIDSet {
		values["folder_id"] = nullable(normalizeID(p.FolderID))
		changed = append(changed, "folder_id")
	}

	return values, changed, nil
}

// Create 上传报告；指定 ActivityID 时在提交后通知活动协作方.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (report *model.Report, err error) {
	ctx, done := startOp(ctx, metrics.ReportOps, "report", "create")
	defer func() { done(err) }()

	report, err = s.newReport(in)
	if err != nil {
		return nil, err
	}

	ref, err := s.deps.Blobs.Put(ctx, report.ID, report.FileType, in.Data)
	if err != nil {
		return nil, fmt.Errorf("store report content: %w", err)
	}

	report.FileData = ref

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		if report.FolderID != nil {
			if _, err := requireFolder(ctx, tx, *report.FolderID); err != nil {
				return err
			}
		}

		return store.For[model.Report](tx).Create(ctx, report)
	})
	if err != nil {
		if s.deps.Blobs.External() {
			if derr := s.deps.Blobs.Delete(ctx, ref); derr != nil {
				l := nlog.Component("blob")
				l.Warn().Err(derr).Str("ref", ref).Msg("failed to remove orphaned report content")
			}
		}

		return nil, err
	}

	record(ctx, s.deps.Audit, AuditEntry{
		Actor:       report.UploadedBy,
		Action:      ActionReportCreated,
		TargetKind:  KindReport,
		TargetID:    report.ID,
		Description: fmt.Sprintf("uploaded report %q", report.Title),
		Detail:      queue.ReportEventPayload{Report: reportRef(report)},
	})

	if report.ActivityID != nil {
		s.notifyActivity(ctx, report)
	}

	return report, nil
}

func (s *ReportService) newReport(in CreateReportInput) (*model.Report, error) {
	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" {
		return nil, &ValidationError{Field: "file_name", Message: "File name is required."}
	}

	uploadedBy := strings.TrimSpace(in.UploadedBy)
	if uploadedBy == "" {
		return nil, &ValidationError{Field: "uploaded_by", Message: "Uploader is required."}
	}

	if limit := s.deps.Report.MaxPayloadBytes; limit > 0 && int64(len(in.Data)) > limit {
		return nil, &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("File is too large (limit %d bytes).", limit),
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fileName
	}

	fileType := strings.TrimSpace(in.FileType)
	if fileType == "" {
		fileType = defaultFileType
	}

	return &model.Report{
		ID:         model.NewID(),
		Title:      title,
		FileName:   fileName,
		FileType:   fileType,
		FileSize:   int64(len(in.Data)),
		Checksum:   Checksum(in.Data),
		FolderID:   normalizeID(in.FolderID),
		Status:     model.StatusActive,
		UploadedBy: uploadedBy,
		ActivityID: normalizeID(in.ActivityID),
	}, nil
}

func (s *ReportService) notifyActivity(ctx context.Context, r *model.Report) {
	link := ActivityLink{
		ActivityID: *r.ActivityID,
		ReportID:   r.ID,
		UploadedBy: r.UploadedBy,
		LinkedAt:   time.Now().UTC(),
	}

	if err := s.deps.Activity.ReportLinked(ctx, link); err != nil {
		l := nlog.Component("activity")
		l.Warn().Err(err).
			Str("activity_id", link.ActivityID).
			Str("report_id", link.ReportID).
			Msg("failed to notify activity")
	}
}

// Delete 永久删除报告.
func (s *ReportService) Delete(ctx context.Context, id string) (err error) {
	ctx, done := startOp(ctx, metrics.ReportOps, "report", "delete")
	defer func() { done(err) }()

	var report *model.Report

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		r, err := requireReport(ctx, tx, id)
		if err != nil {
			return err
		}

		report = r
		_, err = store.For[model.Report](tx).Delete(ctx, id)

		return err
	})
	if err != nil {
		return err
	}

	if err := s.deps.Blobs.Delete(ctx, report.FileData); err != nil {
		l := nlog.Component("blob")
		l.Warn().Err(err).Str("report_id", id).Msg("failed to remove report content")
	}

	record(ctx, s.deps.Audit, AuditEntry{
		Actor:       actor(ctx),
		Action:      ActionReportDeleted,
		TargetKind:  KindReport,
		TargetID:    id,
		Description: fmt.Sprintf("deleted report %q", report.Title),
		Detail:      queue.ReportEventPayload{Report: reportRef(report)},
	})

	return nil
}

// Checksum 内容的 xxhash64 十六进制表示.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// requireReport 读取报告，不存在时返回 NotFoundError.
func requireReport(ctx context.Context, db *gorm.DB, id string, scopes ...store.Scope) (*model.Report, error) {
	r, err := store.For[model.Report](db).First(ctx, append([]store.Scope{store.Eq("id", id)}, scopes...)...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, reportNotFound(id)
	}

	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}

	return r, nil
}

// uniqueIDs 去除空白与重复，保持原有顺序.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}

		out = append(out, id)
	}

	return out
}

func reportRef(r *model.Report) queue.ReportRef {
	return queue.ReportRef{
		ID:         r.ID,
		Title:      r.Title,
		FileName:   r.FileName,
		FolderID:   r.FolderID,
		Status:     string(r.Status),
		ActivityID: r.ActivityID,
	}
}
