package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/store"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/queue"
	"github.com/yeisme/reportvault/pkg/rule"
)

// errTooDeep 向上遍历超过 tree.max_depth.
var errTooDeep = errors.New("folder hierarchy exceeds max depth")

// FolderService 目录树管理：创建、重命名、移动、路径解析、递归删除、归档与恢复.
type FolderService struct {
	deps Deps
}

// CreateFolderInput 创建目录参数.
type CreateFolderInput struct {
	Name      string
	ParentID  *string
	CreatedBy string
}

// DeleteResult 递归删除统计.
type DeleteResult struct {
	Folders int   `json:"folders"`
	Reports int64 `json:"reports"`
}

// Get 读取目录.
func (s *FolderService) Get(ctx context.Context, id string) (*model.Folder, error) {
	if s.deps.DB == nil {
		return nil, errNoDB
	}

	return requireFolder(ctx, s.deps.DB, id)
}

// List 按父目录与状态列出目录，按名称排序.
func (s *FolderService) List(ctx context.Context, filter model.FolderFilter, status *model.Status) ([]model.Folder, error) {
	if s.deps.DB == nil {
		return nil, errNoDB
	}

	scopes := make([]store.Scope, 0, 3)
	if ref, ok := filter.ParentRef(); ok {
		scopes = append(scopes, store.NullableEq("parent_id", ref))
	}

	if status != nil {
		scopes = append(scopes, store.Eq("status", *status))
	}

	scopes = append(scopes, store.OrderBy("name ASC, id ASC"))

	return store.For[model.Folder](s.deps.DB).Find(ctx, scopes...)
}

// Create 在父目录（nil 为根目录）下创建目录.
func (s *FolderService) Create(ctx context.Context, in CreateFolderInput) (folder *model.Folder, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "create")
	defer func() { done(err) }()

	name, err := s.validateName(in.Name)
	if err != nil {
		return nil, err
	}

	createdBy := strings.TrimSpace(in.CreatedBy)
	if createdBy == "" {
		return nil, &ValidationError{Field: "created_by", Message: "Creator is required."}
	}

	parentID := normalizeID(in.ParentID)
	folder = &model.Folder{
		ID:        model.NewID(),
		Name:      name,
		ParentID:  parentID,
		Status:    model.StatusActive,
		CreatedBy: createdBy,
	}

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		if parentID != nil {
			if _, err := requireFolder(ctx, tx, *parentID); err != nil {
				return err
			}
		}

		if err := checkSibling(ctx, tx, parentID, name, model.StatusActive, ""); err != nil {
			return err
		}

		return store.For[model.Folder](tx).Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	record(ctx, s.deps.Audit, AuditEntry{
		Actor:       createdBy,
		Action:      ActionFolderCreated,
		TargetKind:  KindFolder,
		TargetID:    folder.ID,
		Description: fmt.Sprintf("created folder %q", name),
		Detail:      queue.FolderEventPayload{Folder: folderRef(folder)},
	})

	return folder, nil
}

// Rename 重命名目录，同一位置、同一状态下名称必须唯一.
func (s *FolderService) Rename(ctx context.Context, id, newName string) (folder *model.Folder, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "rename")
	defer func() { done(err) }()

	name, err := s.validateName(newName)
	if err != nil {
		return nil, err
	}

	var prev string

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		f, err := requireFolder(ctx, tx, id)
		if err != nil {
			return err
		}

		folder, prev = f, f.Name
		if f.Name == name {
			return nil
		}

		if err := checkSibling(ctx, tx, f.ParentID, name, f.Status, f.ID); err != nil {
			return err
		}

		if _, err := store.For[model.Folder](tx).Update(ctx, id, map[string]any{"name": name}); err != nil {
			return err
		}

		f.Name = name

		return nil
	})
	if err != nil {
		return nil, err
	}

	if prev != name {
		record(ctx, s.deps.Audit, AuditEntry{
			Actor:       actor(ctx),
			Action:      ActionFolderRenamed,
			TargetKind:  KindFolder,
			TargetID:    id,
			Description: fmt.Sprintf("renamed folder %q to %q", prev, name),
			Detail:      queue.FolderEventPayload{Folder: folderRef(folder), PrevName: prev},
		})
	}

	return folder, nil
}

// Move 把目录移动到 targetParentID 之下（nil 为根目录）.
// 从目标向上遍历祖先链，遇到自身即拒绝；遍历有访问集与深度上限，损坏的数据也能终止.
func (s *FolderService) Move(ctx context.Context, id string, targetParentID *string) (folder *model.Folder, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "move")
	defer func() { done(err) }()

	target := normalizeID(targetParentID)
	if target != nil && *target == id {
		return nil, &CycleError{FolderID: id, TargetID: id, Self: true}
	}

	var (
		prevParent *string
		moved      bool
	)

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		f, err := requireFolder(ctx, tx, id)
		if err != nil {
			return err
		}

		folder, prevParent = f, f.ParentID

		if target != nil {
			if _, err := requireFolder(ctx, tx, *target); err != nil {
				return err
			}

			if err := s.checkCycle(ctx, tx, id, *target); err != nil {
				return err
			}
		}

		if sameParent(f.ParentID, target) {
			return nil
		}

		if err := checkSibling(ctx, tx, target, f.Name, f.Status, f.ID); err != nil {
			return err
		}

		if _, err := store.For[model.Folder](tx).Update(ctx, id, map[string]any{"parent_id": nullable(target)}); err != nil {
			return err
		}

		f.ParentID = target
		moved = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	if moved {
		dest := "root"
		if target != nil {
			dest = *target
		}

		record(ctx, s.deps.Audit, AuditEntry{
			Actor:       actor(ctx),
			Action:      ActionFolderMoved,
			TargetKind:  KindFolder,
			TargetID:    id,
			Description: fmt.Sprintf("moved folder %q to %s", folder.Name, dest),
			Detail:      queue.FolderEventPayload{Folder: folderRef(folder), PrevParentID: prevParent},
		})
	}

	return folder, nil
}

// checkCycle 从 target 向上遍历，若祖先链中出现 id 则移动会形成环.
func (s *FolderService) checkCycle(ctx context.Context, tx *gorm.DB, id, target string) error {
	err := walkUp(ctx, tx, target, s.deps.Tree.MaxDepth, func(f *model.Folder) bool {
		return f.ID == id
	})

	switch {
	case errors.Is(err, errStop):
		return &CycleError{FolderID: id, TargetID: target}
	case errors.Is(err, errTooDeep):
		return &InvalidOperationError{Reason: "The folder hierarchy is too deep to complete this move."}
	default:
		return err
	}
}

// GetPath 返回从根到该目录的路径（含自身）.
// 父目录缺失时路径在此截断；超过深度上限时返回已解析的部分.
func (s *FolderService) GetPath(ctx context.Context, id string) (path []model.Folder, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "path")
	defer func() { done(err) }()

	if s.deps.DB == nil {
		return nil, errNoDB
	}

	if _, err := requireFolder(ctx, s.deps.DB, id); err != nil {
		return nil, err
	}

	reversed := make([]model.Folder, 0, 8)

	err = walkUp(ctx, s.deps.DB, id, s.deps.Tree.MaxDepth, func(f *model.Folder) bool {
		reversed = append(reversed, *f)

		return false
	})
	if errors.Is(err, errTooDeep) {
		l := nlog.Component("tree")
		l.Warn().Str("folder_id", id).Int("max_depth", s.deps.Tree.MaxDepth).Msg("folder path truncated at max depth")

		err = nil
	}

	if err != nil {
		return nil, err
	}

	path = make([]model.Folder, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}

	return path, nil
}

// Delete 永久删除目录及其全部子目录与报告，整体在一个事务内完成.
func (s *FolderService) Delete(ctx context.Context, id string) (res DeleteResult, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "delete")
	defer func() { done(err) }()

	var (
		folder *model.Folder
		refs   []string
	)

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		f, err := requireFolder(ctx, tx, id)
		if err != nil {
			return err
		}

		folder = f
		visited := make(map[string]struct{})

		return s.deleteSubtree(ctx, tx, id, visited, &res, &refs)
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.removeBlobs(ctx, refs)

	record(ctx, s.deps.Audit, AuditEntry{
		Actor:      actor(ctx),
		Action:     ActionFolderDeleted,
		TargetKind: KindFolder,
		TargetID:   id,
		Description: fmt.Sprintf("deleted folder %q with %d folder(s) and %d report(s)",
			folder.Name, res.Folders, res.Reports),
		Detail: queue.FolderDeletedPayload{
			Folder:         folderRef(folder),
			FoldersRemoved: res.Folders,
			ReportsRemoved: res.Reports,
		},
	})

	return res, nil
}

// deleteSubtree 深度优先删除：先子目录，再本目录的报告，最后本目录.
// visited 防止损坏数据中的环导致无限递归.
func (s *FolderService) deleteSubtree(
	ctx context.Context, tx *gorm.DB, id string, visited map[string]struct{}, res *DeleteResult, refs *[]string,
) error {
	visited[id] = struct{}{}

	children, err := store.For[model.Folder](tx).Pluck(ctx, "id", store.Eq("parent_id", id))
	if err != nil {
		return err
	}

	for _, child := range children {
		if _, seen := visited[child]; seen {
			continue
		}

		if err := s.deleteSubtree(ctx, tx, child, visited, res, refs); err != nil {
			return err
		}
	}

	reports := store.For[model.Report](tx)

	if s.deps.Blobs.External() {
		r, err := reports.Pluck(ctx, "file_data", store.Eq("folder_id", id), store.Like("file_data", s3RefPrefix+"%"))
		if err != nil {
			return err
		}

		*refs = append(*refs, r...)
	}

	n, err := reports.DeleteWhere(ctx, store.Eq("folder_id", id))
	if err != nil {
		return err
	}

	res.Reports += n

	rows, err := store.For[model.Folder](tx).Delete(ctx, id)
	if err != nil {
		return err
	}

	res.Folders += int(rows)

	return nil
}

// removeBlobs 事务提交后删除对象存储中的内容，失败只记日志.
func (s *FolderService) removeBlobs(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.deps.Blobs.Delete(ctx, ref); err != nil {
			l := nlog.Component("blob")
			l.Warn().Err(err).Str("ref", ref).Msg("failed to remove report content")
		}
	}
}

// Archive 归档目录，不影响子目录与报告.
func (s *FolderService) Archive(ctx context.Context, id string) (*model.Folder, error) {
	return s.SetStatus(ctx, id, model.StatusArchived)
}

// Restore 恢复目录，若同一位置已有同名的活动目录则失败.
func (s *FolderService) Restore(ctx context.Context, id string) (*model.Folder, error) {
	return s.SetStatus(ctx, id, model.StatusActive)
}

// SetStatus 修改目录状态，状态未变化时不做任何事.
func (s *FolderService) SetStatus(ctx context.Context, id string, status model.Status) (folder *model.Folder, err error) {
	ctx, done := startOp(ctx, metrics.FolderOps, "folder", "status")
	defer func() { done(err) }()

	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("Invalid status %q.", status)}
	}

	changed := false

	err = transaction(ctx, s.deps, func(tx *gorm.DB) error {
		f, err := requireFolder(ctx, tx, id)
		if err != nil {
			return err
		}

		folder = f
		if f.Status == status {
			return nil
		}

		// 只有恢复需要检查同名，归档允许与已归档的同名目录并存
		if status == model.StatusActive {
			if err := checkSibling(ctx, tx, f.ParentID, f.Name, status, f.ID); err != nil {
				return err
			}
		}

		if _, err := store.For[model.Folder](tx).Update(ctx, id, map[string]any{"status": status}); err != nil {
			return err
		}

		f.Status = status
		changed = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		action, verb := ActionFolderRestored, "restored"
		if status == model.StatusArchived {
			action, verb = ActionFolderArchived, "archived"
		}

		record(ctx, s.deps.Audit, AuditEntry{
			Actor:       actor(ctx),
			Action:      action,
			TargetKind:  KindFolder,
			TargetID:    id,
			Description: fmt.Sprintf("%s folder %q", verb, folder.Name),
			Detail:      queue.FolderEventPayload{Folder: folderRef(folder)},
		})
	}

	return folder, nil
}

func (s *FolderService) validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if msg := rule.FolderNameError(name); msg != "" {
		return "", &ValidationError{Field: "name", Message: msg}
	}

	if limit := s.deps.Tree.MaxNameLength; limit > 0 && utf8.RuneCountInString(name) > limit {
		return "", &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Folder name cannot be longer than %d characters.", limit),
		}
	}

	return name, nil
}

// requireFolder 读取目录，不存在时返回 NotFoundError.
func requireFolder(ctx context.Context, db *gorm.DB, id string) (*model.Folder, error) {
	f, err := store.For[model.Folder](db).Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, folderNotFound(id)
	}

	if err != nil {
		return nil, fmt.Errorf("load folder %s: %w", id, err)
	}

	return f, nil
}

// checkSibling 同一父目录、同一状态下是否已有同名目录，excludeID 为被修改的目录自身.
func checkSibling(ctx context.Context, tx *gorm.DB, parentID *string, name string, status model.Status, excludeID string) error {
	scopes := []store.Scope{
		store.NullableEq("parent_id", parentID),
		store.Eq("name", name),
		store.Eq("status", status),
	}
	if excludeID != "" {
		scopes = append(scopes, store.NotEq("id", excludeID))
	}

	taken, err := store.For[model.Folder](tx).Exists(ctx, scopes...)
	if err != nil {
		return err
	}

	if taken {
		return &DuplicateNameError{Name: name}
	}

	return nil
}

// errStop walkUp 的 visit 要求停止.
var errStop = errors.New("stop")

// walkUp 从 startID 开始沿 parent_id 向上访问每个目录.
// visit 返回 true 时以 errStop 结束；父目录缺失、到达根目录或重复访问时正常结束；
// 超过 maxDepth 返回 errTooDeep.
func walkUp(ctx context.Context, db *gorm.DB, startID string, maxDepth int, visit func(*model.Folder) bool) error {
	folders := store.For[model.Folder](db)
	visited := make(map[string]struct{})
	cur := startID

	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return errTooDeep
		}

		f, err := folders.Get(ctx, cur)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("load folder %s: %w", cur, err)
		}

		visited[cur] = struct{}{}

		if visit(f) {
			return errStop
		}

		if f.ParentID == nil {
			return nil
		}

		if _, seen := visited[*f.ParentID]; seen {
			return nil
		}

		cur = *f.ParentID
	}
}

// normalizeID 空字符串视为 nil（根目录）.
func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}

	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}

	return &v
}

// nullable 把可空 ID 转为写入列的值，nil 写入 NULL.
func nullable(id *string) any {
	if id == nil {
		return nil
	}

	return *id
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

func folderRef(f *model.Folder) queue.FolderRef {
	return queue.FolderRef{ID: f.ID, Name: f.Name, ParentID: f.ParentID, Status: string(f.Status)}
}
