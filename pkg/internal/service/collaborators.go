package service

import (
	"context"
	"time"

	nlog "github.com/yeisme/reportvault/pkg/log"
)

// 审计动作，与事件主题 rv.<action> 一一对应.
const (
	ActionFolderCreated  = "folder.created"
	ActionFolderRenamed  = "folder.renamed"
	ActionFolderMoved    = "folder.moved"
	ActionFolderDeleted  = "folder.deleted"
	ActionFolderArchived = "folder.archived"
	ActionFolderRestored = "folder.restored"
	ActionReportCreated  = "report.created"
	ActionReportUpdated  = "report.updated"
	ActionReportMoved    = "report.moved"
	ActionReportDeleted  = "report.deleted"
)

// AuditEntry 一条审计记录，Detail 为对应事件的载荷.
type AuditEntry struct {
	Actor       string
	Action      string
	TargetKind  string
	TargetID    string
	Description string
	Detail      any
	At          time.Time
}

// AuditLogger 记录审计日志，失败不影响业务结果.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// ActivityLink 报告与外部活动的关联.
type ActivityLink struct {
	ActivityID string
	ReportID   string
	UploadedBy string
	LinkedAt   time.Time
}

// ActivityNotifier 通知活动系统某报告已关联，失败不影响报告创建.
type ActivityNotifier interface {
	ReportLinked(ctx context.Context, link ActivityLink) error
}

// Collaborators 服务依赖的外部协作方.
type Collaborators struct {
	Audit    AuditLogger
	Activity ActivityNotifier
}

type collaboratorsKey struct{}

// WithCollaborators 把协作方放入 context，由中间件注入.
func WithCollaborators(ctx context.Context, c Collaborators) context.Context {
	return context.WithValue(ctx, collaboratorsKey{}, c)
}

// CollaboratorsFrom 从 context 读取协作方，缺失的部分用空实现补齐.
func CollaboratorsFrom(ctx context.Context) Collaborators {
	c, _ := ctx.Value(collaboratorsKey{}).(Collaborators)

	return c.withDefaults()
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Audit == nil {
		c.Audit = NoopAudit{}
	}

	if c.Activity == nil {
		c.Activity = NoopActivity{}
	}

	return c
}

// NoopAudit 丢弃审计记录.
type NoopAudit struct{}

func (NoopAudit) Record(context.Context, AuditEntry) error { return nil }

// NoopActivity 不发送活动通知.
type NoopActivity struct{}

func (NoopActivity) ReportLinked(context.Context, ActivityLink) error { return nil }

// record 提交后写审计，失败只记日志.
func record(ctx context.Context, audit AuditLogger, entry AuditEntry) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	if err := audit.Record(ctx, entry); err != nil {
		l := nlog.Component("audit")
		l.Warn().Err(err).
			Str("action", entry.Action).
			Str("target_id", entry.TargetID).
			Msg("failed to record audit entry")
	}
}
