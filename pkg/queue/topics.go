// Package queue 定义消息主题常量与事件负载，供发布/订阅使用.
package queue

// 主题命名规范：rv.<域>.<动作>，保持稳定且向后兼容.
// 域：folder(目录树)、report(报告)、audit(审计)、activity(外部活动协作方).

const (
	// 目录树领域.
	TopicFolderCreated  = "rv.folder.created"
	TopicFolderRenamed  = "rv.folder.renamed"
	TopicFolderMoved    = "rv.folder.moved"
	TopicFolderDeleted  = "rv.folder.deleted"  // 递归删除完成，负载包含被删除的子目录与报告数量
	TopicFolderArchived = "rv.folder.archived" // 仅本目录，不级联
	TopicFolderRestored = "rv.folder.restored"

	// 报告领域.
	TopicReportCreated = "rv.report.created"
	TopicReportUpdated = "rv.report.updated"
	TopicReportMoved   = "rv.report.moved" // 单个或批量移动
	TopicReportDeleted = "rv.report.deleted"

	// 审计：每次成功变更后的描述文本，失败不影响主操作.
	TopicAuditRecorded = "rv.audit.recorded"

	// 活动协作方：报告关联到活动，消费者负责将活动标记为完成（幂等）.
	TopicActivityReportLinked = "rv.activity.report_linked"
)

// AllTopics 返回全部主题，用于 CLI 展示.
func AllTopics() []string {
	return []string{
		TopicFolderCreated, TopicFolderRenamed, TopicFolderMoved,
		TopicFolderDeleted, TopicFolderArchived, TopicFolderRestored,
		TopicReportCreated, TopicReportUpdated, TopicReportMoved, TopicReportDeleted,
		TopicAuditRecorded, TopicActivityReportLinked,
	}
}
