package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobTreeIntegrity = "tree.integrity"
)

// maxLoggedAnomalies 单次巡检最多逐条记录的异常数，其余只计数.
const maxLoggedAnomalies = 20
