package constant

// DefaultNotificationPurgeCron 每天 03:30 清理过期通知
const DefaultNotificationPurgeCron = "30 3 * * *"

// InternalKeyHeader 内部接口鉴权使用的请求头
const InternalKeyHeader = "X-Internal-Key"
