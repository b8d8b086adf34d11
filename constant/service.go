package constant

// 服务标识，用于链路追踪和日志
const (
	ServiceName    = "campus-service"
	ServiceVersion = "1.0.0"
)
