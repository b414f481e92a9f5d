// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User    UserServiceConfig    // User related config // 用户相关配置
	Version VersionServiceConfig // Version history config // 版本历史配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// VersionServiceConfig version history configuration
// VersionServiceConfig 版本历史配置
type VersionServiceConfig struct {
	// Cooldown snapshot debounce window (e.g. 60s, 2m) // 快照去抖窗口（支持格式：60s、2m）
	Cooldown string
	// MinAddedChars chars added beyond which a change is significant // 新增字符数超过该值视为显著变更
	MinAddedChars int
	// MinRemovedChars chars removed beyond which a change is significant // 删除字符数超过该值视为显著变更
	MinRemovedChars int
	// KeepVersions versions to keep per document during cleanup // 清理时每个文档保留的版本数
	KeepVersions int
	// RetentionTime versions older than this may be cleaned up (e.g. 90d, 0/empty disables) // 版本保留时间（支持格式：90d，0 或空表示不清理）
	RetentionTime string
}
