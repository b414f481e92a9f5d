package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldConnID 连接 ID 字段
	FieldConnID = "connId"

	// FieldDocumentID 文档 ID 字段
	FieldDocumentID = "documentId"

	// FieldVersionID 版本记录 ID 字段
	FieldVersionID = "versionId"

	// FieldVersionNumber 版本号字段
	FieldVersionNumber = "versionNumber"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldRoom 房间（文档协作组）字段
	FieldRoom = "room"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldSize 内容大小字段
	FieldSize = "size"
)
