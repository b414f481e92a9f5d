package dto

// CursorPosition cursor location expressed as line and column
// CursorPosition 以行列表示的光标位置
type CursorPosition struct {
	Line int `json:"line" form:"line" example:"0"` // Zero-based line // 行号，从0开始
	Ch   int `json:"ch" form:"ch" example:"5"`     // Zero-based column // 列号，从0开始
}

// SelectionRange character offsets of the active selection
// SelectionRange 选区的字符偏移范围
type SelectionRange struct {
	Start int `json:"start" form:"start" example:"0"` // Selection start offset // 选区起始偏移
	End   int `json:"end" form:"end" example:"5"`     // Selection end offset // 选区结束偏移
}

// PresenceDTO live presence record of one room member
// PresenceDTO 房间成员的实时在场信息
type PresenceDTO struct {
	UserID         int64           `json:"userId"`                   // User ID // 用户ID
	Username       string          `json:"username"`                 // Username // 用户名
	Color          string          `json:"color"`                    // Cursor color assigned by the client // 客户端指定的光标颜色
	CursorPosition CursorPosition  `json:"cursorPosition"`           // Latest cursor position // 最新光标位置
	SelectionRange *SelectionRange `json:"selectionRange,omitempty"` // Active selection, if any // 当前选区
}

// ---------------- Client messages // 客户端消息 ----------------

// DocumentJoinMessage join a document room
// DocumentJoinMessage 加入文档房间
type DocumentJoinMessage struct {
	DocumentID int64  `json:"documentId" form:"documentId" binding:"required" example:"1"` // Document ID // 文档ID
	Color      string `json:"color" form:"color" example:"#e91e63"`                        // Cursor color // 光标颜色
}

// DocumentLeaveMessage leave the current document room
// DocumentLeaveMessage 离开当前文档房间
type DocumentLeaveMessage struct {
	DocumentID int64 `json:"documentId" form:"documentId" example:"1"` // Document ID // 文档ID
}

// CursorMoveMessage cursor or selection update from a client
// CursorMoveMessage 客户端的光标或选区更新
type CursorMoveMessage struct {
	DocumentID int64           `json:"documentId" form:"documentId" binding:"required" example:"1"` // Document ID // 文档ID
	Position   CursorPosition  `json:"position" form:"position"`                                    // Cursor position // 光标位置
	Selection  *SelectionRange `json:"selection,omitempty" form:"selection"`                        // Active selection // 当前选区
}

// DocumentUpdateMessage full-content update broadcast to peers, not persisted
// DocumentUpdateMessage 广播给协作者的全文更新，不落库
type DocumentUpdateMessage struct {
	DocumentID int64  `json:"documentId" form:"documentId" binding:"required" example:"1"` // Document ID // 文档ID
	Content    string `json:"content" form:"content"`                                      // Full document content // 文档完整内容
}

// DocumentSaveMessage persist content and maybe snapshot a version
// DocumentSaveMessage 持久化内容并按需生成版本快照
type DocumentSaveMessage struct {
	DocumentID int64  `json:"documentId" form:"documentId" binding:"required" example:"1"` // Document ID // 文档ID
	Content    string `json:"content" form:"content"`                                      // Full document content // 文档完整内容
}

// ---------------- Server events // 服务端事件 ----------------

// ActiveUsersEvent current member list sent to a joining connection
// ActiveUsersEvent 发送给新加入连接的当前成员列表
type ActiveUsersEvent struct {
	DocumentID int64         `json:"documentId"` // Document ID // 文档ID
	Users      []PresenceDTO `json:"users"`      // Current room members // 当前房间成员
}

// UserJoinedEvent a peer joined the room
// UserJoinedEvent 有协作者加入房间
type UserJoinedEvent struct {
	DocumentID int64       `json:"documentId"` // Document ID // 文档ID
	User       PresenceDTO `json:"user"`       // Presence of the joining member // 加入成员的在场信息
}

// UserLeftEvent a peer left the room
// UserLeftEvent 有协作者离开房间
type UserLeftEvent struct {
	DocumentID int64  `json:"documentId"` // Document ID // 文档ID
	UserID     int64  `json:"userId"`     // User ID // 用户ID
	Username   string `json:"username"`   // Username // 用户名
}

// CursorMoveEvent a peer moved its cursor
// CursorMoveEvent 协作者移动了光标
type CursorMoveEvent struct {
	DocumentID int64       `json:"documentId"` // Document ID // 文档ID
	User       PresenceDTO `json:"user"`       // Full presence record of the sender // 发送者的完整在场信息
}

// DocumentUpdatedEvent a peer broadcast new content
// DocumentUpdatedEvent 协作者广播了新内容
type DocumentUpdatedEvent struct {
	DocumentID int64  `json:"documentId"` // Document ID // 文档ID
	UserID     int64  `json:"userId"`     // Sender user ID // 发送者用户ID
	Content    string `json:"content"`    // Full document content // 文档完整内容
}

// DocumentSavedEvent content was persisted
// DocumentSavedEvent 内容已持久化
type DocumentSavedEvent struct {
	DocumentID     int64 `json:"documentId"`        // Document ID // 文档ID
	UserID         int64 `json:"userId"`            // Saver user ID // 保存者用户ID
	SavedAt        int64 `json:"savedAt"`           // Save timestamp (ms) // 保存时间戳（毫秒）
	VersionCreated bool  `json:"versionCreated"`    // Whether a version snapshot was created // 是否生成了版本快照
	Version        int64 `json:"version,omitempty"` // Created version number // 生成的版本号
}
