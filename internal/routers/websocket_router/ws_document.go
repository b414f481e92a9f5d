package websocket_router

import (
	"errors"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/app"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/collab"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	pkgapp "github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"

	"go.uber.org/zap"
)

// 客户端消息动作名，服务端事件动作名见 internal/collab
const (
	ActionDocumentJoin   = "DocumentJoin"
	ActionDocumentLeave  = "DocumentLeave"
	ActionCursorMove     = "CursorMove"
	ActionDocumentUpdate = "DocumentUpdate"
	ActionDocumentSave   = "DocumentSave"
)

// DocumentWSHandler WebSocket document collaboration handler
// DocumentWSHandler WebSocket 文档协作处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type DocumentWSHandler struct {
	*WSHandler
}

// NewDocumentWSHandler creates DocumentWSHandler instance
// NewDocumentWSHandler 创建 DocumentWSHandler 实例
func NewDocumentWSHandler(a *app.App) *DocumentWSHandler {
	return &DocumentWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// DocumentJoin handles a client joining a document room
// DocumentJoin 处理客户端加入文档房间
// Replies with the current document snapshot, then pushes the ActiveUsers
// member list; other members receive a UserJoined event.
// 先回复文档当前内容，再推送 ActiveUsers 成员列表；其他成员收到 UserJoined 事件。
func (h *DocumentWSHandler) DocumentJoin(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.DocumentJoinMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...), msg.Type)
		return
	}

	doc, err := h.App.DocumentService.Get(c.Ctx, params.DocumentID)
	if err != nil {
		if errors.Is(err, code.ErrorDocumentNotFound) {
			c.ToResponse(code.ErrorDocumentNotFound, msg.Type)
			return
		}
		h.respondError(c, code.ErrorDocumentJoinFailed, err, "websocket_router.document.DocumentJoin.Get")
		return
	}

	presence := dto.PresenceDTO{
		UserID:   c.UID(),
		Username: c.Username(),
		Color:    params.Color,
	}

	others := h.App.Broadcaster.Join(c, params.DocumentID, presence)

	h.logInfo(c, "websocket_router.document.DocumentJoin",
		zap.Int64("uid", c.UID()),
		zap.Int64("documentId", params.DocumentID),
		zap.Int("members", len(others)+1),
	)

	c.ToResponse(code.Success.WithData(doc), msg.Type)

	if err := c.Send(collab.ActionActiveUsers, dto.ActiveUsersEvent{
		DocumentID: params.DocumentID,
		Users:      others,
	}); err != nil {
		h.logError(c, "websocket_router.document.DocumentJoin.Send", err)
	}
}

// DocumentLeave handles a client leaving its current document room
// DocumentLeave 处理客户端离开当前文档房间
// Remaining members receive a UserLeft event.
// 房间内剩余成员会收到 UserLeft 事件。
func (h *DocumentWSHandler) DocumentLeave(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.DocumentLeaveMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...), msg.Type)
		return
	}

	h.App.Broadcaster.Leave(c.ConnID())

	h.logInfo(c, "websocket_router.document.DocumentLeave",
		zap.Int64("uid", c.UID()),
		zap.Int64("documentId", params.DocumentID),
	)

	c.ToResponse(code.Success, msg.Type)
}

// CursorMove handles a cursor or selection update from a room member
// CursorMove 处理房间成员的光标或选区更新
// High-frequency path, broadcast only, no success reply is sent.
// 高频路径，仅广播，不发送成功回复。
func (h *DocumentWSHandler) CursorMove(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.CursorMoveMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...), msg.Type)
		return
	}

	if ok := h.App.Broadcaster.UpdateCursor(c.ConnID(), params.Position, params.Selection); !ok {
		c.ToResponse(code.ErrorNotRoomMember, msg.Type)
		return
	}
}

// DocumentUpdate relays full-content updates to the other room members
// DocumentUpdate 将全文更新转发给房间内其他成员
// Broadcast only, nothing is persisted here; clients call DocumentSave to persist.
// 仅广播，不落库；客户端通过 DocumentSave 持久化。
func (h *DocumentWSHandler) DocumentUpdate(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.DocumentUpdateMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...), msg.Type)
		return
	}

	if ok := h.App.Broadcaster.PublishUpdate(c, params.DocumentID, params.Content); !ok {
		c.ToResponse(code.ErrorNotRoomMember, msg.Type)
		return
	}
}

// DocumentSave persists document content and notifies the room
// DocumentSave 持久化文档内容并通知房间
// The saver gets the save result, other members receive a DocumentSaved event.
// 保存者收到保存结果，其他成员收到 DocumentSaved 事件。
func (h *DocumentWSHandler) DocumentSave(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.DocumentSaveMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...), msg.Type)
		return
	}

	result, err := h.App.DocumentService.Save(c.Ctx, c.UID(), params.DocumentID, params.Content)
	if err != nil {
		if errors.Is(err, code.ErrorDocumentNotFound) {
			c.ToResponse(code.ErrorDocumentNotFound, msg.Type)
			return
		}
		h.respondError(c, code.ErrorDocumentSaveFailed, err, "websocket_router.document.DocumentSave")
		return
	}

	c.ToResponse(code.Success.WithData(result), msg.Type)

	h.App.Broadcaster.NotifySaved(c.ConnID(), dto.DocumentSavedEvent{
		DocumentID:     params.DocumentID,
		UserID:         c.UID(),
		SavedAt:        result.SavedAt.UnixMilli(),
		VersionCreated: result.VersionCreated,
		Version:        result.Version,
	})
}

// UserData loads the user record referenced by a connection token
// UserData 加载连接令牌对应的用户记录
// Registered via UserDataSelectUse, rejects tokens of deleted users.
// 通过 UserDataSelectUse 注册，拒绝已注销用户的令牌。
func (h *DocumentWSHandler) UserData(c *pkgapp.WebsocketClient, uid int64) (*pkgapp.UserSelectEntity, error) {
	user, err := h.App.UserService.GetInfo(c.Ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &pkgapp.UserSelectEntity{
		UID:      user.UID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

// ClientClose removes a closed connection from its room
// ClientClose 将已关闭的连接移出房间
func (h *DocumentWSHandler) ClientClose(c *pkgapp.WebsocketClient) {
	h.App.Broadcaster.Leave(c.ConnID())
}
