package collab

import (
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/logger"

	"go.uber.org/zap"
)

// 服务端推送的事件动作名
const (
	ActionActiveUsers     = "ActiveUsers"
	ActionUserJoined      = "UserJoined"
	ActionUserLeft        = "UserLeft"
	ActionCursorMove      = "CursorMove"
	ActionDocumentUpdated = "DocumentUpdated"
	ActionDocumentSaved   = "DocumentSaved"
)

// Broadcaster 房间事件分发器
// 每个成员的投递相互独立，单个慢连接不会阻塞其余成员
type Broadcaster struct {
	registry *Registry
	logger   *zap.Logger
}

// NewBroadcaster 创建事件分发器
func NewBroadcaster(registry *Registry, lg *zap.Logger) *Broadcaster {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Broadcaster{registry: registry, logger: lg}
}

// Registry 访问底层会话注册表
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Join 将连接加入房间并通知各方
// 调用方拿到返回的成员列表后负责发送 ActiveUsers 进行在场初始化
func (b *Broadcaster) Join(peer Peer, documentID int64, presence dto.PresenceDTO) []dto.PresenceDTO {
	others, prevDocumentID := b.registry.Join(peer, documentID, presence)

	// 加入新房间隐式离开旧房间，旧房间成员要看到离开事件
	if prevDocumentID != 0 && prevDocumentID != documentID {
		b.fanout(prevDocumentID, peer.ConnID(), ActionUserLeft, dto.UserLeftEvent{
			DocumentID: prevDocumentID,
			UserID:     peer.UID(),
			Username:   peer.Username(),
		})
	}

	b.fanout(documentID, peer.ConnID(), ActionUserJoined, dto.UserJoinedEvent{
		DocumentID: documentID,
		User:       presence,
	})

	b.logger.Info("room join",
		zap.String(logger.FieldConnID, peer.ConnID()),
		zap.Int64(logger.FieldUID, peer.UID()),
		zap.Int64(logger.FieldDocumentID, documentID),
		zap.Int("memberCount", len(others)+1),
	)
	return others
}

// Leave 将连接移出其房间并通知剩余成员，未加入过时是空操作
func (b *Broadcaster) Leave(connID string) {
	documentID, presence, ok := b.registry.Leave(connID)
	if !ok {
		return
	}

	b.fanout(documentID, connID, ActionUserLeft, dto.UserLeftEvent{
		DocumentID: documentID,
		UserID:     presence.UserID,
		Username:   presence.Username,
	})

	b.logger.Info("room leave",
		zap.String(logger.FieldConnID, connID),
		zap.Int64(logger.FieldDocumentID, documentID),
	)
}

// UpdateCursor 更新连接的在场状态并把完整在场记录广播给房间其他成员
// 连接不是房间成员时返回 false
func (b *Broadcaster) UpdateCursor(connID string, position dto.CursorPosition, selection *dto.SelectionRange) bool {
	presence, documentID, ok := b.registry.UpdatePresence(connID, position, selection)
	if !ok {
		return false
	}

	b.fanout(documentID, connID, ActionCursorMove, dto.CursorMoveEvent{
		DocumentID: documentID,
		User:       presence,
	})
	return true
}

// PublishUpdate 将全文内容广播给房间其他成员，接收方直接以收到的快照覆盖本地缓冲
// 连接不是房间成员时返回 false
func (b *Broadcaster) PublishUpdate(peer Peer, documentID int64, content string) bool {
	current, ok := b.registry.Room(peer.ConnID())
	if !ok || current != documentID {
		return false
	}

	b.fanout(documentID, peer.ConnID(), ActionDocumentUpdated, dto.DocumentUpdatedEvent{
		DocumentID: documentID,
		UserID:     peer.UID(),
		Content:    content,
	})
	return true
}

// BroadcastUpdate 将全文内容推送给房间的全部成员，供非房间成员的写入方使用
// 例如 HTTP 接口恢复历史版本后同步在线协作者
func (b *Broadcaster) BroadcastUpdate(documentID, actorUID int64, content string) {
	b.fanout(documentID, "", ActionDocumentUpdated, dto.DocumentUpdatedEvent{
		DocumentID: documentID,
		UserID:     actorUID,
		Content:    content,
	})
}

// NotifySaved 把保存结果广播给房间其他成员
func (b *Broadcaster) NotifySaved(connID string, event dto.DocumentSavedEvent) {
	b.fanout(event.DocumentID, connID, ActionDocumentSaved, event)
}

// fanout 向房间内除 excludeConnID 外的成员推送事件
// 逐成员尽力投递，失败只计数不中断
func (b *Broadcaster) fanout(documentID int64, excludeConnID string, action string, payload any) {
	peers := b.registry.Peers(documentID, excludeConnID)
	broadcastTotal.WithLabelValues(action).Add(float64(len(peers)))

	for _, p := range peers {
		if err := p.Send(action, payload); err != nil {
			broadcastErrors.WithLabelValues(action).Inc()
			b.logger.Warn("broadcast send failed",
				zap.String(logger.FieldAction, action),
				zap.String(logger.FieldConnID, p.ConnID()),
				zap.Int64(logger.FieldDocumentID, documentID),
				zap.Error(err),
			)
		}
	}
}
