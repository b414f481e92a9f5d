// Package collab 维护文档协作房间：成员注册、在场状态与事件分发
package collab

import (
	"sync"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
)

// Peer 一条可以接收事件推送的连接
// pkg/app 的 WebsocketClient 实现该接口
type Peer interface {
	ConnID() string
	UID() int64
	Username() string
	Send(action string, data any) error
}

// member 房间内的一个成员
type member struct {
	peer       Peer
	documentID int64
	presence   dto.PresenceDTO
}

// Registry 会话注册表，房间成员列表是唯一的共享热点状态
// 一条连接同一时间只属于一个房间，加入新房间会隐式离开旧房间
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*member
	conns map[string]*member
}

// NewRegistry 创建会话注册表
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[int64]map[string]*member),
		conns: make(map[string]*member),
	}
}

// Join 将连接加入 documentID 对应的房间
// 返回房间中其他成员的在场快照，以及该连接之前所在的房间ID（0 表示此前不在任何房间）
func (r *Registry) Join(peer Peer, documentID int64, presence dto.PresenceDTO) (others []dto.PresenceDTO, prevDocumentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connID := peer.ConnID()

	if old, ok := r.conns[connID]; ok {
		prevDocumentID = old.documentID
		r.removeLocked(connID)
	}

	m := &member{peer: peer, documentID: documentID, presence: presence}
	room := r.rooms[documentID]
	if room == nil {
		room = make(map[string]*member)
		r.rooms[documentID] = room
	}

	for _, other := range room {
		others = append(others, other.presence)
	}

	room[connID] = m
	r.conns[connID] = m

	roomsGauge.Set(float64(len(r.rooms)))
	membersGauge.Set(float64(len(r.conns)))
	return others, prevDocumentID
}

// Leave 将连接移出其所在房间，幂等：未加入过的连接是空操作
// 返回离开的房间ID与该连接最后的在场信息
func (r *Registry) Leave(connID string) (documentID int64, presence dto.PresenceDTO, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.conns[connID]
	if !exists {
		return 0, dto.PresenceDTO{}, false
	}
	documentID = m.documentID
	presence = m.presence
	r.removeLocked(connID)

	roomsGauge.Set(float64(len(r.rooms)))
	membersGauge.Set(float64(len(r.conns)))
	return documentID, presence, true
}

// removeLocked 从房间与连接索引中删除成员，房间空了就丢弃
// 调用方必须持有写锁
func (r *Registry) removeLocked(connID string) {
	m, exists := r.conns[connID]
	if !exists {
		return
	}
	delete(r.conns, connID)
	if room, ok := r.rooms[m.documentID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, m.documentID)
		}
	}
}

// Members 返回房间内所有成员的在场快照，未知房间返回空
func (r *Registry) Members(documentID int64) []dto.PresenceDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[documentID]
	result := make([]dto.PresenceDTO, 0, len(room))
	for _, m := range room {
		result = append(result, m.presence)
	}
	return result
}

// Room 返回连接当前所在的房间ID，未加入时 ok 为 false
func (r *Registry) Room(connID string) (documentID int64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.conns[connID]
	if !exists {
		return 0, false
	}
	return m.documentID, true
}

// UpdatePresence 更新连接的光标与选区，返回更新后的在场信息
// 连接不是任何房间的成员时 ok 为 false
func (r *Registry) UpdatePresence(connID string, position dto.CursorPosition, selection *dto.SelectionRange) (presence dto.PresenceDTO, documentID int64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.conns[connID]
	if !exists {
		return dto.PresenceDTO{}, 0, false
	}
	m.presence.CursorPosition = position
	m.presence.SelectionRange = selection
	return m.presence, m.documentID, true
}

// Peers 返回房间内除 excludeConnID 之外的所有连接
func (r *Registry) Peers(documentID int64, excludeConnID string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[documentID]
	result := make([]Peer, 0, len(room))
	for connID, m := range room {
		if connID == excludeConnID {
			continue
		}
		result = append(result, m.peer)
	}
	return result
}

// RoomCount 当前活跃房间数
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
