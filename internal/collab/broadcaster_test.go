package collab

import (
	"errors"
	"testing"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster() *Broadcaster {
	return NewBroadcaster(NewRegistry(), nil)
}

func TestBroadcaster_JoinNotifiesExistingMembers(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	others := b.Join(alice, 100, presenceFor(alice))
	assert.Empty(t, others)

	others = b.Join(bob, 100, presenceFor(bob))
	require.Len(t, others, 1)
	assert.Equal(t, "alice", others[0].Username)

	joined := alice.events(ActionUserJoined)
	require.Len(t, joined, 1)
	event := joined[0].payload.(dto.UserJoinedEvent)
	assert.Equal(t, int64(100), event.DocumentID)
	assert.Equal(t, int64(2), event.User.UserID)

	// 加入者自己不会收到 UserJoined
	assert.Empty(t, bob.events(ActionUserJoined))
}

func TestBroadcaster_JoinNewRoomNotifiesOldRoom(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(bob, 100, presenceFor(bob))

	// bob 转到另一个文档，旧房间的 alice 看到离开事件
	b.Join(bob, 200, presenceFor(bob))

	left := alice.events(ActionUserLeft)
	require.Len(t, left, 1)
	event := left[0].payload.(dto.UserLeftEvent)
	assert.Equal(t, int64(100), event.DocumentID)
	assert.Equal(t, int64(2), event.UserID)
}

func TestBroadcaster_LeaveNotifiesRemaining(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(bob, 100, presenceFor(bob))

	b.Leave("conn-b")

	left := alice.events(ActionUserLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "bob", left[0].payload.(dto.UserLeftEvent).Username)

	// 再次离开是空操作，不产生新事件
	b.Leave("conn-b")
	assert.Len(t, alice.events(ActionUserLeft), 1)
}

func TestBroadcaster_UpdateCursorReachesOnlyRoomPeers(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")
	carol := newFakePeer("conn-c", 3, "carol")
	dave := newFakePeer("conn-d", 4, "dave")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(bob, 100, presenceFor(bob))
	b.Join(carol, 100, presenceFor(carol))
	b.Join(dave, 999, presenceFor(dave))

	ok := b.UpdateCursor("conn-a", dto.CursorPosition{Line: 0, Ch: 5}, nil)
	require.True(t, ok)

	for _, p := range []*fakePeer{bob, carol} {
		moves := p.events(ActionCursorMove)
		require.Len(t, moves, 1, "peer %s", p.connID)
		event := moves[0].payload.(dto.CursorMoveEvent)
		assert.Equal(t, int64(1), event.User.UserID)
		assert.Equal(t, 5, event.User.CursorPosition.Ch)
	}

	// 发送者与无关房间均收不到
	assert.Empty(t, alice.events(ActionCursorMove))
	assert.Empty(t, dave.events(ActionCursorMove))
}

func TestBroadcaster_UpdateCursorNonMember(t *testing.T) {
	b := newTestBroadcaster()
	assert.False(t, b.UpdateCursor("conn-x", dto.CursorPosition{}, nil))
}

func TestBroadcaster_PublishUpdate(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(bob, 100, presenceFor(bob))

	ok := b.PublishUpdate(alice, 100, "Hello World")
	require.True(t, ok)

	updates := bob.events(ActionDocumentUpdated)
	require.Len(t, updates, 1)
	event := updates[0].payload.(dto.DocumentUpdatedEvent)
	assert.Equal(t, "Hello World", event.Content)
	assert.Equal(t, int64(1), event.UserID)

	assert.Empty(t, alice.events(ActionDocumentUpdated))

	// 向未加入的文档发布无效
	assert.False(t, b.PublishUpdate(alice, 200, "nope"))
}

func TestBroadcaster_FanoutSurvivesFailingPeer(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	broken := newFakePeer("conn-b", 2, "broken")
	broken.sendErr = errors.New("connection reset")
	carol := newFakePeer("conn-c", 3, "carol")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(broken, 100, presenceFor(broken))
	b.Join(carol, 100, presenceFor(carol))

	require.True(t, b.UpdateCursor("conn-a", dto.CursorPosition{Line: 1}, nil))

	// 坏连接不影响其他成员收到事件
	assert.Len(t, carol.events(ActionCursorMove), 1)
}

func TestBroadcaster_NotifySaved(t *testing.T) {
	b := newTestBroadcaster()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	b.Join(alice, 100, presenceFor(alice))
	b.Join(bob, 100, presenceFor(bob))

	b.NotifySaved("conn-a", dto.DocumentSavedEvent{
		DocumentID:     100,
		UserID:         1,
		VersionCreated: true,
		Version:        3,
	})

	saved := bob.events(ActionDocumentSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(3), saved[0].payload.(dto.DocumentSavedEvent).Version)
	assert.Empty(t, alice.events(ActionDocumentSaved))
}
