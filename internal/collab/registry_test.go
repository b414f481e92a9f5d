package collab

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePeer 记录下发的事件，供断言使用
type fakePeer struct {
	mu       sync.Mutex
	connID   string
	uid      int64
	username string
	sent     []sentEvent
	sendErr  error
}

type sentEvent struct {
	action  string
	payload any
}

func newFakePeer(connID string, uid int64, username string) *fakePeer {
	return &fakePeer{connID: connID, uid: uid, username: username}
}

func (p *fakePeer) ConnID() string   { return p.connID }
func (p *fakePeer) UID() int64       { return p.uid }
func (p *fakePeer) Username() string { return p.username }

func (p *fakePeer) Send(action string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, sentEvent{action: action, payload: payload})
	return nil
}

func (p *fakePeer) events(action string) []sentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []sentEvent
	for _, e := range p.sent {
		if e.action == action {
			out = append(out, e)
		}
	}
	return out
}

func presenceFor(p *fakePeer) dto.PresenceDTO {
	return dto.PresenceDTO{
		UserID:   p.uid,
		Username: p.username,
		Color:    "#336699",
	}
}

func TestRegistry_JoinReturnsOtherMembers(t *testing.T) {
	r := NewRegistry()

	alice := newFakePeer("conn-a", 1, "alice")
	bob := newFakePeer("conn-b", 2, "bob")

	others, prev := r.Join(alice, 100, presenceFor(alice))
	assert.Empty(t, others)
	assert.Zero(t, prev)

	others, prev = r.Join(bob, 100, presenceFor(bob))
	require.Len(t, others, 1)
	assert.Equal(t, int64(1), others[0].UserID)
	assert.Zero(t, prev)

	assert.Len(t, r.Members(100), 2)
}

func TestRegistry_JoinReplacesPreviousRoom(t *testing.T) {
	r := NewRegistry()

	alice := newFakePeer("conn-a", 1, "alice")

	_, prev := r.Join(alice, 100, presenceFor(alice))
	assert.Zero(t, prev)

	_, prev = r.Join(alice, 200, presenceFor(alice))
	assert.Equal(t, int64(100), prev)

	// 旧房间成员清空后被丢弃
	assert.Empty(t, r.Members(100))
	assert.Len(t, r.Members(200), 1)
	assert.Equal(t, 1, r.RoomCount())

	documentID, ok := r.Room("conn-a")
	require.True(t, ok)
	assert.Equal(t, int64(200), documentID)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := NewRegistry()

	alice := newFakePeer("conn-a", 1, "alice")
	r.Join(alice, 100, presenceFor(alice))

	documentID, presence, ok := r.Leave("conn-a")
	require.True(t, ok)
	assert.Equal(t, int64(100), documentID)
	assert.Equal(t, int64(1), presence.UserID)

	// 再次离开与从未加入都是空操作
	_, _, ok = r.Leave("conn-a")
	assert.False(t, ok)
	_, _, ok = r.Leave("conn-unknown")
	assert.False(t, ok)

	assert.Zero(t, r.RoomCount())
}

func TestRegistry_MembersUnknownRoomIsEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Members(999))
	assert.Empty(t, r.Peers(999, ""))
}

func TestRegistry_UpdatePresence(t *testing.T) {
	r := NewRegistry()

	alice := newFakePeer("conn-a", 1, "alice")
	r.Join(alice, 100, presenceFor(alice))

	sel := &dto.SelectionRange{Start: 0, End: 5}
	presence, documentID, ok := r.UpdatePresence("conn-a", dto.CursorPosition{Line: 3, Ch: 7}, sel)
	require.True(t, ok)
	assert.Equal(t, int64(100), documentID)
	assert.Equal(t, 3, presence.CursorPosition.Line)
	assert.Equal(t, 7, presence.CursorPosition.Ch)
	require.NotNil(t, presence.SelectionRange)
	assert.Equal(t, 5, presence.SelectionRange.End)

	// 非成员连接更新无效
	_, _, ok = r.UpdatePresence("conn-x", dto.CursorPosition{}, nil)
	assert.False(t, ok)
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := newFakePeer(fmt.Sprintf("conn-%d", n), int64(n), fmt.Sprintf("user-%d", n))
			r.Join(p, int64(n%5), presenceFor(p))
			r.UpdatePresence(p.connID, dto.CursorPosition{Line: n}, nil)
			if n%2 == 0 {
				r.Leave(p.connID)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for room := 0; room < 5; room++ {
		total += len(r.Members(int64(room)))
	}
	assert.Equal(t, 25, total)
}
