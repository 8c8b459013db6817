// internal/game/helpers_test.go
package game

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// recorder collects events instead of sending them over WS.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (c *recorder) Write(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *recorder) ofType(t EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (c *recorder) last() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return nil
	}
	return &c.events[len(c.events)-1]
}

func (c *recorder) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fixture struct {
	t     *testing.T
	store *RoomStore
	clock *ManualClock
	room  *Room
	ids   []string
	conns map[string]*recorder
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func intPtr(n int) *int { return &n }

func testOptions(clock *ManualClock) RoomOptions {
	return RoomOptions{
		Logger:        quietLogger(),
		Clock:         clock,
		RoundEndDelay: 5 * time.Second,
		Limits:        Limits{MaxRounds: 20, MaxDrawTime: 300},
		NewRand:       func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	}
}

// newFixture creates a room hosted by p1 and joins players p2..pN.
func newFixture(t *testing.T, req models.SettingsRequest, players int) *fixture {
	t.Helper()
	clock := NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		t:     t,
		store: NewRoomStore(testOptions(clock)),
		clock: clock,
		conns: make(map[string]*recorder),
	}
	for i := 1; i <= players; i++ {
		id := fmt.Sprintf("p%d", i)
		f.ids = append(f.ids, id)
		f.conns[id] = &recorder{}
		info := SessionInfo{ID: id, Name: fmt.Sprintf("Player %d", i), Conn: f.conns[id]}
		if i == 1 {
			room, err := f.store.CreateRoom(info, req)
			require.NoError(t, err)
			f.room = room
			continue
		}
		require.NoError(t, f.room.Join(info))
	}
	return f
}

func (f *fixture) clearEvents() {
	for _, c := range f.conns {
		c.clear()
	}
}

func (f *fixture) drawer() string {
	f.room.mu.Lock()
	defer f.room.mu.Unlock()
	return f.room.drawerID
}

func (f *fixture) player(id string) models.Player {
	f.room.mu.Lock()
	defer f.room.mu.Unlock()
	p, ok := f.room.players[id]
	require.True(f.t, ok, "player %s not in room", id)
	return *p
}

// pick forces the current offers so the drawer can select a known word.
func (f *fixture) pick(word string) {
	f.t.Helper()
	f.room.mu.Lock()
	f.room.wordOptions = []string{word}
	f.room.mu.Unlock()
	require.NoError(f.t, f.room.SelectWord(f.drawer(), word))
}

// shownLetters counts the revealed letters of a rendered hint.
func shownLetters(hint string) int {
	n := 0
	for _, part := range strings.Split(hint, " ") {
		if part != "_" && part != "" {
			n++
		}
	}
	return n
}
