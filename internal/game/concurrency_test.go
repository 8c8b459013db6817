package game

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// autoPlayer picks the first offered word as soon as it becomes the drawer.
type autoPlayer struct {
	recorder
	id string

	mu   sync.Mutex
	room *Room

	ended   chan struct{}
	endOnce sync.Once
}

func newAutoPlayer(id string) *autoPlayer {
	return &autoPlayer{id: id, ended: make(chan struct{})}
}

func (p *autoPlayer) bind(r *Room) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = r
}

func (p *autoPlayer) Write(ev Event) {
	p.recorder.Write(ev)
	switch ev.Type {
	case EventChooseWord:
		offers := ev.Payload.([]string)
		p.mu.Lock()
		room := p.room
		p.mu.Unlock()
		// Write runs under the room lock, so the reply has to come from elsewhere.
		go func() { _ = room.SelectWord(p.id, offers[0]) }()
	case EventGameEnded:
		p.endOnce.Do(func() { close(p.ended) })
	}
}

type countingHistorian struct {
	mu     sync.Mutex
	rounds map[string]int
	ends   int
}

func (h *countingHistorian) RecordRound(code string, _ models.RoundRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rounds[code]++
}

func (h *countingHistorian) RecordGameEnd(string, []models.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends++
}

func TestConcurrentCreateRoomCodesAreUnique(t *testing.T) {
	store := NewRoomStore(testOptions(NewManualClock(time.Now())))

	const n = 400
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, err := store.CreateRoom(SessionInfo{ID: "host" + strconv.Itoa(i), Name: "Host", Conn: &recorder{}}, models.SettingsRequest{})
			if assert.NoError(t, err) {
				codes <- room.Code
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for code := range codes {
		assert.False(t, seen[code], "code %s handed out twice", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, store.Count())
	assert.Len(t, store.Codes(), n)
}

func TestRealClockGamesRunSideBySide(t *testing.T) {
	if testing.Short() {
		t.Skip("plays several real-time games")
	}
	hist := &countingHistorian{rounds: make(map[string]int)}
	opts := testOptions(nil)
	opts.Clock = RealClock{}
	opts.RoundEndDelay = 20 * time.Millisecond
	opts.Historian = hist
	opts.NewRand = nil
	store := NewRoomStore(opts)
	defer store.Close()

	const rooms = 8
	rounds, drawTime := 2, 1

	type table struct {
		room  *Room
		host  *autoPlayer
		guest *autoPlayer
	}
	tables := make([]table, rooms)
	for i := range tables {
		host, guest := newAutoPlayer("host"), newAutoPlayer("guest")
		room, err := store.CreateRoom(SessionInfo{ID: host.id, Name: "Host", Conn: host}, models.SettingsRequest{
			Rounds:       &rounds,
			DrawTime:     &drawTime,
			WordCategory: "animals",
		})
		require.NoError(t, err)
		host.bind(room)
		guest.bind(room)
		require.NoError(t, room.Join(SessionInfo{ID: guest.id, Name: "Guest", Conn: guest}))
		tables[i] = table{room: room, host: host, guest: guest}
	}
	for _, tb := range tables {
		require.NoError(t, tb.room.StartGame(tb.host.id))
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for _, tb := range tables {
		tb := tb
		// a guesser that never gets it, a reader, and a player dropping in and out
		wg.Add(3)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				case <-time.After(5 * time.Millisecond):
					_ = tb.room.Chat(tb.guest.id, "hello")
					_ = tb.room.Chat(tb.host.id, "hello")
				}
			}
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				case <-time.After(3 * time.Millisecond):
					_ = tb.room.Snapshot()
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				case <-time.After(10 * time.Millisecond):
				}
				id := "visitor" + strconv.Itoa(i)
				if err := tb.room.Join(SessionInfo{ID: id, Name: "Visitor", Conn: &recorder{}}); err == nil {
					_ = tb.room.Chat(id, "hi")
					tb.room.Leave(id)
				}
			}
		}()
	}

	deadline := time.After(15 * time.Second)
	for i, tb := range tables {
		select {
		case <-tb.host.ended:
		case <-deadline:
			close(stop)
			wg.Wait()
			t.Fatalf("room %d did not finish", i)
		}
	}
	close(stop)
	wg.Wait()

	for _, tb := range tables {
		recap, err := tb.room.Recap(tb.host.id)
		require.NoError(t, err)
		assert.Len(t, recap.Rounds, rounds)
		for _, rec := range recap.Rounds {
			assert.NotEmpty(t, rec.Word)
		}
		assert.Len(t, tb.host.ofType(EventGameEnded), 1)
		assert.Len(t, tb.guest.ofType(EventGameEnded), 1)
	}

	hist.mu.Lock()
	defer hist.mu.Unlock()
	assert.Equal(t, rooms, hist.ends)
	assert.Len(t, hist.rounds, rooms)
	for code, n := range hist.rounds {
		assert.Equal(t, rounds, n, "room %s", code)
	}
}
