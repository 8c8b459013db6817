// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list finished rounds and games are pushed to.
const DefaultQueueName = "sketch_rounds"

const publishTimeout = 3 * time.Second

// Archive kinds.
const (
	KindRound   = "round"
	KindGameEnd = "game_end"
)

// ArchiveRecord is one entry of the history queue. Downstream consumers read
// it for leaderboards and replays; the game server never reads it back.
type ArchiveRecord struct {
	ID        uuid.UUID           `json:"id"`
	Kind      string              `json:"kind"`
	RoomCode  string              `json:"room_code"`
	Round     *models.RoundRecord `json:"round,omitempty"`
	Standings []models.Player     `json:"standings,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Historian pushes sealed rounds and final standings onto a Redis list.
// A Historian with a nil client drops everything.
type Historian struct {
	rdb   *redis.Client
	queue string
	log   logrus.FieldLogger
}

// NewHistorian returns a publisher for queue. rdb may be nil.
func NewHistorian(rdb *redis.Client, queue string, log logrus.FieldLogger) *Historian {
	if queue == "" {
		queue = DefaultQueueName
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Historian{rdb: rdb, queue: queue, log: log.WithField("queue", queue)}
}

// Enabled reports whether records are actually published.
func (h *Historian) Enabled() bool {
	return h != nil && h.rdb != nil
}

// RecordRound publishes a sealed round in the background.
func (h *Historian) RecordRound(roomCode string, rec models.RoundRecord) {
	h.publishAsync(ArchiveRecord{Kind: KindRound, RoomCode: roomCode, Round: &rec})
}

// RecordGameEnd publishes final standings in the background.
func (h *Historian) RecordGameEnd(roomCode string, standings []models.Player) {
	h.publishAsync(ArchiveRecord{Kind: KindGameEnd, RoomCode: roomCode, Standings: standings})
}

func (h *Historian) publishAsync(rec ArchiveRecord) {
	if !h.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.Publish(ctx, rec); err != nil {
			h.log.WithError(err).WithField("room", rec.RoomCode).Warn("failed to archive record")
		}
	}()
}

// Publish serializes rec to JSON and pushes it to the queue, stamping the id
// and timestamp when unset.
func (h *Historian) Publish(ctx context.Context, rec ArchiveRecord) error {
	if !h.Enabled() {
		return nil
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := h.rdb.RPush(ctx, h.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", h.queue, err)
	}
	return nil
}

func encodeRecord(rec ArchiveRecord) ([]byte, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ArchiveRecord: %w", err)
	}
	return data, nil
}
