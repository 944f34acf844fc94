package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sirivellaramudu/code-collab-server/internal/models"
	"github.com/sirivellaramudu/code-collab-server/internal/utils"
)

const (
	roomKeyPrefix = "collab:room:"
	eventsChannel = "collab:rooms"
	roomTTL       = 24 * time.Hour
	opTimeout     = 2 * time.Second
)

var ErrRoomNotFound = errors.New("room not found")

// roomEvent is what gets published on the lifecycle channel so sibling
// instances and monitors can observe membership changes.
type roomEvent struct {
	Kind   string             `json:"kind"` // "active" or "closed"
	RoomID string             `json:"roomId"`
	Status *models.RoomStatus `json:"status,omitempty"`
}

// RoomDirectory mirrors live room metadata into Redis, best-effort. The
// in-memory hub stays the source of truth: every Redis failure is logged
// and swallowed, and the service runs fine with no directory at all.
type RoomDirectory struct {
	rdb *redis.Client
	log *utils.Logger

	mu     sync.RWMutex
	status map[string]*models.RoomStatus
}

func NewRoomDirectory(redisAddr string, log *utils.Logger) *RoomDirectory {
	return &RoomDirectory{
		rdb:    redis.NewClient(&redis.Options{Addr: redisAddr}),
		log:    log,
		status: make(map[string]*models.RoomStatus),
	}
}

// RoomActive records the latest status for a live room and publishes an
// "active" lifecycle event. Implements session.StatusObserver.
func (d *RoomDirectory) RoomActive(status models.RoomStatus) {
	d.mu.Lock()
	st := status
	d.status[status.RoomID] = &st
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := roomKeyPrefix + status.RoomID
	if err := d.rdb.HSet(ctx, key, map[string]interface{}{
		"roomId":       status.RoomID,
		"language":     string(status.Language),
		"participants": status.Participants,
		"lastActive":   status.LastActive,
	}).Err(); err != nil {
		d.log.Warn("directory: failed to store room status", "room", status.RoomID, "error", err.Error())
		return
	}
	d.rdb.Expire(ctx, key, roomTTL)
	d.publish(ctx, roomEvent{Kind: "active", RoomID: status.RoomID, Status: &st})
}

// RoomClosed drops the room from the directory and publishes a "closed"
// lifecycle event. Implements session.StatusObserver.
func (d *RoomDirectory) RoomClosed(roomID string) {
	d.mu.Lock()
	delete(d.status, roomID)
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := d.rdb.Del(ctx, roomKeyPrefix+roomID).Err(); err != nil {
		d.log.Warn("directory: failed to delete room", "room", roomID, "error", err.Error())
	}
	d.publish(ctx, roomEvent{Kind: "closed", RoomID: roomID})
}

func (d *RoomDirectory) publish(ctx context.Context, event roomEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := d.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		d.log.Warn("directory: failed to publish room event", "room", event.RoomID, "error", err.Error())
	}
}

// GetRoomStatus looks up a room, first in the local cache and then in
// Redis, so an instance can answer for rooms hosted elsewhere.
func (d *RoomDirectory) GetRoomStatus(ctx context.Context, roomID string) (*models.RoomStatus, error) {
	d.mu.RLock()
	if st, ok := d.status[roomID]; ok {
		out := *st
		d.mu.RUnlock()
		return &out, nil
	}
	d.mu.RUnlock()

	result := d.rdb.HGetAll(ctx, roomKeyPrefix+roomID)
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to get room from redis: %w", result.Err())
	}
	fields := result.Val()
	if len(fields) == 0 {
		return nil, ErrRoomNotFound
	}

	participants, _ := strconv.Atoi(fields["participants"])
	return &models.RoomStatus{
		RoomID:       fields["roomId"],
		Language:     models.Language(fields["language"]),
		Participants: participants,
		LastActive:   fields["lastActive"],
	}, nil
}

// SubscribeToRoomEvents consumes lifecycle events published by other
// instances and keeps the local status cache current. Runs until ctx is
// cancelled or the connection drops.
func (d *RoomDirectory) SubscribeToRoomEvents(ctx context.Context) {
	subscriber := d.rdb.Subscribe(ctx, eventsChannel)
	defer subscriber.Close()
	ch := subscriber.Channel()

	d.log.Info("directory: subscribed to room events", "channel", eventsChannel)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d.handleEventPayload(msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (d *RoomDirectory) handleEventPayload(payload string) {
	var event roomEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		d.log.Warn("directory: failed to parse room event", "error", err.Error())
		return
	}
	switch event.Kind {
	case "active":
		if event.Status == nil {
			return
		}
		d.mu.Lock()
		st := *event.Status
		d.status[event.RoomID] = &st
		d.mu.Unlock()
	case "closed":
		d.mu.Lock()
		delete(d.status, event.RoomID)
		d.mu.Unlock()
	}
}

func (d *RoomDirectory) Close() error {
	return d.rdb.Close()
}
