package session

import (
	"sync"
	"time"

	"github.com/sirivellaramudu/code-collab-server/internal/models"
)

// Room owns the authoritative document and participant set for one
// collaboration session. A single goroutine processes all mutations in
// arrival order, which is what makes the last-writer-wins edit policy
// well-defined: "last" means last accepted by this queue, not last by
// wall-clock at the sender. Rooms are fully independent of each other.
type Room struct {
	ID string

	mailbox  chan func()
	quit     chan struct{}
	stopOnce sync.Once

	// Owned by the room goroutine after NewRoom.
	code         string
	seq          int64
	language     models.Language
	participants map[string]*models.Participant
	clients      map[string]*Client
	lastActive   time.Time

	dispatch Dispatcher
	presence presence
	now      func() time.Time
}

func NewRoom(id string, language models.Language) *Room {
	if language == "" {
		language = models.DefaultLanguage
	}
	r := &Room{
		ID:           id,
		mailbox:      make(chan func(), 128),
		quit:         make(chan struct{}),
		language:     language,
		participants: make(map[string]*models.Participant),
		clients:      make(map[string]*Client),
		now:          time.Now,
	}
	r.lastActive = r.now()
	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case fn := <-r.mailbox:
			fn()
		case <-r.quit:
			return
		}
	}
}

// Stop terminates the room goroutine. Pending commands are discarded; the
// hub only stops a room once it has no participants left.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// do runs fn on the room goroutine and waits for it. Returns false if the
// room has been stopped.
func (r *Room) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case r.mailbox <- func() { fn(); close(done) }:
	case <-r.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-r.quit:
		return false
	}
}

// Join registers the connection as a participant, assigning its default
// label, a cursor color, and a fresh lastSeen. Re-joining is a no-op that
// returns the current snapshot without duplicating the entry; only a real
// join is announced to the existing members.
func (r *Room) Join(c *Client, label string) (models.RoomSnapshot, bool) {
	var snap models.RoomSnapshot
	ok := r.do(func() {
		if _, exists := r.participants[c.ID]; !exists {
			name := label
			if name == "" {
				name = defaultLabel
			}
			r.participants[c.ID] = &models.Participant{
				ConnectionID: c.ID,
				Label:        name,
				Color:        colorFor(len(r.participants)),
				LastSeen:     r.now(),
			}
			r.clients[c.ID] = c
			r.lastActive = r.now()
			r.presence.announceJoin(r.clients, r.ID, c.ID, membersOf(r.participants, ""))
		}
		snap = r.snapshotFor(c.ID)
	})
	return snap, ok
}

// Leave removes the connection and tells the remaining members. Safe to
// call for a connection that is not a member. Returns the number of
// participants left so the hub can evict empty rooms.
func (r *Room) Leave(connID string) (remaining int, wasMember bool) {
	r.do(func() {
		if _, ok := r.participants[connID]; ok {
			delete(r.participants, connID)
			delete(r.clients, connID)
			wasMember = true
			r.lastActive = r.now()
			r.presence.announceLeave(r.clients, r.ID, connID)
		}
		remaining = len(r.participants)
	})
	return remaining, wasMember
}

// ApplyEdit replaces the document wholesale and broadcasts the new content
// to every other participant. Last writer wins: racing edits from other
// participants are overwritten, never merged. The returned sequence
// number identifies the accepted edit for auditing.
func (r *Room) ApplyEdit(connID, code string) (seq int64, accepted bool) {
	r.do(func() {
		if _, ok := r.participants[connID]; !ok {
			return
		}
		r.code = code
		r.seq++
		seq = r.seq
		r.touch(connID)
		r.dispatch.Fanout(r.clients, models.WSFrame{
			Event: models.EventCodeUpdate,
			Data:  code,
		}, connID)
		accepted = true
	})
	return seq, accepted
}

// UpdateCursor records the participant's position and relays it to the
// other members. Positions are never validated against the document; an
// out-of-range cursor is passed through for the client to clamp visually.
func (r *Room) UpdateCursor(connID string, cur models.CursorChange) bool {
	accepted := false
	r.do(func() {
		p, ok := r.participants[connID]
		if !ok {
			return
		}
		pos := cur.Position
		p.Cursor = &pos
		if cur.Label != "" {
			p.Label = cur.Label
		}
		if cur.Color != "" {
			p.Color = cur.Color
		}
		r.touch(connID)
		r.dispatch.Fanout(r.clients, models.WSFrame{
			Event: models.EventCursorUpdate,
			Data: models.CursorChange{
				UserID:   cur.UserID,
				Position: cur.Position,
				Color:    cur.Color,
				Label:    cur.Label,
			},
		}, connID)
		accepted = true
	})
	return accepted
}

// SetLanguage replaces the room's language tag and notifies the other
// members. The document is left untouched: resetting to starter code on a
// language switch is front-end policy, not a server guarantee.
func (r *Room) SetLanguage(connID string, lang models.Language) bool {
	if lang == "" {
		return false
	}
	changed := false
	r.do(func() {
		r.language = lang
		r.lastActive = r.now()
		if connID != "" {
			r.touch(connID)
		}
		r.dispatch.Fanout(r.clients, models.WSFrame{
			Event: models.EventLanguageUpdate,
			Data:  models.LanguageChange{RoomID: r.ID, Language: lang},
		}, connID)
		changed = true
	})
	return changed
}

// Snapshot returns the current document state and the full member list.
func (r *Room) Snapshot() models.RoomSnapshot {
	var snap models.RoomSnapshot
	r.do(func() { snap = r.snapshotFor("") })
	return snap
}

func (r *Room) Status() models.RoomStatus {
	var st models.RoomStatus
	r.do(func() {
		st = models.RoomStatus{
			RoomID:       r.ID,
			Language:     r.language,
			Participants: len(r.participants),
			LastActive:   r.lastActive.UTC().Format(time.RFC3339),
		}
	})
	return st
}

// Participants returns a copy of the participant set.
func (r *Room) Participants() []models.Participant {
	var out []models.Participant
	r.do(func() {
		out = make([]models.Participant, 0, len(r.participants))
		for _, p := range r.participants {
			out = append(out, *p)
		}
	})
	return out
}

// Idle lists participants whose lastSeen is older than maxAge.
func (r *Room) Idle(maxAge time.Duration) []string {
	var out []string
	r.do(func() {
		cutoff := r.now().Add(-maxAge)
		for id, p := range r.participants {
			if p.LastSeen.Before(cutoff) {
				out = append(out, id)
			}
		}
	})
	return out
}

func (r *Room) ClientCount() int {
	count := 0
	r.do(func() { count = len(r.participants) })
	return count
}

// snapshotFor runs on the room goroutine. Members excludes the requester so
// a joiner can seed its presence view directly from the list.
func (r *Room) snapshotFor(requester string) models.RoomSnapshot {
	return models.RoomSnapshot{
		RoomID:   r.ID,
		Code:     r.code,
		Language: r.language,
		Seq:      r.seq,
		Members:  membersOf(r.participants, requester),
	}
}

func (r *Room) touch(connID string) {
	if p, ok := r.participants[connID]; ok {
		p.LastSeen = r.now()
	}
	r.lastActive = r.now()
}
