package session

import "github.com/sirivellaramudu/code-collab-server/internal/models"

// Dispatcher fans a frame out to room members, optionally excluding the
// originator so a sender never receives its own event back. It must be
// invoked from the owning room's goroutine: recipients then observe frames
// in the order the room accepted them.
type Dispatcher struct{}

// Fanout queues frame on every client except excludeID and reports how many
// recipients it reached. Clients that have already disconnected drop the
// frame silently.
func (Dispatcher) Fanout(clients map[string]*Client, frame models.WSFrame, excludeID string) int {
	n := 0
	for id, c := range clients {
		if id == excludeID {
			continue
		}
		c.Send(frame)
		n++
	}
	return n
}
