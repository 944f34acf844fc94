package session

import (
	"sort"

	"github.com/sirivellaramudu/code-collab-server/internal/models"
)

// defaultLabel is the placeholder display name until an identity is supplied.
const defaultLabel = "User"

var cursorPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c",
}

func colorFor(n int) string {
	if n < 0 {
		n = 0
	}
	return cursorPalette[n%len(cursorPalette)]
}

// presence turns membership transitions into user-joined / user-left
// notifications. It owns no state; the room invokes it from its own
// goroutine on every transition.
type presence struct {
	dispatch Dispatcher
}

func (p presence) announceJoin(clients map[string]*Client, roomID, joinerID string, members []string) {
	p.dispatch.Fanout(clients, models.WSFrame{
		Event: models.EventUserJoined,
		Data:  models.UserJoined{UserID: joinerID, RoomID: roomID, Members: members},
	}, joinerID)
}

func (p presence) announceLeave(clients map[string]*Client, roomID, leaverID string) {
	p.dispatch.Fanout(clients, models.WSFrame{
		Event: models.EventUserLeft,
		Data:  models.UserLeft{UserID: leaverID, RoomID: roomID},
	}, leaverID)
}

// membersOf lists participant connection ids, excluding one (pass "" to keep
// all). Sorted so presence payloads are deterministic.
func membersOf(participants map[string]*models.Participant, exclude string) []string {
	out := make([]string, 0, len(participants))
	for id := range participants {
		if id == exclude {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
