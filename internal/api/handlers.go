package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sirivellaramudu/code-collab-server/internal/directory"
	"github.com/sirivellaramudu/code-collab-server/internal/exec"
	"github.com/sirivellaramudu/code-collab-server/internal/models"
	"github.com/sirivellaramudu/code-collab-server/internal/session"
	"github.com/sirivellaramudu/code-collab-server/internal/utils"
)

type runner interface {
	Execute(ctx context.Context, script, language, versionIndex string) (string, error)
}

type statusDirectory interface {
	GetRoomStatus(ctx context.Context, roomID string) (*models.RoomStatus, error)
}

type Handlers struct {
	log       *utils.Logger
	hub       *session.Hub
	runner    runner
	directory statusDirectory
}

// NewHandlers wires the REST and WebSocket surface. directory may be nil
// when the service runs without Redis.
func NewHandlers(log *utils.Logger, hub *session.Hub, r runner, dir statusDirectory) *Handlers {
	return &Handlers{log: log, hub: hub, runner: r, directory: dir}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, models.KnownLanguages())
}

// GetRoomStatus reports a room's language and participant count, answering
// from the live hub first and falling back to the shared directory for
// rooms hosted elsewhere.
func (h *Handlers) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	if room, ok := h.hub.Room(roomID); ok {
		writeJSON(w, room.Status())
		return
	}

	if h.directory != nil {
		status, err := h.directory.GetRoomStatus(r.Context(), roomID)
		if err == nil {
			writeJSON(w, status)
			return
		}
		if !errors.Is(err, directory.ErrRoomNotFound) {
			h.log.Warn("room status lookup failed", "room", roomID, "error", err.Error())
		}
	}

	http.Error(w, "room not found", http.StatusNotFound)
}

// ExecuteCode proxies a script to the external sandbox. Execution is gated
// on a valid identity token; sandbox failures come back as an opaque
// execution error and never affect room state.
func (h *Handlers) ExecuteCode(w http.ResponseWriter, r *http.Request) {
	token, err := utils.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	claims, err := utils.ValidateIdentityToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req models.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Script == "" || req.Language == "" {
		http.Error(w, "script and language are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	output, err := h.runner.Execute(ctx, req.Script, req.Language, req.VersionIndex)
	if err != nil {
		if errors.Is(err, exec.ErrSandboxUnavailable) {
			h.log.Error("sandbox unavailable", "user", claims.UserID, "error", err.Error())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			writeJSON(w, models.ExecuteResponse{Error: "execution failed"})
			return
		}
		writeJSON(w, models.ExecuteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, models.ExecuteResponse{Output: output})
}

/*** Collab WebSocket: shared editor sessions ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabWS is the per-connection adapter between the wire protocol and the
// session core. Malformed frames are dropped (optionally logged), never
// fatal; a read error of any kind counts as a disconnect and triggers the
// leave path.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	connID := uuid.NewString()
	label := identityLabel(r)

	client := session.NewClient(connID, conn)
	client.Run()
	defer func() {
		h.hub.LeaveRoom(connID)
		client.Close()
		_ = conn.Close()
	}()

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Event {
		case models.EventJoinRoom:
			var req models.JoinRoomRequest
			if err := decode(frame.Data, &req); err != nil || req.RoomID == "" {
				h.log.Warn("malformed join-room payload dropped", "conn", connID)
				continue
			}
			snap := h.hub.JoinRoom(client, req.RoomID, req.Language, label)
			client.Send(models.WSFrame{
				Event: models.EventRoomJoined,
				Data: models.RoomJoinedResponse{
					RoomID:   snap.RoomID,
					Success:  true,
					Members:  snap.Members,
					Language: snap.Language,
					Code:     snap.Code,
				},
			})

		case models.EventCodeChange:
			var change models.CodeChange
			if err := decode(frame.Data, &change); err != nil {
				h.log.Warn("malformed code-change payload dropped", "conn", connID)
				continue
			}
			room, ok := h.roomForEvent(connID, change.RoomID)
			if !ok {
				continue
			}
			room.ApplyEdit(connID, change.Code)

		case models.EventCursorChange:
			var cur models.CursorChange
			if err := decode(frame.Data, &cur); err != nil {
				h.log.Warn("malformed cursor-change payload dropped", "conn", connID)
				continue
			}
			room, ok := h.roomForEvent(connID, cur.RoomID)
			if !ok {
				continue
			}
			room.UpdateCursor(connID, cur)

		case models.EventLanguageChange:
			var change models.LanguageChange
			if err := decode(frame.Data, &change); err != nil || change.Language == "" {
				h.log.Warn("malformed language-change payload dropped", "conn", connID)
				continue
			}
			room, ok := h.roomForEvent(connID, change.RoomID)
			if !ok {
				continue
			}
			room.SetLanguage(connID, change.Language)

		default:
			client.Send(errFrame("unknown_event"))
		}
	}
}

// roomForEvent resolves the sender's current room and checks the event's
// roomId against it. A missing roomId, a sender that never joined, and a
// roomId other than the joined room are all protocol errors and dropped.
func (h *Handlers) roomForEvent(connID, roomID string) (*session.Room, bool) {
	if roomID == "" {
		h.log.Warn("event without roomId dropped", "conn", connID)
		return nil, false
	}
	room, ok := h.hub.RoomFor(connID)
	if !ok {
		h.log.Warn("event from connection outside any room dropped", "conn", connID)
		return nil, false
	}
	if roomID != room.ID {
		h.log.Warn("event for mismatched room dropped", "conn", connID, "room", roomID)
		return nil, false
	}
	return room, true
}

// identityLabel extracts a display name from an optional identity token,
// accepted as a bearer header or a token query parameter (browser
// websocket clients cannot set headers). Anonymous connections keep the
// placeholder label.
func identityLabel(r *http.Request) string {
	token, err := utils.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return ""
	}
	claims, err := utils.ValidateIdentityToken(token)
	if err != nil {
		return ""
	}
	if claims.DisplayName != "" {
		return claims.DisplayName
	}
	if claims.Email != "" {
		return claims.Email
	}
	return ""
}

// decode converts a frame's loosely-typed data into a payload struct. Any
// shape mismatch (non-object data, wrong field types) is an error so the
// caller can drop the frame instead of applying zero values.
func decode(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func errFrame(msg string) models.WSFrame { return models.WSFrame{Event: models.EventError, Data: msg} }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
