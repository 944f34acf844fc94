package routers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sirivellaramudu/code-collab-server/internal/api"
	"github.com/sirivellaramudu/code-collab-server/internal/config"
	"github.com/sirivellaramudu/code-collab-server/internal/models"
	"github.com/sirivellaramudu/code-collab-server/internal/session"
	"github.com/sirivellaramudu/code-collab-server/internal/utils"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := utils.NewLogger()
	hub := session.NewHub(log)
	h := api.NewHandlers(log, hub, nil, nil)
	server := httptest.NewServer(New(config.Default(), h))
	t.Cleanup(server.Close)
	return server
}

func TestHealthRoutes(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/healthz", "/api/v1/healthz"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(body) != "ok" {
			t.Fatalf("GET %s: status %d body %q", path, resp.StatusCode, body)
		}
	}
}

func TestLanguagesRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/languages")
	if err != nil {
		t.Fatalf("GET languages: %v", err)
	}
	defer resp.Body.Close()

	var langs []models.Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		t.Fatalf("decode languages: %v", err)
	}
	if len(langs) == 0 {
		t.Fatalf("expected supported languages listed")
	}
}

func TestUnknownRoomRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/rooms/nope")
	if err != nil {
		t.Fatalf("GET room: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", resp.StatusCode)
	}
}

func TestWebsocketRouteUpgrades(t *testing.T) {
	server := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(models.WSFrame{
		Event: models.EventJoinRoom,
		Data:  models.JoinRoomRequest{RoomID: "r1"},
	}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame models.WSFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read room-joined: %v", err)
	}
	if frame.Event != models.EventRoomJoined {
		t.Fatalf("expected room-joined, got %q", frame.Event)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/languages", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin allowed, got %q", got)
	}
}
