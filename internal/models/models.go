package models

import "time"

type Language string

const (
	LangPython3 Language = "python3"
	LangJava    Language = "java"
	LangC       Language = "c"
	LangCPP     Language = "cpp"
)

// DefaultLanguage is used when a join request carries no language tag.
const DefaultLanguage = LangPython3

func KnownLanguages() []Language {
	return []Language{LangPython3, LangJava, LangC, LangCPP}
}

/*** Wire protocol ***/

// Event names carried in WSFrame.Event. Client-to-server and
// server-to-client names mirror each other (change -> update).
const (
	EventJoinRoom       = "join-room"
	EventRoomJoined     = "room-joined"
	EventCodeChange     = "code-change"
	EventCodeUpdate     = "code-update"
	EventCursorChange   = "cursor-change"
	EventCursorUpdate   = "cursor-update"
	EventLanguageChange = "language-change"
	EventLanguageUpdate = "language-update"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventError          = "error"
)

type WSFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinRoomRequest struct {
	RoomID   string   `json:"roomId"`
	Language Language `json:"language,omitempty"`
}

type RoomJoinedResponse struct {
	RoomID   string   `json:"roomId"`
	Success  bool     `json:"success"`
	Members  []string `json:"members"`
	Language Language `json:"language,omitempty"`
	Code     string   `json:"code"`
}

type CodeChange struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

// CursorChange is relayed to the other room members verbatim as a
// cursor-update; the server never validates Position against the document.
type CursorChange struct {
	RoomID   string         `json:"roomId,omitempty"`
	UserID   string         `json:"userId"`
	Position CursorPosition `json:"position"`
	Color    string         `json:"color,omitempty"`
	Label    string         `json:"label,omitempty"`
}

type LanguageChange struct {
	RoomID   string   `json:"roomId,omitempty"`
	Language Language `json:"language"`
}

type UserJoined struct {
	UserID  string   `json:"userId"`
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
}

type UserLeft struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

/*** Collaboration session state ***/

type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Participant is one connected client's presence state within a room.
type Participant struct {
	ConnectionID string          `json:"connectionId"`
	Label        string          `json:"label"`
	Color        string          `json:"color"`
	Cursor       *CursorPosition `json:"cursor,omitempty"`
	LastSeen     time.Time       `json:"lastSeen"`
}

// RoomSnapshot is what a joining connection receives to seed its view.
type RoomSnapshot struct {
	RoomID   string   `json:"roomId"`
	Code     string   `json:"code"`
	Language Language `json:"language"`
	Seq      int64    `json:"seq"`
	// Members lists the other participants' connection ids.
	Members []string `json:"members"`
}

// RoomStatus is the directory-facing view of a live room.
type RoomStatus struct {
	RoomID       string   `json:"roomId"`
	Language     Language `json:"language"`
	Participants int      `json:"participants"`
	LastActive   string   `json:"lastActive"`
}

/*** Code execution (external sandbox, call-and-response) ***/

type ExecuteRequest struct {
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
}

type ExecuteResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}
