package audit

import "time"

type Action string

const (
	ActionAttendanceAutoAbsent   Action = "ATTENDANCE_AUTO_ABSENT"
	ActionAttendanceManualAbsent Action = "ATTENDANCE_MANUAL_ABSENT"
)

type ResourceType string

const (
	ResourceAttendance ResourceType = "ATTENDANCE"
)

// Sentinel request metadata for entries written without an HTTP request behind them.
const (
	SystemIPAddress = "system"
	SystemUserAgent = "attendance-absence-scheduler"
)

type ActorKind string

const (
	ActorSystem ActorKind = "SYSTEM"
	ActorHuman  ActorKind = "USER"
)

// Actor identifies who caused an audited change. UserID is only set for human actors.
type Actor struct {
	Kind   ActorKind
	UserID string
}

func SystemActor() Actor {
	return Actor{Kind: ActorSystem}
}

func HumanActor(userID string) Actor {
	return Actor{Kind: ActorHuman, UserID: userID}
}

func (a Actor) IsSystem() bool {
	return a.Kind == ActorSystem
}

// UserIDPtr returns nil for system actors so storage never sees a fake user reference.
func (a Actor) UserIDPtr() *string {
	if a.IsSystem() || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

type Entry struct {
	ID           string
	Actor        Actor
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	OldValues    map[string]any
	NewValues    map[string]any
	IPAddress    string
	UserAgent    string
	Timestamp    time.Time
}
