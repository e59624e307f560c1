package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/presence"
)

// ReportPresenceRequest is one heartbeat
type ReportPresenceRequest struct {
	View string `json:"view" binding:"max=100" example:"mixer"`
}

// ReportPresenceResponse tells whether the heartbeat was stored.
// The request is accepted either way.
type ReportPresenceResponse struct {
	Reported bool `json:"reported" example:"true"`
}

// PresenceEntry is one user's presence in a project
type PresenceEntry struct {
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName"`
	CurrentView string    `json:"currentView" example:"mixer"`
	LastSeen    time.Time `json:"lastSeen"`
	Status      string    `json:"status" example:"active"`
}

// PresenceResponse lists a project's presence, newest first
type PresenceResponse struct {
	ProjectID   uuid.UUID           `json:"projectId"`
	At          time.Time           `json:"at"`
	Users       []PresenceEntry     `json:"users"`
	ActiveCount int                 `json:"activeCount" example:"2"`
	Editors     map[string][]string `json:"editors"`
}

// StreamViewMessage is sent by a stream client to change its view label
type StreamViewMessage struct {
	View string `json:"view"`
}

// ToPresenceResponse converts a presence snapshot
func ToPresenceResponse(s *presence.Snapshot) *PresenceResponse {
	users := make([]PresenceEntry, 0, len(s.Records))
	for _, r := range s.Records {
		users = append(users, PresenceEntry{
			UserEmail:   r.UserEmail,
			UserName:    r.UserName,
			CurrentView: r.CurrentView,
			LastSeen:    r.LastSeen,
			Status:      string(r.Status),
		})
	}
	return &PresenceResponse{
		ProjectID:   s.ProjectID,
		At:          s.At,
		Users:       users,
		ActiveCount: s.ActiveCount,
		Editors:     s.Editors,
	}
}
