// Package models defines the records exchanged between the Minutes API and
// its clients. They are plain data: no behaviour is attached.
package models

import "time"

type MeetingStatus string

const (
	MeetingScheduled  MeetingStatus = "scheduled"
	MeetingProcessing MeetingStatus = "processing"
	MeetingReady      MeetingStatus = "ready"
	MeetingFailed     MeetingStatus = "failed"
)

// Meeting is a recorded meeting. HasTranscript reports whether a transcript
// object exists in storage.
type Meeting struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
	Participants  []string      `json:"participants"`
	Platform      string        `json:"platform"`
	Status        MeetingStatus `json:"status"`
	HasTranscript bool          `json:"hasTranscript"`
}

// Duration is zero for meetings that have not ended.
func (m Meeting) Duration() time.Duration {
	if m.EndedAt == nil {
		return 0
	}
	return m.EndedAt.Sub(m.StartedAt)
}

type Summary struct {
	MeetingID   string    `json:"meetingId"`
	Overview    string    `json:"overview"`
	KeyPoints   []string  `json:"keyPoints"`
	Decisions   []string  `json:"decisions"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Task is an action item extracted from a meeting.
type Task struct {
	ID        string     `json:"id"`
	MeetingID string     `json:"meetingId"`
	Title     string     `json:"title"`
	Assignee  string     `json:"assignee,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Done      bool       `json:"done"`
}

type Automation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
	Action  string `json:"action"`
	Enabled bool   `json:"enabled"`
}

// Integration is a connection to a third-party provider (calendar, video
// platform, task tracker).
type Integration struct {
	ID          string     `json:"id"`
	Provider    string     `json:"provider"`
	Connected   bool       `json:"connected"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
}

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// TranscriptLink is a short-lived download URL for a meeting transcript.
type TranscriptLink struct {
	MeetingID string    `json:"meetingId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
