// Package meetings caches meetings, summaries and tasks fetched from the
// server so the CLI can show them while offline. Records are stored as JSON
// blobs keyed by id; the server stays the source of truth.
package meetings

import (
	"context"

	"github.com/dmitrijs2005/minutes/internal/models"
)

type Repository interface {
	// ReplaceMeetings swaps the cached meeting list for meetings.
	ReplaceMeetings(ctx context.Context, meetings []models.Meeting) error
	// ListMeetings returns cached meetings, most recent first.
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	// GetMeeting returns common.ErrorNotFound if id is not cached.
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	SaveMeeting(ctx context.Context, m *models.Meeting) error

	SaveSummary(ctx context.Context, s *models.Summary) error
	GetSummary(ctx context.Context, meetingID string) (*models.Summary, error)

	// ReplaceTasks swaps cached tasks; with a non-empty meetingID only that
	// meeting's tasks are replaced.
	ReplaceTasks(ctx context.Context, meetingID string, tasks []models.Task) error
	ListTasks(ctx context.Context, meetingID string) ([]models.Task, error)
	SaveTask(ctx context.Context, t *models.Task) error

	Clear(ctx context.Context) error
}
