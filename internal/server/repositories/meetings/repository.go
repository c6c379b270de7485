// Package meetings provides read access to a user's meetings, their
// summaries and action items. Every query is scoped to the owning user; rows
// of other users behave as missing.
package meetings

import (
	"context"

	"github.com/dmitrijs2005/minutes/internal/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]models.Meeting, error)
	Get(ctx context.Context, userID, id string) (*models.Meeting, error)
	// TranscriptKey returns the object storage key of the transcript, or
	// common.ErrorNotFound when the meeting has none.
	TranscriptKey(ctx context.Context, userID, id string) (string, error)
	GetSummary(ctx context.Context, userID, meetingID string) (*models.Summary, error)
	// ListTasks lists tasks of every meeting when meetingID is empty.
	ListTasks(ctx context.Context, userID, meetingID string) ([]models.Task, error)
	SetTaskDone(ctx context.Context, userID, taskID string, done bool) (*models.Task, error)
}
