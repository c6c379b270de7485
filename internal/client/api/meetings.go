package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/minutes/internal/models"
)

func (c *Client) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	var out []models.Meeting
	if err := c.call(ctx, http.MethodGet, "/api/meetings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	var out models.Meeting
	if err := c.call(ctx, http.MethodGet, "/api/meetings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSummary(ctx context.Context, meetingID string) (*models.Summary, error) {
	var out models.Summary
	if err := c.call(ctx, http.MethodGet, "/api/meetings/"+url.PathEscape(meetingID)+"/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTranscriptURL returns a short-lived link to the transcript object.
func (c *Client) GetTranscriptURL(ctx context.Context, meetingID string) (*models.TranscriptLink, error) {
	var out models.TranscriptLink
	if err := c.call(ctx, http.MethodGet, "/api/meetings/"+url.PathEscape(meetingID)+"/transcript", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks returns all tasks, or only those of one meeting when meetingID
// is not empty.
func (c *Client) ListTasks(ctx context.Context, meetingID string) ([]models.Task, error) {
	path := "/api/tasks"
	if meetingID != "" {
		path += "?" + url.Values{"meetingId": {meetingID}}.Encode()
	}
	var out []models.Task
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetTaskDone(ctx context.Context, id string, done bool) (*models.Task, error) {
	in := struct {
		Done bool `json:"done"`
	}{Done: done}

	var out models.Task
	if err := c.call(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListIntegrations(ctx context.Context) ([]models.Integration, error) {
	var out []models.Integration
	if err := c.call(ctx, http.MethodGet, "/api/integrations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAutomations(ctx context.Context) ([]models.Automation, error) {
	var out []models.Automation
	if err := c.call(ctx, http.MethodGet, "/api/automations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAccount(ctx context.Context) (*models.Account, error) {
	var out models.Account
	if err := c.call(ctx, http.MethodGet, "/api/account", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
