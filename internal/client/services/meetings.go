package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/minutes/internal/client/api"
	"github.com/dmitrijs2005/minutes/internal/client/repositories/meetings"
	"github.com/dmitrijs2005/minutes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/dmitrijs2005/minutes/internal/models"
)

// MeetingsClient is the part of api.Client used by MeetingService.
type MeetingsClient interface {
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	GetSummary(ctx context.Context, meetingID string) (*models.Summary, error)
	GetTranscriptURL(ctx context.Context, meetingID string) (*models.TranscriptLink, error)
	DownloadTranscript(ctx context.Context, link string) ([]byte, error)
	ListTasks(ctx context.Context, meetingID string) ([]models.Task, error)
	SetTaskDone(ctx context.Context, id string, done bool) (*models.Task, error)
	ListIntegrations(ctx context.Context) ([]models.Integration, error)
	ListAutomations(ctx context.Context) ([]models.Automation, error)
	GetAccount(ctx context.Context) (*models.Account, error)
}

// ErrOfflineMiss is returned when the server is unavailable and the record
// is not in the offline cache either.
var ErrOfflineMiss = fmt.Errorf("%w: no cached copy", api.ErrUnavailable)

// MeetingService reads meetings data from the server and mirrors it into the
// local cache. When the server is unavailable, cached copies are served and
// the offline flag is set. Authorization failures are never masked by the
// cache.
type MeetingService interface {
	List(ctx context.Context) ([]models.Meeting, bool, error)
	Get(ctx context.Context, id string) (*models.Meeting, bool, error)
	Summary(ctx context.Context, meetingID string) (*models.Summary, bool, error)
	Tasks(ctx context.Context, meetingID string) ([]models.Task, bool, error)
	SetTaskDone(ctx context.Context, id string, done bool) (*models.Task, error)
	Transcript(ctx context.Context, meetingID string) ([]byte, error)
	Integrations(ctx context.Context) ([]models.Integration, error)
	Automations(ctx context.Context) ([]models.Automation, error)
	Account(ctx context.Context) (*models.Account, error)
	// LastSync reports when the meeting list was last fetched from the server.
	LastSync(ctx context.Context) (time.Time, error)
}

type meetingService struct {
	client   MeetingsClient
	cache    meetings.Repository
	metadata metadata.Repository
	logger   logging.Logger
	now      func() time.Time
}

func NewMeetingService(client MeetingsClient, cache meetings.Repository, md metadata.Repository, logger logging.Logger) MeetingService {
	return &meetingService{
		client:   client,
		cache:    cache,
		metadata: md,
		logger:   logger.With("module", "meeting_service"),
		now:      time.Now,
	}
}

func (s *meetingService) List(ctx context.Context) ([]models.Meeting, bool, error) {
	list, err := s.client.ListMeetings(ctx)
	if err == nil {
		if cerr := s.cache.ReplaceMeetings(ctx, list); cerr != nil {
			s.logger.Warn(ctx, "cannot cache meetings", "error", cerr)
		}
		if merr := s.metadata.Set(ctx, metadata.KeyLastSync, strconv.FormatInt(s.now().UnixMilli(), 10)); merr != nil {
			s.logger.Warn(ctx, "cannot save sync time", "error", merr)
		}
		return list, false, nil
	}
	if !errors.Is(err, api.ErrUnavailable) {
		return nil, false, err
	}

	s.logger.Info(ctx, "server unavailable, serving cached meetings")
	cached, cerr := s.cache.ListMeetings(ctx)
	if cerr != nil {
		return nil, true, errors.Join(err, cerr)
	}
	return cached, true, nil
}

func (s *meetingService) Get(ctx context.Context, id string) (*models.Meeting, bool, error) {
	m, err := s.client.GetMeeting(ctx, id)
	if err == nil {
		if cerr := s.cache.SaveMeeting(ctx, m); cerr != nil {
			s.logger.Warn(ctx, "cannot cache meeting", "id", id, "error", cerr)
		}
		return m, false, nil
	}
	if !errors.Is(err, api.ErrUnavailable) {
		return nil, false, err
	}
	m, cerr := s.cache.GetMeeting(ctx, id)
	return offline(m, err, cerr)
}

func (s *meetingService) Summary(ctx context.Context, meetingID string) (*models.Summary, bool, error) {
	sum, err := s.client.GetSummary(ctx, meetingID)
	if err == nil {
		if cerr := s.cache.SaveSummary(ctx, sum); cerr != nil {
			s.logger.Warn(ctx, "cannot cache summary", "meeting_id", meetingID, "error", cerr)
		}
		return sum, false, nil
	}
	if !errors.Is(err, api.ErrUnavailable) {
		return nil, false, err
	}
	sum, cerr := s.cache.GetSummary(ctx, meetingID)
	return offline(sum, err, cerr)
}

func (s *meetingService) Tasks(ctx context.Context, meetingID string) ([]models.Task, bool, error) {
	tasks, err := s.client.ListTasks(ctx, meetingID)
	if err == nil {
		if cerr := s.cache.ReplaceTasks(ctx, meetingID, tasks); cerr != nil {
			s.logger.Warn(ctx, "cannot cache tasks", "error", cerr)
		}
		return tasks, false, nil
	}
	if !errors.Is(err, api.ErrUnavailable) {
		return nil, false, err
	}
	cached, cerr := s.cache.ListTasks(ctx, meetingID)
	if cerr != nil {
		return nil, true, errors.Join(err, cerr)
	}
	return cached, true, nil
}

// SetTaskDone needs the server; there is no offline write queue.
func (s *meetingService) SetTaskDone(ctx context.Context, id string, done bool) (*models.Task, error) {
	task, err := s.client.SetTaskDone(ctx, id, done)
	if err != nil {
		return nil, err
	}
	if cerr := s.cache.SaveTask(ctx, task); cerr != nil {
		s.logger.Warn(ctx, "cannot cache task", "id", id, "error", cerr)
	}
	return task, nil
}

func (s *meetingService) Transcript(ctx context.Context, meetingID string) ([]byte, error) {
	link, err := s.client.GetTranscriptURL(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return s.client.DownloadTranscript(ctx, link.URL)
}

func (s *meetingService) Integrations(ctx context.Context) ([]models.Integration, error) {
	return s.client.ListIntegrations(ctx)
}

func (s *meetingService) Automations(ctx context.Context) ([]models.Automation, error) {
	return s.client.ListAutomations(ctx)
}

func (s *meetingService) Account(ctx context.Context) (*models.Account, error) {
	return s.client.GetAccount(ctx)
}

func (s *meetingService) LastSync(ctx context.Context) (time.Time, error) {
	raw, err := s.metadata.Get(ctx, metadata.KeyLastSync)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func offline[T any](v *T, remoteErr, cacheErr error) (*T, bool, error) {
	if errors.Is(cacheErr, common.ErrorNotFound) {
		return nil, true, ErrOfflineMiss
	}
	if cacheErr != nil {
		return nil, true, errors.Join(remoteErr, cacheErr)
	}
	return v, true, nil
}
