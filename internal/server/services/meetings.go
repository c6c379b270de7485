package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/models"
	"github.com/dmitrijs2005/minutes/internal/server/config"
	"github.com/dmitrijs2005/minutes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// MeetingService serves the read side of the workspace to an authenticated
// user. Every lookup is scoped by userID; rows owned by someone else are
// reported as common.ErrorNotFound.
type MeetingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	now         func() time.Time
}

func NewMeetingService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *MeetingService {
	return &MeetingService{db: db, repomanager: m, config: cfg, now: time.Now}
}

// validID rejects malformed ids before they reach the uuid columns.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

func (s *MeetingService) List(ctx context.Context, userID string) ([]models.Meeting, error) {
	return s.repomanager.Meetings(s.db).List(ctx, userID)
}

func (s *MeetingService) Get(ctx context.Context, userID, id string) (*models.Meeting, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Meetings(s.db).Get(ctx, userID, id)
}

func (s *MeetingService) Summary(ctx context.Context, userID, meetingID string) (*models.Summary, error) {
	if err := validID(meetingID); err != nil {
		return nil, err
	}
	return s.repomanager.Meetings(s.db).GetSummary(ctx, userID, meetingID)
}

// Tasks lists action items of one meeting, or of all meetings when
// meetingID is empty.
func (s *MeetingService) Tasks(ctx context.Context, userID, meetingID string) ([]models.Task, error) {
	if meetingID != "" {
		if err := validID(meetingID); err != nil {
			return nil, err
		}
	}
	return s.repomanager.Meetings(s.db).ListTasks(ctx, userID, meetingID)
}

func (s *MeetingService) SetTaskDone(ctx context.Context, userID, taskID string, done bool) (*models.Task, error) {
	if err := validID(taskID); err != nil {
		return nil, err
	}
	return s.repomanager.Meetings(s.db).SetTaskDone(ctx, userID, taskID, done)
}

func (s *MeetingService) Integrations(ctx context.Context, userID string) ([]models.Integration, error) {
	return s.repomanager.Workspace(s.db).ListIntegrations(ctx, userID)
}

func (s *MeetingService) Automations(ctx context.Context, userID string) ([]models.Automation, error) {
	return s.repomanager.Workspace(s.db).ListAutomations(ctx, userID)
}

func (s *MeetingService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// TranscriptURL returns a presigned download link for the meeting transcript.
func (s *MeetingService) TranscriptURL(ctx context.Context, userID, meetingID string) (*models.TranscriptLink, error) {
	if err := validID(meetingID); err != nil {
		return nil, err
	}

	key, err := s.repomanager.Meetings(s.db).TranscriptKey(ctx, userID, meetingID)
	if err != nil {
		return nil, err
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	ttl := s.config.TranscriptURLTTL
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("error presigning transcript: %w", err)
	}

	return &models.TranscriptLink{
		MeetingID: meetingID,
		URL:       req.URL,
		ExpiresAt: s.now().Add(ttl),
	}, nil
}
