package meetings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/models"
	"github.com/jackc/pgx/v5/pgtype"
)

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

type scanner interface {
	Scan(dest ...any) error
}

const meetingColumns = `m.id, m.title, m.started_at, m.ended_at, m.participants, m.platform, m.status, m.transcript_key IS NOT NULL`

func (r *PostgresRepository) scanMeeting(row scanner) (*models.Meeting, error) {
	m := &models.Meeting{}
	var status string
	if err := row.Scan(&m.ID, &m.Title, &m.StartedAt, &m.EndedAt,
		r.types.SQLScanner(&m.Participants), &m.Platform, &status, &m.HasTranscript); err != nil {
		return nil, err
	}
	m.Status = models.MeetingStatus(status)
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings m
		WHERE m.user_id = $1
		ORDER BY m.started_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Meeting{}
	for rows.Next() {
		m, err := r.scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings m
		WHERE m.user_id = $1 AND m.id = $2
	`
	m, err := r.scanMeeting(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return m, nil
}

func (r *PostgresRepository) TranscriptKey(ctx context.Context, userID, id string) (string, error) {
	query := `
		SELECT m.transcript_key
		FROM meetings m
		WHERE m.user_id = $1 AND m.id = $2
	`
	var key sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID, id).Scan(&key); err != nil {
		return "", notFoundOr(err)
	}
	if !key.Valid || key.String == "" {
		return "", common.ErrorNotFound
	}
	return key.String, nil
}

func (r *PostgresRepository) GetSummary(ctx context.Context, userID, meetingID string) (*models.Summary, error) {
	query := `
		SELECT s.meeting_id, s.overview, s.key_points, s.decisions, s.generated_at
		FROM summaries s
		JOIN meetings m ON m.id = s.meeting_id
		WHERE m.user_id = $1 AND s.meeting_id = $2
	`
	s := &models.Summary{}
	err := r.db.QueryRowContext(ctx, query, userID, meetingID).Scan(&s.MeetingID, &s.Overview,
		r.types.SQLScanner(&s.KeyPoints), r.types.SQLScanner(&s.Decisions), &s.GeneratedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s, nil
}

const taskColumns = `t.id, t.meeting_id, t.title, t.assignee, t.due_date, t.done`

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullTime
	if err := row.Scan(&t.ID, &t.MeetingID, &t.Title, &t.Assignee, &due, &t.Done); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, userID, meetingID string) ([]models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN meetings m ON m.id = t.meeting_id
		WHERE m.user_id = $1 AND ($2 = '' OR t.meeting_id::text = $2)
		ORDER BY t.done, t.due_date NULLS LAST, t.title
	`
	rows, err := r.db.QueryContext(ctx, query, userID, meetingID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SetTaskDone(ctx context.Context, userID, taskID string, done bool) (*models.Task, error) {
	query := `
		UPDATE tasks t SET done = $3
		FROM meetings m
		WHERE m.id = t.meeting_id AND m.user_id = $1 AND t.id = $2
		RETURNING ` + taskColumns + `
	`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, userID, taskID, done))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return t, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
