package meetings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/dbx"
	"github.com/dmitrijs2005/minutes/internal/models"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceMeetings(ctx context.Context, meetings []models.Meeting) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM meetings`); err != nil {
			return fmt.Errorf("failed to clear meetings: %w", err)
		}
		for i := range meetings {
			if err := upsertMeeting(ctx, tx, &meetings[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveMeeting(ctx context.Context, m *models.Meeting) error {
	return upsertMeeting(ctx, r.db, m)
}

func upsertMeeting(ctx context.Context, db dbx.DBTX, m *models.Meeting) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO meetings (id, started_at, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, data = excluded.data
	`, m.ID, m.StartedAt.UnixMilli(), data)
	if err != nil {
		return fmt.Errorf("failed to save meeting %s: %w", m.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM meetings ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select meetings: %w", err)
	}
	return scanAll[models.Meeting](rows)
}

func (r *SQLiteRepository) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	var m models.Meeting
	if err := r.getJSON(ctx, `SELECT data FROM meetings WHERE id = ?`, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteRepository) SaveSummary(ctx context.Context, s *models.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO summaries (meeting_id, data) VALUES (?, ?)
		ON CONFLICT(meeting_id) DO UPDATE SET data = excluded.data
	`, s.MeetingID, data)
	if err != nil {
		return fmt.Errorf("failed to save summary %s: %w", s.MeetingID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetSummary(ctx context.Context, meetingID string) (*models.Summary, error) {
	var s models.Summary
	if err := r.getJSON(ctx, `SELECT data FROM summaries WHERE meeting_id = ?`, meetingID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) ReplaceTasks(ctx context.Context, meetingID string, tasks []models.Task) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if meetingID == "" {
			_, err = tx.ExecContext(ctx, `DELETE FROM tasks`)
		} else {
			_, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE meeting_id = ?`, meetingID)
		}
		if err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		for i := range tasks {
			if err := upsertTask(ctx, tx, &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveTask(ctx context.Context, t *models.Task) error {
	return upsertTask(ctx, r.db, t)
}

func upsertTask(ctx context.Context, db dbx.DBTX, t *models.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO tasks (id, meeting_id, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET meeting_id = excluded.meeting_id, data = excluded.data
	`, t.ID, t.MeetingID, data)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, meetingID string) ([]models.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if meetingID == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT data FROM tasks ORDER BY meeting_id, id`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT data FROM tasks WHERE meeting_id = ? ORDER BY id`, meetingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	return scanAll[models.Task](rows)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"meetings", "summaries", "tasks"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) getJSON(ctx context.Context, query, id string, out any) error {
	var data []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", id, err)
	}
	return json.Unmarshal(data, out)
}

func scanAll[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
