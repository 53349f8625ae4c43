package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/storage"
)

const circleColumns = "id, name, description, visibility, is_filtered, banner_image, icon_image, " +
	"join_questions, member_count, is_official, auto_join, created_by, created_at"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCircle(row rowScanner) (*models.Circle, error) {
	circle := &models.Circle{}
	var (
		visibility string
		questions  string
		createdBy  sql.NullString
	)
	err := row.Scan(
		&circle.ID,
		&circle.Name,
		&circle.Description,
		&visibility,
		&circle.IsFiltered,
		&circle.BannerImage,
		&circle.IconImage,
		&questions,
		&circle.MemberCount,
		&circle.IsOfficial,
		&circle.AutoJoin,
		&createdBy,
		&circle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	circle.Visibility = models.Visibility(visibility)
	if createdBy.Valid {
		circle.CreatedBy = createdBy.String
	}
	if err := json.Unmarshal([]byte(questions), &circle.JoinQuestions); err != nil {
		return nil, fmt.Errorf("failed to decode join questions of circle %s: %w", circle.ID, err)
	}
	if circle.JoinQuestions == nil {
		circle.JoinQuestions = []models.Question{}
	}
	return circle, nil
}

func encodeQuestions(questions []models.Question) (string, error) {
	if questions == nil {
		questions = []models.Question{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("failed to encode join questions: %w", err)
	}
	return string(raw), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListCircles returns every circle, newest first.
func (s *SQLiteStore) ListCircles(ctx context.Context) ([]models.Circle, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+circleColumns+" FROM circles ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	defer rows.Close()

	circles := []models.Circle{}
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, *circle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate circles: %w", err)
	}

	return circles, nil
}

// GetCircle retrieves a circle by ID.
func (s *SQLiteStore) GetCircle(ctx context.Context, circleID string) (*models.Circle, error) {
	circle, err := scanCircle(s.db.QueryRowContext(ctx,
		"SELECT "+circleColumns+" FROM circles WHERE id = ?",
		circleID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return circle, nil
}

// CreateCircle persists a new circle to the database.
func (s *SQLiteStore) CreateCircle(ctx context.Context, circle *models.Circle) error {
	// Generate ID if not set
	if circle.ID == "" {
		circle.ID = uuid.New().String()
	}
	if circle.CreatedAt == 0 {
		circle.CreatedAt = time.Now().Unix()
	}
	if circle.JoinQuestions == nil {
		circle.JoinQuestions = []models.Question{}
	}

	questions, err := encodeQuestions(circle.JoinQuestions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO circles (`+circleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		circle.ID, circle.Name, circle.Description, string(circle.Visibility), circle.IsFiltered,
		circle.BannerImage, circle.IconImage, questions, circle.MemberCount,
		circle.IsOfficial, circle.AutoJoin, nullable(circle.CreatedBy), circle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert circle: %w", err)
	}

	return nil
}

// UpdateCircle replaces the editable fields of a circle.
func (s *SQLiteStore) UpdateCircle(ctx context.Context, circle *models.Circle) error {
	questions, err := encodeQuestions(circle.JoinQuestions)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE circles
		 SET name = ?, description = ?, visibility = ?, is_filtered = ?,
		     banner_image = ?, icon_image = ?, join_questions = ?
		 WHERE id = ?`,
		circle.Name, circle.Description, string(circle.Visibility), circle.IsFiltered,
		circle.BannerImage, circle.IconImage, questions, circle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("circle %s: %w", circle.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteCircle removes a circle by ID.
func (s *SQLiteStore) DeleteCircle(ctx context.Context, circleID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM circles WHERE id = ?", circleID)
	if err != nil {
		return fmt.Errorf("failed to delete circle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}

	return nil
}
