// Package postgres provides a pgx-backed implementation of storage.CircleStore,
// for deployments that keep circles in a hosted Postgres database.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/storage"
)

// Ensure CircleRepo implements storage.CircleStore
var _ storage.CircleStore = (*CircleRepo)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS circles (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    visibility TEXT NOT NULL DEFAULT 'public',
    is_filtered BOOLEAN NOT NULL DEFAULT FALSE,
    banner_image TEXT NOT NULL DEFAULT '',
    icon_image TEXT NOT NULL DEFAULT '',
    join_questions JSONB NOT NULL DEFAULT '[]'::jsonb,
    member_count INTEGER NOT NULL DEFAULT 1,
    is_official BOOLEAN NOT NULL DEFAULT FALSE,
    auto_join BOOLEAN NOT NULL DEFAULT FALSE,
    created_by TEXT,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_circles_created_at ON circles (created_at DESC, seq DESC);
`

const circleColumns = "id, name, description, visibility, is_filtered, banner_image, icon_image, " +
	"join_questions, member_count, is_official, auto_join, created_by, created_at"

// NewPool opens and pings a connection pool for databaseURL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create DB pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}

	return pool, nil
}

// CircleRepo stores circles in Postgres with join questions as JSONB.
type CircleRepo struct {
	pool *pgxpool.Pool
}

// NewCircleRepo creates a repository over pool.
func NewCircleRepo(pool *pgxpool.Pool) *CircleRepo {
	return &CircleRepo{pool: pool}
}

// EnsureSchema creates the circles table when it does not exist.
func (r *CircleRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create circles schema: %w", err)
	}
	return nil
}

func scanCircle(row pgx.Row) (*models.Circle, error) {
	circle := &models.Circle{}
	var (
		visibility string
		questions  []byte
		createdBy  *string
	)
	if err := row.Scan(
		&circle.ID, &circle.Name, &circle.Description, &visibility, &circle.IsFiltered,
		&circle.BannerImage, &circle.IconImage, &questions, &circle.MemberCount,
		&circle.IsOfficial, &circle.AutoJoin, &createdBy, &circle.CreatedAt,
	); err != nil {
		return nil, err
	}

	circle.Visibility = models.Visibility(visibility)
	if createdBy != nil {
		circle.CreatedBy = *createdBy
	}
	if err := json.Unmarshal(questions, &circle.JoinQuestions); err != nil {
		return nil, fmt.Errorf("decode join questions of circle %s: %w", circle.ID, err)
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
		return "", fmt.Errorf("encode join questions: %w", err)
	}
	return string(raw), nil
}

func (r *CircleRepo) ListCircles(ctx context.Context) ([]models.Circle, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+circleColumns+" FROM circles ORDER BY created_at DESC, seq DESC")
	if err != nil {
		return nil, fmt.Errorf("list circles: %w", err)
	}
	defer rows.Close()

	circles := []models.Circle{}
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan circle: %w", err)
		}
		circles = append(circles, *circle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circles: %w", err)
	}
	return circles, nil
}

func (r *CircleRepo) GetCircle(ctx context.Context, circleID string) (*models.Circle, error) {
	circle, err := scanCircle(r.pool.QueryRow(ctx, "SELECT "+circleColumns+" FROM circles WHERE id = $1", circleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get circle: %w", err)
	}
	return circle, nil
}

func (r *CircleRepo) CreateCircle(ctx context.Context, circle *models.Circle) error {
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

	var createdBy *string
	if circle.CreatedBy != "" {
		createdBy = &circle.CreatedBy
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO circles (`+circleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13)
	`,
		circle.ID, circle.Name, circle.Description, string(circle.Visibility), circle.IsFiltered,
		circle.BannerImage, circle.IconImage, questions, circle.MemberCount,
		circle.IsOfficial, circle.AutoJoin, createdBy, circle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert circle: %w", err)
	}
	return nil
}

func (r *CircleRepo) UpdateCircle(ctx context.Context, circle *models.Circle) error {
	questions, err := encodeQuestions(circle.JoinQuestions)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE circles
		SET name = $2,
			description = $3,
			visibility = $4,
			is_filtered = $5,
			banner_image = $6,
			icon_image = $7,
			join_questions = $8::jsonb
		WHERE id = $1
	`,
		circle.ID, circle.Name, circle.Description, string(circle.Visibility), circle.IsFiltered,
		circle.BannerImage, circle.IconImage, questions,
	)
	if err != nil {
		return fmt.Errorf("update circle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("circle %s: %w", circle.ID, storage.ErrNotFound)
	}
	return nil
}

func (r *CircleRepo) DeleteCircle(ctx context.Context, circleID string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM circles WHERE id = $1", circleID)
	if err != nil {
		return fmt.Errorf("delete circle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}
	return nil
}
