package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatbot-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) Create(ctx context.Context, turn *models.ChatTurn) error {
	turn.ID = uuid.New()

	query := `INSERT INTO chats (id, user_id, message, response, model)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		turn.ID, turn.UserID, turn.Message, turn.Response, turn.Model,
	).Scan(&turn.Timestamp)
}

// ListByUser returns every turn for the user, newest first.
func (r *ChatRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatTurn, error) {
	query := `SELECT id, user_id, message, response, model, created_at
		FROM chats WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []models.ChatTurn{}
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Message, &t.Response, &t.Model, &t.Timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// DeleteByUser removes every turn for the user. Deleting an empty history
// affects zero rows and is not an error.
func (r *ChatRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM chats WHERE user_id = $1", userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
