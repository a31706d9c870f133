package db

import (
	"context"
)

const deleteUserPreference = `-- name: DeleteUserPreference :exec
DELETE FROM user_preferences
WHERE user_id = $1
`

func (q *Queries) DeleteUserPreference(ctx context.Context, userID string) error {
	_, err := q.db.Exec(ctx, deleteUserPreference, userID)
	return err
}

const getUserPreference = `-- name: GetUserPreference :one
SELECT user_id, assets, investor_type, content_types, updated_at
FROM user_preferences
WHERE user_id = $1
`

func (q *Queries) GetUserPreference(ctx context.Context, userID string) (UserPreference, error) {
	row := q.db.QueryRow(ctx, getUserPreference, userID)
	var i UserPreference
	err := row.Scan(
		&i.UserID,
		&i.Assets,
		&i.InvestorType,
		&i.ContentTypes,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertUserPreference = `-- name: UpsertUserPreference :one
INSERT INTO user_preferences (user_id, assets, investor_type, content_types, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id) DO UPDATE SET
    assets = EXCLUDED.assets,
    investor_type = EXCLUDED.investor_type,
    content_types = EXCLUDED.content_types,
    updated_at = now()
RETURNING user_id, assets, investor_type, content_types, updated_at
`

type UpsertUserPreferenceParams struct {
	UserID       string   `json:"user_id"`
	Assets       []string `json:"assets"`
	InvestorType string   `json:"investor_type"`
	ContentTypes []string `json:"content_types"`
}

func (q *Queries) UpsertUserPreference(ctx context.Context, arg UpsertUserPreferenceParams) (UserPreference, error) {
	row := q.db.QueryRow(ctx, upsertUserPreference,
		arg.UserID,
		arg.Assets,
		arg.InvestorType,
		arg.ContentTypes,
	)
	var i UserPreference
	err := row.Scan(
		&i.UserID,
		&i.Assets,
		&i.InvestorType,
		&i.ContentTypes,
		&i.UpdatedAt,
	)
	return i, err
}
