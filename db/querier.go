package db

import (
	"context"
)

type Querier interface {
	DeleteUserPreference(ctx context.Context, userID string) error
	GetUserPreference(ctx context.Context, userID string) (UserPreference, error)
	UpsertUserPreference(ctx context.Context, arg UpsertUserPreferenceParams) (UserPreference, error)
}

var _ Querier = (*Queries)(nil)
