package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/sweater-ventures/hodlboard/db"
)

// MockQuerier is a testify mock implementation of db.Querier.
type MockQuerier struct {
	mock.Mock
}

var _ db.Querier = (*MockQuerier)(nil)

func (m *MockQuerier) DeleteUserPreference(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockQuerier) GetUserPreference(ctx context.Context, userID string) (db.UserPreference, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(db.UserPreference), args.Error(1)
}

func (m *MockQuerier) UpsertUserPreference(ctx context.Context, arg db.UpsertUserPreferenceParams) (db.UserPreference, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.UserPreference), args.Error(1)
}
