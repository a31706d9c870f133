package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type UserPreference struct {
	UserID       string             `json:"user_id"`
	Assets       []string           `json:"assets"`
	InvestorType string             `json:"investor_type"`
	ContentTypes []string           `json:"content_types"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}
