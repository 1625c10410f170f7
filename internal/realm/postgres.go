package realm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

// PostgresRegistry reads mint configuration from the realms table.
type PostgresRegistry struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) MintConfig(ctx context.Context, realm domain.RealmID, mint domain.MintID) (*models.MintConfig, error) {
	var role, tokenType string
	err := r.db.QueryRowContext(ctx, `
		SELECT role, token_type FROM realms WHERE realm_id = $1 AND mint_id = $2
	`, realm.String(), mint.String()).Scan(&role, &tokenType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get realm mint: %w", err)
	}
	return &models.MintConfig{
		Realm:     realm,
		Mint:      mint,
		Role:      models.MintRole(role),
		TokenType: models.TokenType(tokenType),
	}, nil
}

// Upsert stores cfg, replacing the role and token type of an existing entry.
func (r *PostgresRegistry) Upsert(ctx context.Context, cfg models.MintConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO realms (realm_id, mint_id, role, token_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (realm_id, mint_id) DO UPDATE SET
			role = EXCLUDED.role,
			token_type = EXCLUDED.token_type
	`, cfg.Realm.String(), cfg.Mint.String(), string(cfg.Role), string(cfg.TokenType))
	if err != nil {
		return fmt.Errorf("upsert realm mint: %w", err)
	}
	return nil
}
