package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/sentinel"
	txcontext "realmgov/pkg/platform/tx"
)

// Postgres SQLSTATE codes that mean another writer got there first.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const recordColumns = `address, realm_id, mint_id, owner_id, governing_token_deposit_amount::text,
	governance_delegate, version, created_at, updated_at`

// PostgresStore persists token owner records in PostgreSQL. Inside RunInTx
// every statement runs on the transaction and reads take row locks.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultTxTimeout}
}

func (s *PostgresStore) querier(ctx context.Context) (txcontext.Querier, bool) {
	return txcontext.Using(ctx, s.db)
}

func (s *PostgresStore) FindByAddress(ctx context.Context, address domain.Pubkey) (*models.TokenOwnerRecord, error) {
	q, inTx := s.querier(ctx)
	query := `SELECT ` + recordColumns + ` FROM token_owner_records WHERE address = $1`
	if inTx {
		query += ` FOR UPDATE`
	}
	rec, err := scanRecord(q.QueryRowContext(ctx, query, address.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find token owner record: %w", err)
	}
	return rec, nil
}

// GetOrCreate inserts an empty record unless one exists and returns the
// stored row, locked when running inside a transaction.
func (s *PostgresStore) GetOrCreate(ctx context.Context, address domain.Pubkey, key domain.RecordKey, now time.Time) (*models.TokenOwnerRecord, bool, error) {
	rec, err := newStoredRecord(address, key, now)
	if err != nil {
		return nil, false, err
	}
	q, _ := s.querier(ctx)
	res, err := q.ExecContext(ctx, `
		INSERT INTO token_owner_records
			(address, realm_id, mint_id, owner_id, governing_token_deposit_amount, governance_delegate, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NULL, $5, $6, $6)
		ON CONFLICT (address) DO NOTHING
	`, address.String(), key.Realm.String(), key.Mint.String(), key.Owner.String(), rec.Version, now)
	if err != nil {
		if isConflict(err) {
			return nil, false, sentinel.ErrConflict
		}
		return nil, false, fmt.Errorf("insert token owner record: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert token owner record rows affected: %w", err)
	}
	stored, err := s.FindByAddress(ctx, address)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted > 0, nil
}

// Save updates rec when the stored version matches and bumps the version.
func (s *PostgresStore) Save(ctx context.Context, rec *models.TokenOwnerRecord) error {
	if rec == nil {
		return fmt.Errorf("token owner record is required")
	}
	var delegate sql.NullString
	if rec.GovernanceDelegate != nil {
		delegate = sql.NullString{String: rec.GovernanceDelegate.String(), Valid: true}
	}
	q, _ := s.querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE token_owner_records
		SET governing_token_deposit_amount = $2::numeric,
			governance_delegate = $3,
			version = version + 1,
			updated_at = $4
		WHERE address = $1 AND version = $5
	`, rec.Address.String(), strconv.FormatUint(rec.GoverningTokenDepositAmount, 10), delegate, rec.UpdatedAt, rec.Version)
	if err != nil {
		if isConflict(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update token owner record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update token owner record rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	rec.Version++
	return nil
}

func (s *PostgresStore) ListByRealm(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error) {
	return s.list(ctx, `WHERE realm_id = $1`, realm.String())
}

func (s *PostgresStore) ListByDelegate(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error) {
	return s.list(ctx, `WHERE governance_delegate = $1`, delegate.String())
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]*models.TokenOwnerRecord, error) {
	q, _ := s.querier(ctx)
	rows, err := q.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM token_owner_records `+where+` ORDER BY mint_id, owner_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list token owner records: %w", err)
	}
	defer rows.Close()

	out := make([]*models.TokenOwnerRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token owner record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token owner records: %w", err)
	}
	return out, nil
}

// RunInTx runs fn inside a SQL transaction carried in ctx. Ledgers and the
// audit outbox that read the transaction from ctx commit or roll back with it.
func (s *PostgresStore) RunInTx(ctx context.Context, _ domain.Pubkey, fn func(ctx context.Context, store ports.RecordStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txcontext.WithTx(ctx, tx), s); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		if isConflict(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.TokenOwnerRecord, error) {
	var (
		address, realm, mint, owner, amount string
		delegate                            sql.NullString
		rec                                 models.TokenOwnerRecord
	)
	if err := row.Scan(&address, &realm, &mint, &owner, &amount, &delegate,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if rec.Address, err = domain.ParsePubkey(address); err != nil {
		return nil, fmt.Errorf("stored address: %w", err)
	}
	if rec.Realm, err = domain.ParseRealmID(realm); err != nil {
		return nil, fmt.Errorf("stored realm: %w", err)
	}
	if rec.GoverningTokenMint, err = domain.ParseMintID(mint); err != nil {
		return nil, fmt.Errorf("stored mint: %w", err)
	}
	if rec.GoverningTokenOwner, err = domain.ParseIdentity(owner); err != nil {
		return nil, fmt.Errorf("stored owner: %w", err)
	}
	if rec.GoverningTokenDepositAmount, err = strconv.ParseUint(amount, 10, 64); err != nil {
		return nil, fmt.Errorf("stored amount: %w", err)
	}
	if delegate.Valid {
		d, err := domain.ParseIdentity(delegate.String)
		if err != nil {
			return nil, fmt.Errorf("stored delegate: %w", err)
		}
		rec.GovernanceDelegate = &d
	}
	return &rec, nil
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
