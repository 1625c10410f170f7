package custody

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
	txcontext "realmgov/pkg/platform/tx"
)

const checkViolation = "23514"

// PostgresLedger keeps custody balances in PostgreSQL. Transfers run on the
// record transaction found in ctx, so a rolled back record update also rolls
// back the transfer.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnlistsInRecordTx reports that transfers join the caller's transaction.
func (l *PostgresLedger) EnlistsInRecordTx() bool { return true }

func (l *PostgresLedger) RegisterMint(ctx context.Context, mint domain.MintID, authority domain.Identity) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO custody_mints (mint_id, authority) VALUES ($1, $2)
		ON CONFLICT (mint_id) DO UPDATE SET authority = EXCLUDED.authority
	`, mint.String(), authority.String())
	if err != nil {
		return fmt.Errorf("register custody mint: %w", err)
	}
	return nil
}

func (l *PostgresLedger) OpenAccount(ctx context.Context, acct domain.Identity, mint domain.MintID, authority domain.Identity, balance uint64) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO custody_accounts (account_id, mint_id, authority, balance)
		VALUES ($1, $2, $3, $4::numeric)
		ON CONFLICT (account_id, mint_id) DO UPDATE SET
			authority = EXCLUDED.authority,
			balance = EXCLUDED.balance
	`, acct.String(), mint.String(), authority.String(), strconv.FormatUint(balance, 10))
	if err != nil {
		return fmt.Errorf("open custody account: %w", err)
	}
	return nil
}

// Balance returns the balance of acct for mint, zero when the account does not exist.
func (l *PostgresLedger) Balance(ctx context.Context, acct domain.Identity, mint domain.MintID) (uint64, error) {
	var balance string
	err := l.db.QueryRowContext(ctx, `
		SELECT balance::text FROM custody_accounts WHERE account_id = $1 AND mint_id = $2
	`, acct.String(), mint.String()).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get custody balance: %w", err)
	}
	return strconv.ParseUint(balance, 10, 64)
}

func (l *PostgresLedger) Authority(ctx context.Context, mint domain.MintID, source domain.Identity) (domain.Identity, error) {
	var authority string
	var err error
	if source == domain.Identity(mint) {
		err = l.db.QueryRowContext(ctx,
			`SELECT authority FROM custody_mints WHERE mint_id = $1`, mint.String()).Scan(&authority)
	} else {
		err = l.db.QueryRowContext(ctx,
			`SELECT authority FROM custody_accounts WHERE account_id = $1 AND mint_id = $2`,
			source.String(), mint.String()).Scan(&authority)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, sentinel.ErrNotFound
		}
		return domain.Identity{}, fmt.Errorf("get custody authority: %w", err)
	}
	return domain.ParseIdentity(authority)
}

// Transfer debits from and credits to. Without a transaction in ctx it opens
// its own.
func (l *PostgresLedger) Transfer(ctx context.Context, mint domain.MintID, from, to domain.Identity, amount uint64) error {
	if amount == 0 || from == to {
		return ErrInvalidTransfer
	}
	if tx, ok := txcontext.From(ctx); ok {
		return l.transfer(ctx, tx, mint, from, to, amount)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin custody transaction: %w", err)
	}
	if err := l.transfer(ctx, tx, mint, from, to, amount); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit custody transaction: %w", err)
	}
	return nil
}

func (l *PostgresLedger) transfer(ctx context.Context, q txcontext.Querier, mint domain.MintID, from, to domain.Identity, amount uint64) error {
	amt := strconv.FormatUint(amount, 10)

	if from == domain.Identity(mint) || to == domain.Identity(mint) {
		var exists bool
		if err := q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM custody_mints WHERE mint_id = $1)`, mint.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check custody mint: %w", err)
		}
		if !exists {
			return fmt.Errorf("mint %s: %w", mint, sentinel.ErrNotFound)
		}
	}

	if err := lockAccounts(ctx, q, mint, from, to); err != nil {
		return err
	}

	if from != domain.Identity(mint) {
		res, err := q.ExecContext(ctx, `
			UPDATE custody_accounts SET balance = balance - $3::numeric
			WHERE account_id = $1 AND mint_id = $2 AND balance >= $3::numeric
		`, from.String(), mint.String(), amt)
		if err != nil {
			return fmt.Errorf("debit custody account: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("debit custody account rows affected: %w", err)
		}
		if rows == 0 {
			return ErrInsufficientFunds
		}
	}

	if to != domain.Identity(mint) {
		var balance string
		err := q.QueryRowContext(ctx, `
			INSERT INTO custody_accounts (account_id, mint_id, authority, balance)
			VALUES ($1, $2, $1, $3::numeric)
			ON CONFLICT (account_id, mint_id) DO UPDATE SET
				balance = custody_accounts.balance + EXCLUDED.balance
			RETURNING balance::text
		`, to.String(), mint.String(), amt).Scan(&balance)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
				return ErrBalanceOverflow
			}
			return fmt.Errorf("credit custody account: %w", err)
		}
	}
	return nil
}

// lockAccounts takes the row locks of both sides of a transfer up front, in
// account_id order, so transfers in opposite directions queue instead of
// deadlocking. Accounts that do not exist yet are created by the credit.
func lockAccounts(ctx context.Context, q txcontext.Querier, mint domain.MintID, from, to domain.Identity) error {
	ids := lockOrder(mint, from, to)
	if len(ids) == 0 {
		return nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT account_id FROM custody_accounts
		WHERE mint_id = $1 AND account_id = ANY($2::text[])
		ORDER BY account_id
		FOR UPDATE
	`, mint.String(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("lock custody accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock custody accounts: %w", err)
	}
	return nil
}

// lockOrder returns the custody accounts a transfer touches, sorted, without
// the mint itself.
func lockOrder(mint domain.MintID, from, to domain.Identity) []string {
	var ids []string
	for _, id := range []domain.Identity{from, to} {
		if id == domain.Identity(mint) {
			continue
		}
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return ids
}
