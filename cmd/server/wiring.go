package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"realmgov/internal/custody"
	"realmgov/internal/governance"
	"realmgov/internal/governance/metrics"
	"realmgov/internal/governance/store"
	"realmgov/internal/platform/config"
	pgplatform "realmgov/internal/platform/postgres"
	redisplatform "realmgov/internal/platform/redis"
	"realmgov/internal/realm"
	"realmgov/internal/voting"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/audit"
	"realmgov/pkg/platform/audit/publishers/compliance"
	auditmemory "realmgov/pkg/platform/audit/store/memory"
	auditpostgres "realmgov/pkg/platform/audit/store/postgres"
	"realmgov/pkg/platform/circuit"
)

// app holds everything serve needs plus the resources it must release.
type app struct {
	service *governance.Service
	db      *sql.DB
	redis   *redisplatform.Client
	badger  *store.BadgerStore
	outbox  *auditpostgres.Store
	audit   *compliance.Publisher
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return pgplatform.Open(ctx, pgplatform.Config{
		URL:             cfg.Store.DatabaseURL,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	})
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	programID, err := domain.ParsePubkey(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}

	a := &app{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	if cfg.Store.Backend == config.BackendPostgres || cfg.Registry.Backend == config.BackendPostgres {
		a.db, err = openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.db.Close)
	}
	if cfg.Redis.URL != "" {
		a.redis, err = redisplatform.Open(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.redis.Close)
	}

	deps := governance.Deps{}
	var auditStore audit.Store
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		records := store.NewPostgres(a.db)
		deps.Records, deps.Tx = records, records
		deps.Custody = custody.NewPostgres(a.db)
		a.outbox = auditpostgres.New(a.db)
		auditStore = a.outbox
	case config.BackendBadger:
		a.badger, err = store.OpenBadger(cfg.Store.BadgerDir, store.WithBadgerLogger(logger))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.badger.Close)
		deps.Records, deps.Tx = a.badger, a.badger
		deps.Custody, err = seededLedger(cfg.Custody)
		if err != nil {
			return nil, err
		}
		auditStore = auditmemory.NewInMemoryStore()
	default:
		records := store.NewInMemory()
		deps.Records, deps.Tx = records, records
		deps.Custody, err = seededLedger(cfg.Custody)
		if err != nil {
			return nil, err
		}
		auditStore = auditmemory.NewInMemoryStore()
	}

	deps.Registry, err = buildRegistry(cfg, a.db)
	if err != nil {
		return nil, err
	}
	deps.Oracle = buildOracle(cfg, a.redis, logger)

	a.audit = compliance.New(auditStore,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	a.service, err = governance.NewService(programID, deps,
		governance.WithLogger(logger),
		governance.WithAuditPublisher(a.audit),
		governance.WithMetrics(metrics.New(reg)),
		governance.WithOpTimeout(cfg.OpTimeout),
	)
	if err != nil {
		return nil, err
	}
	ok = true
	return a, nil
}

func buildRegistry(cfg *config.Config, db *sql.DB) (governance.RealmRegistry, error) {
	if cfg.Registry.Backend == config.BackendPostgres {
		return realm.NewCached(realm.NewPostgres(db), cfg.Registry.CacheTTL), nil
	}
	return realm.FromConfig(cfg.Registry.Realms)
}

func buildOracle(cfg *config.Config, rc *redisplatform.Client, logger *slog.Logger) governance.VoteHoldOracle {
	if cfg.Oracle.Backend != config.BackendRedis {
		logger.Warn("vote holds are not enforced with the memory oracle; use it for development only")
		return voting.NewTracker()
	}
	breaker := circuit.New("vote-holds",
		circuit.WithFailureThreshold(cfg.Oracle.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.Oracle.SuccessThreshold),
		circuit.WithCooldown(cfg.Oracle.Cooldown),
	)
	return voting.NewGuarded(voting.NewRedisOracle(rc.Client), breaker, logger)
}

func seededLedger(cfg config.CustodyConfig) (*custody.Ledger, error) {
	ledger := custody.NewLedger()
	for _, m := range cfg.Mints {
		mint, authority, err := parseMintEntry(m)
		if err != nil {
			return nil, err
		}
		ledger.RegisterMint(mint, authority)
	}
	for _, e := range cfg.Accounts {
		acct, mint, authority, err := parseAccountEntry(e)
		if err != nil {
			return nil, err
		}
		ledger.OpenAccount(acct, mint, authority, e.Balance)
	}
	return ledger, nil
}

func parseMintEntry(e config.CustodyMintEntry) (domain.MintID, domain.Identity, error) {
	mint, err := domain.ParseMintID(e.Mint)
	if err != nil {
		return domain.MintID{}, domain.Identity{}, fmt.Errorf("custody mint: %w", err)
	}
	authority, err := domain.ParseIdentity(e.Authority)
	if err != nil {
		return domain.MintID{}, domain.Identity{}, fmt.Errorf("custody mint %s authority: %w", e.Mint, err)
	}
	return mint, authority, nil
}

func parseAccountEntry(e config.CustodyAccountEntry) (domain.Identity, domain.MintID, domain.Identity, error) {
	acct, err := domain.ParseIdentity(e.Account)
	if err != nil {
		return domain.Identity{}, domain.MintID{}, domain.Identity{}, fmt.Errorf("custody account: %w", err)
	}
	mint, err := domain.ParseMintID(e.Mint)
	if err != nil {
		return domain.Identity{}, domain.MintID{}, domain.Identity{}, fmt.Errorf("custody account %s mint: %w", e.Account, err)
	}
	authority := acct
	if e.Authority != "" {
		authority, err = domain.ParseIdentity(e.Authority)
		if err != nil {
			return domain.Identity{}, domain.MintID{}, domain.Identity{}, fmt.Errorf("custody account %s authority: %w", e.Account, err)
		}
	}
	return acct, mint, authority, nil
}
