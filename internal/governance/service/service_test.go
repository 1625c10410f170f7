package service

//go:generate mockgen -source=../ports/ports.go -destination=../ports/mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"realmgov/internal/governance/metrics"
	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/internal/governance/ports/mocks"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/audit"
	"realmgov/pkg/platform/sentinel"
	"realmgov/pkg/requestcontext"
	tu "realmgov/pkg/testutil"
)

// =============================================================================
// Service Test Suite
// =============================================================================
// Collaborators are mocked so each test pins down exactly which custody,
// oracle and store calls an operation makes, and in which order failures
// short-circuit them.

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	records  *mocks.MockRecordStore
	tx       *mocks.MockRecordTx
	registry *mocks.MockRealmRegistry
	oracle   *mocks.MockVoteHoldOracle
	custody  *mocks.MockCustody
	audit    *mocks.MockAuditPublisher
	metrics  *metrics.Metrics
	service  *Service

	programID domain.Pubkey
	realm     domain.RealmID
	mint      domain.MintID
	owner     domain.Identity
	source    domain.Identity
	payer     domain.Identity
	now       time.Time
	ctx       context.Context
	emitted   []audit.Event
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.records = mocks.NewMockRecordStore(s.ctrl)
	s.tx = mocks.NewMockRecordTx(s.ctrl)
	s.registry = mocks.NewMockRealmRegistry(s.ctrl)
	s.oracle = mocks.NewMockVoteHoldOracle(s.ctrl)
	s.custody = mocks.NewMockCustody(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())

	s.programID = domain.Pubkey(tu.NewIdentity(s.T()))
	s.realm = tu.NewRealmID(s.T())
	s.mint = tu.NewMintID(s.T())
	s.owner = tu.NewIdentity(s.T())
	s.source = tu.NewIdentity(s.T())
	s.payer = tu.NewIdentity(s.T())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), s.now), "req-1")
	s.emitted = nil

	s.service = s.newService(s.custody)

	s.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Pubkey, fn func(context.Context, ports.RecordStore) error) error {
			return fn(ctx, s.records)
		}).AnyTimes()
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.emitted = append(s.emitted, e)
			return nil
		}).AnyTimes()
}

func (s *ServiceSuite) newService(custody ports.Custody) *Service {
	svc, err := New(s.programID, Deps{
		Records:  s.records,
		Tx:       s.tx,
		Registry: s.registry,
		Oracle:   s.oracle,
		Custody:  custody,
	},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.audit),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) key() domain.RecordKey {
	return domain.RecordKey{Realm: s.realm, Mint: s.mint, Owner: s.owner}
}

func (s *ServiceSuite) address() domain.Pubkey {
	addr, err := s.service.RecordAddress(s.key())
	s.Require().NoError(err)
	return addr
}

func (s *ServiceSuite) holding() domain.Identity {
	h, err := s.service.HoldingAddress(s.realm, s.mint)
	s.Require().NoError(err)
	return h
}

func (s *ServiceSuite) record(amount uint64) *models.TokenOwnerRecord {
	rec, err := models.NewTokenOwnerRecord(s.address(), s.key(), s.now)
	s.Require().NoError(err)
	rec.GoverningTokenDepositAmount = amount
	rec.Version = 1
	return rec
}

func (s *ServiceSuite) expectMint(tokenType models.TokenType) {
	s.registry.EXPECT().MintConfig(gomock.Any(), s.realm, s.mint).Return(&models.MintConfig{
		Realm: s.realm, Mint: s.mint, Role: models.MintRoleCommunity, TokenType: tokenType,
	}, nil)
}

func (s *ServiceSuite) depositRequest(amount uint64, signers ...domain.Identity) *models.DepositRequest {
	return &models.DepositRequest{
		Realm:           s.realm,
		Mint:            s.mint,
		Owner:           s.owner,
		Source:          s.source,
		SourceAuthority: s.owner,
		Payer:           s.payer,
		Amount:          amount,
		Signers:         domain.NewSignerSet(signers...),
	}
}

func (s *ServiceSuite) actions() []string {
	out := make([]string, 0, len(s.emitted))
	for _, e := range s.emitted {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	deps := Deps{Records: s.records, Tx: s.tx, Registry: s.registry, Oracle: s.oracle, Custody: s.custody}

	_, err := New(domain.Pubkey{}, deps)
	s.ErrorContains(err, "program id is required")

	missing := deps
	missing.Oracle = nil
	_, err = New(s.programID, missing)
	s.ErrorContains(err, "vote-hold oracle is required")

	missing = deps
	missing.Custody = nil
	_, err = New(s.programID, missing)
	s.ErrorContains(err, "custody is required")

	svc, err := New(s.programID, deps)
	s.Require().NoError(err)
	s.Equal(s.programID, svc.ProgramID())
}

// =============================================================================
// Deposit Tests
// =============================================================================

func (s *ServiceSuite) TestDepositCreatesRecord() {
	rec := s.record(0)
	s.expectMint(models.TokenTypeLiquid)
	gomock.InOrder(
		s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil),
		s.records.EXPECT().GetOrCreate(gomock.Any(), s.address(), s.key(), s.now).Return(rec, true, nil),
		s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(100)).Return(nil),
		s.records.EXPECT().Save(gomock.Any(), rec).Return(nil),
	)

	got, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(100, s.owner, s.payer))
	s.Require().NoError(err)
	s.Equal(uint64(100), got.GoverningTokenDepositAmount)
	s.Equal([]string{string(audit.EventRecordCreated), string(audit.EventDepositApplied)}, s.actions())
	s.Equal(s.payer.String(), s.emitted[0].ActorID)
	s.Equal("req-1", s.emitted[1].RequestID)
	s.Equal(uint64(100), s.emitted[1].Amount)
	s.Equal(float64(100), testutil.ToFloat64(s.metrics.TokensDeposited))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.RecordsCreated))
}

func (s *ServiceSuite) TestDepositAccumulates() {
	rec := s.record(40)
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(rec, false, nil)
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(2)).Return(nil)
	s.records.EXPECT().Save(gomock.Any(), rec).Return(nil)

	// payer signature is only needed on creation
	got, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(2, s.owner))
	s.Require().NoError(err)
	s.Equal(uint64(42), got.GoverningTokenDepositAmount)
	s.Equal([]string{string(audit.EventDepositApplied)}, s.actions())
}

func (s *ServiceSuite) TestDepositRejectsInvalidRequest() {
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(0, s.owner, s.payer))
	s.requireCode(err, dErrors.CodeInvalidAmount)

	_, err = s.service.DepositGoverningTokens(s.ctx, nil)
	s.requireCode(err, dErrors.CodeBadRequest)
}

func (s *ServiceSuite) TestDepositMintNotConfigured() {
	s.registry.EXPECT().MintConfig(gomock.Any(), s.realm, s.mint).Return(nil, sentinel.ErrNotFound)
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner, s.payer))
	s.requireCode(err, dErrors.CodeInvalidRealmConfig)
}

func (s *ServiceSuite) TestDepositDormantMint() {
	s.expectMint(models.TokenTypeDormant)
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner, s.payer))
	s.requireCode(err, dErrors.CodeInvalidRealmConfig)
}

func (s *ServiceSuite) TestDepositSourceAuthorityMustSign() {
	s.expectMint(models.TokenTypeLiquid)
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.payer))
	s.requireCode(err, dErrors.CodeUnauthorized)
	s.Equal([]string{string(audit.EventAuthorizationDenied)}, s.actions())
	s.Equal("source authority must sign", s.emitted[0].Reason)
}

func (s *ServiceSuite) TestDepositSourceAuthorityMismatch() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.payer, nil)
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner, s.payer))
	s.requireCode(err, dErrors.CodeUnauthorized)
}

func (s *ServiceSuite) TestDepositCustodyLookupFails() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(domain.Identity{}, errors.New("ledger offline"))
	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner, s.payer))
	s.requireCode(err, dErrors.CodeTransferFailed)
}

func (s *ServiceSuite) TestDepositCreationNeedsPayerSignature() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(0), true, nil)

	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner))
	s.requireCode(err, dErrors.CodeUnauthorized)
	s.Equal([]string{string(audit.EventAuthorizationDenied)}, s.actions())
}

func (s *ServiceSuite) TestDepositOverflowMovesNothing() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(math.MaxUint64), false, nil)

	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(1, s.owner))
	s.requireCode(err, dErrors.CodeOverflow)
}

func (s *ServiceSuite) TestDepositTransferFails() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(5), false, nil)
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(10)).Return(errors.New("insufficient funds"))

	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(10, s.owner))
	s.requireCode(err, dErrors.CodeTransferFailed)
	s.Empty(s.actions())
}

func (s *ServiceSuite) TestDepositCompensatesWhenSaveFails() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(5), false, nil)
	gomock.InOrder(
		s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(10)).Return(nil),
		s.records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
		s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.holding(), s.source, uint64(10)).Return(nil),
	)

	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(10, s.owner))
	s.requireCode(err, dErrors.CodeConflict)
	s.Equal([]string{string(audit.EventTransferCompensated)}, s.actions())
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Compensations.WithLabelValues("reversed")))
}

func (s *ServiceSuite) TestDepositCompensationFailureNeedsReconciliation() {
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(5), false, nil)
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(10)).Return(nil)
	s.records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.holding(), s.source, uint64(10)).Return(errors.New("ledger offline"))

	_, err := s.service.DepositGoverningTokens(s.ctx, s.depositRequest(10, s.owner))
	s.requireCode(err, dErrors.CodeInternal)
	s.ErrorContains(err, "ledger offline")
	s.Equal([]string{string(audit.EventCustodyReconcileNeed)}, s.actions())
}

type enlistingCustody struct {
	*mocks.MockCustody
}

func (enlistingCustody) EnlistsInRecordTx() bool { return true }

func (s *ServiceSuite) TestDepositEnlistedCustodyIsNotReversed() {
	svc := s.newService(enlistingCustody{s.custody})
	s.expectMint(models.TokenTypeLiquid)
	s.custody.EXPECT().Authority(gomock.Any(), s.mint, s.source).Return(s.owner, nil)
	s.records.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(s.record(5), false, nil)
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, gomock.Any(), uint64(10)).Return(nil).Times(1)
	s.records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := svc.DepositGoverningTokens(s.ctx, s.depositRequest(10, s.owner))
	s.requireCode(err, dErrors.CodeConflict)
	s.Empty(s.actions())
}

// =============================================================================
// Withdraw Tests
// =============================================================================

func (s *ServiceSuite) withdrawRequest(signers ...domain.Identity) *models.WithdrawRequest {
	return &models.WithdrawRequest{
		Realm:       s.realm,
		Mint:        s.mint,
		Owner:       s.owner,
		Destination: s.source,
		Signers:     domain.NewSignerSet(signers...),
	}
}

func (s *ServiceSuite) TestWithdrawReturnsFullDeposit() {
	rec := s.record(75)
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(rec, nil)
	s.expectMint(models.TokenTypeLiquid)
	s.oracle.EXPECT().HoldStatus(gomock.Any(), s.address()).Return(models.HoldStatus{}, nil)
	s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.holding(), s.source, uint64(75)).Return(nil)
	s.records.EXPECT().Save(gomock.Any(), rec).Return(nil)

	got, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.Require().NoError(err)
	s.Zero(got.GoverningTokenDepositAmount)
	s.Equal([]string{string(audit.EventWithdrawalApplied)}, s.actions())
	s.Equal(uint64(75), s.emitted[0].Amount)
	s.Equal(float64(75), testutil.ToFloat64(s.metrics.TokensWithdrawn))
}

func (s *ServiceSuite) TestWithdrawMissingRecord() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(nil, sentinel.ErrNotFound)
	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.requireCode(err, dErrors.CodeRecordNotFound)
}

func (s *ServiceSuite) TestWithdrawEmptyRecord() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(0), nil)
	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.requireCode(err, dErrors.CodeRecordNotFound)
}

func (s *ServiceSuite) TestWithdrawByDelegateIsRefused() {
	delegate := tu.NewIdentity(s.T())
	rec := s.record(10)
	rec.GovernanceDelegate = &delegate
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(rec, nil)

	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(delegate))
	s.requireCode(err, dErrors.CodeUnauthorized)
	s.Equal("delegate cannot withdraw governing tokens", dErrors.MessageOf(err))
	s.Equal([]string{string(audit.EventAuthorizationDenied)}, s.actions())
}

func (s *ServiceSuite) TestWithdrawMembershipToken() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)
	s.expectMint(models.TokenTypeMembership)
	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.requireCode(err, dErrors.CodeInvalidRealmConfig)
}

func (s *ServiceSuite) TestWithdrawBlockedByHolds() {
	cases := []struct {
		name    string
		status  models.HoldStatus
		message string
	}{
		{"votes", models.HoldStatus{OutstandingVotes: 1}, "relinquish outstanding votes before withdrawing"},
		{"proposals", models.HoldStatus{OutstandingProposals: 2}, "resolve outstanding proposals before withdrawing"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.emitted = nil
			s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)
			s.expectMint(models.TokenTypeLiquid)
			s.oracle.EXPECT().HoldStatus(gomock.Any(), s.address()).Return(tc.status, nil)

			_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
			s.requireCode(err, dErrors.CodeVotesOutstanding)
			s.Equal(tc.message, dErrors.MessageOf(err))
			s.Equal([]string{string(audit.EventWithdrawalBlocked)}, s.actions())
		})
	}
}

func (s *ServiceSuite) TestWithdrawOracleUnavailable() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)
	s.expectMint(models.TokenTypeLiquid)
	s.oracle.EXPECT().HoldStatus(gomock.Any(), s.address()).Return(models.HoldStatus{}, sentinel.ErrUnavailable)

	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.requireCode(err, dErrors.CodeOracleUnavailable)
}

func (s *ServiceSuite) TestWithdrawCompensatesWhenAuditFails() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)
	s.expectMint(models.TokenTypeLiquid)
	s.oracle.EXPECT().HoldStatus(gomock.Any(), s.address()).Return(models.HoldStatus{}, nil)
	s.records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.holding(), s.source, uint64(10)).Return(nil),
		s.custody.EXPECT().Transfer(gomock.Any(), s.mint, s.source, s.holding(), uint64(10)).Return(nil),
	)

	failing := mocks.NewMockAuditPublisher(s.ctrl)
	failing.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		if e.Action == string(audit.EventWithdrawalApplied) {
			return errors.New("outbox unavailable")
		}
		return nil
	}).AnyTimes()
	s.service.auditPublisher = failing

	_, err := s.service.WithdrawGoverningTokens(s.ctx, s.withdrawRequest(s.owner))
	s.requireCode(err, dErrors.CodeInternal)
}

// =============================================================================
// Set Delegate Tests
// =============================================================================

func (s *ServiceSuite) delegateRequest(newDelegate *domain.Identity, signers ...domain.Identity) *models.SetDelegateRequest {
	return &models.SetDelegateRequest{
		Realm:       s.realm,
		Mint:        s.mint,
		Owner:       s.owner,
		NewDelegate: newDelegate,
		Signers:     domain.NewSignerSet(signers...),
	}
}

func (s *ServiceSuite) TestSetDelegateByOwner() {
	delegate := tu.NewIdentity(s.T())
	rec := s.record(10)
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(rec, nil)
	s.records.EXPECT().Save(gomock.Any(), rec).Return(nil)

	got, err := s.service.SetGovernanceDelegate(s.ctx, s.delegateRequest(&delegate, s.owner))
	s.Require().NoError(err)
	s.Require().NotNil(got.GovernanceDelegate)
	s.Equal(delegate, *got.GovernanceDelegate)
	s.Equal(uint64(10), got.GoverningTokenDepositAmount)
	s.Equal([]string{string(audit.EventDelegateSet)}, s.actions())
	s.Equal(s.owner.String(), s.emitted[0].ActorID)
	s.Equal(delegate.String(), s.emitted[0].Delegate)
}

func (s *ServiceSuite) TestSetDelegateByCurrentDelegateRevokes() {
	delegate := tu.NewIdentity(s.T())
	rec := s.record(10)
	rec.GovernanceDelegate = &delegate
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(rec, nil)
	s.records.EXPECT().Save(gomock.Any(), rec).Return(nil)

	got, err := s.service.SetGovernanceDelegate(s.ctx, s.delegateRequest(nil, delegate))
	s.Require().NoError(err)
	s.Nil(got.GovernanceDelegate)
	s.Equal(delegate.String(), s.emitted[0].ActorID)
}

func (s *ServiceSuite) TestSetDelegateByStranger() {
	stranger := tu.NewIdentity(s.T())
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)

	_, err := s.service.SetGovernanceDelegate(s.ctx, s.delegateRequest(&stranger, stranger))
	s.requireCode(err, dErrors.CodeUnauthorized)
	s.Equal([]string{string(audit.EventAuthorizationDenied)}, s.actions())
}

func (s *ServiceSuite) TestSetDelegateConflict() {
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(s.record(10), nil)
	s.records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := s.service.SetGovernanceDelegate(s.ctx, s.delegateRequest(nil, s.owner))
	s.requireCode(err, dErrors.CodeConflict)
}

// =============================================================================
// Query Tests
// =============================================================================

func (s *ServiceSuite) TestQueries() {
	rec := s.record(3)
	s.records.EXPECT().FindByAddress(gomock.Any(), s.address()).Return(rec, nil)
	got, err := s.service.GetTokenOwnerRecord(s.ctx, s.key())
	s.Require().NoError(err)
	s.Equal(rec, got)

	s.records.EXPECT().ListByRealm(gomock.Any(), s.realm).Return([]*models.TokenOwnerRecord{rec}, nil)
	list, err := s.service.ListRealmRecords(s.ctx, s.realm)
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.service.ListRealmRecords(s.ctx, domain.RealmID{})
	s.requireCode(err, dErrors.CodeInvalidInput)

	_, err = s.service.ListDelegatedRecords(s.ctx, domain.Identity{})
	s.requireCode(err, dErrors.CodeInvalidInput)

	_, err = s.service.GetTokenOwnerRecord(s.ctx, domain.RecordKey{})
	s.requireCode(err, dErrors.CodeInvalidInput)
}
