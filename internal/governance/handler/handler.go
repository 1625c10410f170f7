// Package handler exposes the governance service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realmgov/internal/governance/models"
	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/httputil"
	"realmgov/pkg/requestcontext"
)

// Service is the governance surface the handler drives.
type Service interface {
	DepositGoverningTokens(ctx context.Context, req *models.DepositRequest) (*models.TokenOwnerRecord, error)
	WithdrawGoverningTokens(ctx context.Context, req *models.WithdrawRequest) (*models.TokenOwnerRecord, error)
	SetGovernanceDelegate(ctx context.Context, req *models.SetDelegateRequest) (*models.TokenOwnerRecord, error)
	GetTokenOwnerRecord(ctx context.Context, key domain.RecordKey) (*models.TokenOwnerRecord, error)
	ListRealmRecords(ctx context.Context, realm domain.RealmID) ([]*models.TokenOwnerRecord, error)
	ListDelegatedRecords(ctx context.Context, delegate domain.Identity) ([]*models.TokenOwnerRecord, error)
	RecordAddress(key domain.RecordKey) (domain.Pubkey, error)
	HoldingAddress(realm domain.RealmID, mint domain.MintID) (domain.Identity, error)
}

// Handler serves the governance HTTP API.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic registers the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/realms/{realm}/records", h.HandleListRealmRecords)
	r.Get("/v1/realms/{realm}/mints/{mint}/owners/{owner}", h.HandleGetRecord)
	r.Get("/v1/realms/{realm}/mints/{mint}/owners/{owner}/address", h.HandleGetAddress)
	r.Get("/v1/delegates/{delegate}/records", h.HandleListDelegatedRecords)
}

// RegisterSigned registers the mutating routes. The router must already run
// the signer middleware.
func (h *Handler) RegisterSigned(r chi.Router) {
	r.Post("/v1/realms/{realm}/mints/{mint}/deposits", h.HandleDeposit)
	r.Post("/v1/realms/{realm}/mints/{mint}/owners/{owner}/withdrawal", h.HandleWithdraw)
	r.Put("/v1/realms/{realm}/mints/{mint}/owners/{owner}/delegate", h.HandleSetDelegate)
}

func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	realm, mint, err := realmAndMint(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.DepositGoverningTokens(ctx, &models.DepositRequest{
		Realm:           realm,
		Mint:            mint,
		Owner:           body.ParsedOwner(),
		Source:          body.ParsedSource(),
		SourceAuthority: body.ParsedSourceAuthority(),
		Payer:           body.ParsedPayer(),
		Amount:          body.ParsedAmount(),
		Signers:         requestcontext.Signers(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "deposit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	key, err := recordKey(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.WithdrawGoverningTokens(ctx, &models.WithdrawRequest{
		Realm:       key.Realm,
		Mint:        key.Mint,
		Owner:       key.Owner,
		Destination: body.ParsedDestination(),
		Signers:     requestcontext.Signers(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "withdraw", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleSetDelegate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	key, err := recordKey(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	body, ok := httputil.DecodeAndPrepare[SetDelegateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.SetGovernanceDelegate(ctx, &models.SetDelegateRequest{
		Realm:       key.Realm,
		Mint:        key.Mint,
		Owner:       key.Owner,
		NewDelegate: body.ParsedDelegate(),
		Signers:     requestcontext.Signers(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "set delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, err := recordKey(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.GetTokenOwnerRecord(ctx, key)
	if err != nil {
		h.writeServiceError(ctx, w, "get record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleGetAddress(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	addr, err := h.service.RecordAddress(key)
	if err != nil {
		h.writeServiceError(r.Context(), w, "derive address", err)
		return
	}
	holding, err := h.service.HoldingAddress(key.Realm, key.Mint)
	if err != nil {
		h.writeServiceError(r.Context(), w, "derive address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AddressResponse{
		Address:        addr.String(),
		HoldingAddress: holding.String(),
	})
}

func (h *Handler) HandleListRealmRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	realm, err := domain.ParseRealmID(chi.URLParam(r, "realm"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "realm is not a valid public key"))
		return
	}
	recs, err := h.service.ListRealmRecords(ctx, realm)
	if err != nil {
		h.writeServiceError(ctx, w, "list realm records", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newRecordList(recs))
}

func (h *Handler) HandleListDelegatedRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegate, err := parseIdentity("delegate", chi.URLParam(r, "delegate"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.service.ListDelegatedRecords(ctx, delegate)
	if err != nil {
		h.writeServiceError(ctx, w, "list delegated records", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newRecordList(recs))
}

// writeServiceError logs server-side failures at error level and client
// failures at warn, then writes the mapped response.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	status := httputil.StatusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestcontext.RequestID(ctx),
			"code", string(code),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"request_id", requestcontext.RequestID(ctx),
			"code", string(code),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func realmAndMint(r *http.Request) (domain.RealmID, domain.MintID, error) {
	realm, err := domain.ParseRealmID(chi.URLParam(r, "realm"))
	if err != nil {
		return domain.RealmID{}, domain.MintID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "realm is not a valid public key")
	}
	mint, err := domain.ParseMintID(chi.URLParam(r, "mint"))
	if err != nil {
		return domain.RealmID{}, domain.MintID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "mint is not a valid public key")
	}
	return realm, mint, nil
}

func recordKey(r *http.Request) (domain.RecordKey, error) {
	realm, mint, err := realmAndMint(r)
	if err != nil {
		return domain.RecordKey{}, err
	}
	owner, err := parseIdentity("owner", chi.URLParam(r, "owner"))
	if err != nil {
		return domain.RecordKey{}, err
	}
	return domain.RecordKey{Realm: realm, Mint: mint, Owner: owner}, nil
}
