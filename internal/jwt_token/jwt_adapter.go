package jwttoken

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/platform/audit"
	authmw "realmgov/pkg/platform/middleware/auth"
	"realmgov/pkg/requestcontext"
)

// AuditPublisher records security events raised while verifying tokens.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SignerVerifier combines token validation with the replay guard so the
// signer middleware sees a single check per header.
type SignerVerifier struct {
	service *SignerTokenService
	replay  ReplayGuard
	audit   AuditPublisher
	logger  *slog.Logger
}

// VerifierOption configures a SignerVerifier.
type VerifierOption func(*SignerVerifier)

// WithAuditPublisher records replayed tokens as security events.
func WithAuditPublisher(p AuditPublisher) VerifierOption {
	return func(v *SignerVerifier) { v.audit = p }
}

// WithLogger sets the logger used when the audit write fails.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *SignerVerifier) { v.logger = logger }
}

func NewSignerVerifier(service *SignerTokenService, replay ReplayGuard, opts ...VerifierOption) *SignerVerifier {
	v := &SignerVerifier{service: service, replay: replay, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ authmw.SignerValidator = (*SignerVerifier)(nil)

// VerifySigner validates the token, checks that it was issued for this
// request and claims its jti. The binding is checked before the claim so a
// token presented on the wrong request is not burned.
func (v *SignerVerifier) VerifySigner(ctx context.Context, tokenString string, binding authmw.Binding) (domain.Identity, error) {
	signer, claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return domain.Identity{}, err
	}
	if !sameBinding(claims.Binding(), binding) {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "signer token is bound to a different request")
	}
	if v.replay != nil {
		first, err := v.replay.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check signer token replay")
		}
		if !first {
			v.auditReplay(ctx, signer, binding)
			return domain.Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "signer token already used")
		}
	}
	return signer, nil
}

func sameBinding(a, b authmw.Binding) bool {
	return a.Method == b.Method &&
		a.Path == b.Path &&
		subtle.ConstantTimeCompare([]byte(a.BodyHash), []byte(b.BodyHash)) == 1
}

// auditReplay is best effort; the request is rejected either way.
func (v *SignerVerifier) auditReplay(ctx context.Context, signer domain.Identity, binding authmw.Binding) {
	if v.audit == nil {
		return
	}
	err := v.audit.Emit(ctx, audit.Event{
		Subject:   signer.String(),
		Action:    string(audit.EventSignerReplay),
		ActorID:   signer.String(),
		Reason:    binding.Method + " " + binding.Path,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		v.logger.WarnContext(ctx, "failed to audit replayed signer token",
			"signer", signer.String(),
			"error", err,
		)
	}
}
