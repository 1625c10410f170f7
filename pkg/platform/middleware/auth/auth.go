// Package auth authenticates the signers of a request.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/requestcontext"
)

// CosignerHeader carries additional signer tokens, one per header value.
const CosignerHeader = "X-Cosigner"

// maxSigners bounds the signer tokens accepted on one request.
const maxSigners = 8

// SignerValidator verifies one signer token against the request it was
// presented on and returns the identity that signed it.
type SignerValidator interface {
	VerifySigner(ctx context.Context, token string, binding Binding) (domain.Identity, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireSigners verifies the bearer token and every X-Cosigner token and
// stores the resulting signer set in the request context. Every token must be
// bound to this request's method, path and body. Any invalid token rejects
// the whole request.
func RequireSigners(validator SignerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			primary, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(primary) == "" {
				logger.WarnContext(ctx, "unauthenticated request - missing signer token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Missing or invalid Authorization header")
				return
			}

			tokens := append([]string{strings.TrimSpace(primary)}, r.Header.Values(CosignerHeader)...)
			if len(tokens) > maxSigners {
				writeJSONError(w, http.StatusBadRequest, "bad_request", "Too many signer tokens")
				return
			}

			binding, err := BindRequest(w, r)
			if err != nil {
				logger.WarnContext(ctx, "failed to read signed request body",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusBadRequest, "bad_request", "Request body could not be read")
				return
			}

			signers := make(domain.SignerSet, len(tokens))
			for _, token := range tokens {
				signer, err := validator.VerifySigner(ctx, strings.TrimSpace(token), binding)
				if err != nil {
					if dErrors.CodeOf(err) == dErrors.CodeInternal {
						logger.ErrorContext(ctx, "failed to verify signer token",
							"error", err,
							"request_id", requestID,
						)
						writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to verify signer token")
						return
					}
					logger.WarnContext(ctx, "unauthenticated request - invalid signer token",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Invalid, expired, replayed or unbound signer token")
					return
				}
				signers.Add(signer)
			}

			ctx = requestcontext.WithSigners(ctx, signers)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
