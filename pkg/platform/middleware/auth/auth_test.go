package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	"realmgov/pkg/requestcontext"
)

type stubValidator map[string]domain.Identity

func (s stubValidator) VerifySigner(_ context.Context, token string, binding Binding) (domain.Identity, error) {
	if binding.Method == "" || binding.BodyHash == "" {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "unbound signer token")
	}
	if token == "broken" {
		return domain.Identity{}, errors.New("redis down")
	}
	id, ok := s[token]
	if !ok {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "invalid signer token")
	}
	return id, nil
}

func TestRequireSigners(t *testing.T) {
	owner := domain.Identity(domain.MustPubkey(domain.DefaultProgramID))
	var payer domain.Identity
	payer[0] = 7
	validator := stubValidator{"owner-token": owner, "payer-token": payer}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got domain.SignerSet
	h := RequireSigners(validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.Signers(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(auth string, cosigners ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		for _, c := range cosigners {
			req.Header.Add(CosignerHeader, c)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("collects bearer and cosigners", func(t *testing.T) {
		rr := serve("Bearer owner-token", "payer-token")
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, got.Has(owner))
		assert.True(t, got.Has(payer))
	})

	t.Run("missing header", func(t *testing.T) {
		rr := serve("")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthenticated")
	})

	t.Run("one bad cosigner rejects the request", func(t *testing.T) {
		rr := serve("Bearer owner-token", "forged")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("verifier failure is internal", func(t *testing.T) {
		rr := serve("Bearer broken")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

type recordingValidator struct {
	signer  domain.Identity
	binding Binding
}

func (v *recordingValidator) VerifySigner(_ context.Context, _ string, binding Binding) (domain.Identity, error) {
	v.binding = binding
	return v.signer, nil
}

func TestRequireSigners_BindsRequest(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	body := []byte(`{"amount":"5","destination":"x"}`)

	t.Run("validator sees method path and body hash", func(t *testing.T) {
		v := &recordingValidator{}
		var seen []byte
		h := RequireSigners(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodPost, "/owners/abc/withdrawal", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer t")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, NewBinding(http.MethodPost, "/owners/abc/withdrawal", body), v.binding)
		assert.Equal(t, body, seen, "handler still reads the body")
	})

	t.Run("different body gives different binding", func(t *testing.T) {
		a := NewBinding(http.MethodPost, "/p", body)
		b := NewBinding(http.MethodPost, "/p", []byte(`{"amount":"5","destination":"y"}`))
		assert.NotEqual(t, a.BodyHash, b.BodyHash)
		assert.Equal(t, HashBody(nil), NewBinding("post", "/p", nil).BodyHash)
		assert.Equal(t, http.MethodPost, NewBinding("post", "/p", nil).Method)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		v := &recordingValidator{}
		h := RequireSigners(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodPost, "/p", bytes.NewReader(make([]byte, maxBoundBody+1)))
		req.Header.Set("Authorization", "Bearer t")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
