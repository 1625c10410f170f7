package testutil

import (
	"crypto/rand"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"realmgov/pkg/domain"
	"realmgov/pkg/requestcontext"
)

// WithSigners adds a verified signer set to the request context.
// This simulates what the signer middleware does for authenticated requests.
func WithSigners(req *http.Request, signers ...domain.Identity) *http.Request {
	ctx := requestcontext.WithSigners(req.Context(), domain.NewSignerSet(signers...))
	return req.WithContext(ctx)
}

// NewIdentity returns a random non-zero identity.
func NewIdentity(t *testing.T) domain.Identity {
	t.Helper()
	var id domain.Identity
	for id.IsNil() {
		_, err := rand.Read(id[:])
		require.NoError(t, err)
	}
	return id
}

// NewRealmID returns a random realm identifier.
func NewRealmID(t *testing.T) domain.RealmID {
	t.Helper()
	return domain.RealmID(NewIdentity(t))
}

// NewMintID returns a random mint identifier.
func NewMintID(t *testing.T) domain.MintID {
	t.Helper()
	return domain.MintID(NewIdentity(t))
}
