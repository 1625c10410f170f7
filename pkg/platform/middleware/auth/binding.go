package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBoundBody bounds the body read to compute a request binding.
const maxBoundBody = 64 << 10

// Binding is the request a signer token authorizes: the method, the path and
// the SHA-256 of the exact body bytes. A token bound to one request is
// rejected on any other.
type Binding struct {
	Method   string
	Path     string
	BodyHash string
}

// HashBody returns the unpadded base64url SHA-256 of body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewBinding builds the binding a client signs for method, path and body.
func NewBinding(method, path string, body []byte) Binding {
	return Binding{Method: strings.ToUpper(method), Path: path, BodyHash: HashBody(body)}
}

// BindRequest reads the body of r, puts it back for the handler and returns
// the binding of r.
func BindRequest(w http.ResponseWriter, r *http.Request) (Binding, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBoundBody))
		if err != nil {
			return Binding{}, fmt.Errorf("read request body: %w", err)
		}
		_ = r.Body.Close()
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return NewBinding(r.Method, r.URL.Path, body), nil
}
