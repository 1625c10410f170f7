package domain

import (
	"fmt"

	"github.com/mr-tron/base58"

	dErrors "realmgov/pkg/domain-errors"
)

// PubkeyLength is the byte length of every on-ledger identifier.
const PubkeyLength = 32

// Pubkey is a raw 32-byte identifier rendered as base58.
//
// The typed wrappers below (RealmID, MintID, Identity) are distinct types so
// the compiler keeps a mint from being passed where an owner is expected.
// Construct them via the Parse* functions at trust boundaries.
type Pubkey [PubkeyLength]byte

// RealmID identifies a governance realm.
type RealmID Pubkey

// MintID identifies a governing token mint (community or council).
type MintID Pubkey

// Identity identifies a principal: a token owner, delegate, signer or token
// account endpoint.
type Identity Pubkey

func parsePubkey(s, kind string) (Pubkey, error) {
	if s == "" {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+": not base58")
	}
	if len(raw) != PubkeyLength {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("invalid %s: expected %d bytes, got %d", kind, PubkeyLength, len(raw)))
	}
	var pk Pubkey
	copy(pk[:], raw)
	if pk.IsNil() {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+": zero key")
	}
	return pk, nil
}

// ParsePubkey parses a base58 32-byte key.
func ParsePubkey(s string) (Pubkey, error) {
	return parsePubkey(s, "pubkey")
}

// ParseRealmID parses a base58 realm identifier.
func ParseRealmID(s string) (RealmID, error) {
	pk, err := parsePubkey(s, "realm")
	return RealmID(pk), err
}

// ParseMintID parses a base58 governing token mint identifier.
func ParseMintID(s string) (MintID, error) {
	pk, err := parsePubkey(s, "mint")
	return MintID(pk), err
}

// ParseIdentity parses a base58 principal identifier.
func ParseIdentity(s string) (Identity, error) {
	pk, err := parsePubkey(s, "identity")
	return Identity(pk), err
}

// MustPubkey parses s or panics. Intended for constants and tests.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func (p Pubkey) String() string { return base58.Encode(p[:]) }
func (p Pubkey) IsNil() bool    { return p == Pubkey{} }
func (p Pubkey) Bytes() []byte  { return append([]byte(nil), p[:]...) }

func (id RealmID) String() string  { return Pubkey(id).String() }
func (id RealmID) IsNil() bool     { return Pubkey(id).IsNil() }
func (id MintID) String() string   { return Pubkey(id).String() }
func (id MintID) IsNil() bool      { return Pubkey(id).IsNil() }
func (id Identity) String() string { return Pubkey(id).String() }
func (id Identity) IsNil() bool    { return Pubkey(id).IsNil() }

func (p Pubkey) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Pubkey) UnmarshalText(b []byte) error {
	pk, err := ParsePubkey(string(b))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

func (id RealmID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RealmID) UnmarshalText(b []byte) error {
	parsed, err := ParseRealmID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id MintID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *MintID) UnmarshalText(b []byte) error {
	parsed, err := ParseMintID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SignerSet is the set of identities that authorized an operation.
type SignerSet map[Identity]struct{}

// NewSignerSet builds a set from the given identities, skipping zero keys.
func NewSignerSet(ids ...Identity) SignerSet {
	s := make(SignerSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add records id as a signer.
func (s SignerSet) Add(id Identity) {
	if id.IsNil() {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id signed. A nil set has no signers.
func (s SignerSet) Has(id Identity) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// Slice returns the signers in unspecified order.
func (s SignerSet) Slice() []Identity {
	out := make([]Identity, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
