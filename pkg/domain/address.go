package domain

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

// DefaultProgramID is the address of the governance program that owns every
// record address derived here.
const DefaultProgramID = "GovER5Lthms3bLBqWub97yVrMmEogzX7xNjdXpPPCVZw"

const (
	maxSeedLength  = 32
	maxSeeds       = 16
	pdaMarker      = "ProgramDerivedAddress"
	governanceSeed = "governance"
)

var (
	// ErrMaxSeedLength is returned when a single seed exceeds 32 bytes.
	ErrMaxSeedLength = errors.New("seed exceeds 32 bytes")
	// ErrTooManySeeds is returned when more than 16 seeds are supplied.
	ErrTooManySeeds = errors.New("too many seeds")
	// ErrNoViableBump is returned when every bump yields an on-curve point.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
	// ErrOnCurve is returned by CreateProgramAddress when the digest is a
	// valid ed25519 point and so could have a private key.
	ErrOnCurve = errors.New("derived address lies on the ed25519 curve")
)

// CreateProgramAddress hashes seeds || programID || "ProgramDerivedAddress"
// with SHA-256. The result is rejected when it decodes as an ed25519 point.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > maxSeeds {
		return Pubkey{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return Pubkey{}, ErrMaxSeedLength
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out Pubkey
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out) {
		return Pubkey{}, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress tries bump seeds from 255 down to 0 and returns the
// first off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
func IsOnCurve(b Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}

// RecordKey is the natural key of a token owner record.
type RecordKey struct {
	Realm RealmID
	Mint  MintID
	Owner Identity
}

// Validate rejects zero identifiers.
func (k RecordKey) Validate() error {
	switch {
	case k.Realm.IsNil():
		return errors.New("realm is required")
	case k.Mint.IsNil():
		return errors.New("governing token mint is required")
	case k.Owner.IsNil():
		return errors.New("governing token owner is required")
	}
	return nil
}

// TokenOwnerRecordAddress derives the record address for (realm, mint, owner)
// from seeds ["governance", realm, mint, owner]. Any caller holding the triple
// and the program id computes the same address.
func TokenOwnerRecordAddress(programID Pubkey, key RecordKey) (Pubkey, error) {
	addr, _, err := FindProgramAddress([][]byte{
		[]byte(governanceSeed),
		key.Realm[:],
		key.Mint[:],
		key.Owner[:],
	}, programID)
	return addr, err
}

// GoverningTokenHoldingAddress derives the realm custody account for a mint
// from seeds ["governance", realm, mint].
func GoverningTokenHoldingAddress(programID Pubkey, realm RealmID, mint MintID) (Identity, error) {
	addr, _, err := FindProgramAddress([][]byte{
		[]byte(governanceSeed),
		realm[:],
		mint[:],
	}, programID)
	return Identity(addr), err
}
