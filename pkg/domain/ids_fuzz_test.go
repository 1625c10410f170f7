package domain

import (
	"testing"
)

// FuzzParseIdentity checks that parsing never panics on arbitrary input and
// that accepted input always round-trips.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add(DefaultProgramID)
	f.Add("11111111111111111111111111111111")
	f.Add("not-base58-0OIl")
	f.Add("'; DROP TABLE token_owner_records;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseIdentity(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Fatal("zero identity accepted")
		}
		again, err := ParseIdentity(id.String())
		if err != nil {
			t.Fatalf("valid identity failed round-trip: %v", err)
		}
		if again != id {
			t.Fatal("round-trip changed identity")
		}
	})
}

// FuzzParseAllIDs ensures every identifier kind validates the same way.
func FuzzParseAllIDs(f *testing.F) {
	f.Add(DefaultProgramID)
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errRealm := ParseRealmID(input)
		_, errMint := ParseMintID(input)
		_, errIdentity := ParseIdentity(input)

		if (errRealm == nil) != (errMint == nil) || (errMint == nil) != (errIdentity == nil) {
			t.Error("inconsistent parsing across identifier kinds")
		}
	})
}
