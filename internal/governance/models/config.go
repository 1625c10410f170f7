package models

import (
	"fmt"

	"realmgov/pkg/domain"
)

// MintRole says which of a realm's two governing token kinds a mint is.
type MintRole string

const (
	MintRoleCommunity MintRole = "community"
	MintRoleCouncil   MintRole = "council"
)

// TokenType is the realm policy for a governing mint.
type TokenType string

const (
	// TokenTypeLiquid tokens can be deposited and withdrawn freely.
	TokenTypeLiquid TokenType = "liquid"
	// TokenTypeMembership tokens can be deposited but never withdrawn by the owner.
	TokenTypeMembership TokenType = "membership"
	// TokenTypeDormant tokens cannot be deposited.
	TokenTypeDormant TokenType = "dormant"
)

// ParseMintRole validates a role name.
func ParseMintRole(s string) (MintRole, error) {
	switch MintRole(s) {
	case MintRoleCommunity, MintRoleCouncil:
		return MintRole(s), nil
	}
	return "", fmt.Errorf("unknown mint role %q", s)
}

// ParseTokenType validates a token type, defaulting empty to liquid.
func ParseTokenType(s string) (TokenType, error) {
	switch TokenType(s) {
	case "":
		return TokenTypeLiquid, nil
	case TokenTypeLiquid, TokenTypeMembership, TokenTypeDormant:
		return TokenType(s), nil
	}
	return "", fmt.Errorf("unknown token type %q", s)
}

// MintConfig is what the realm registry knows about one governing mint.
type MintConfig struct {
	Realm     domain.RealmID `json:"realm"`
	Mint      domain.MintID  `json:"mint"`
	Role      MintRole       `json:"role"`
	TokenType TokenType      `json:"token_type"`
}

func (c MintConfig) AllowsDeposit() bool {
	return c.TokenType != TokenTypeDormant
}

func (c MintConfig) AllowsWithdrawal() bool {
	return c.TokenType != TokenTypeMembership
}

// HoldStatus is the vote-hold oracle's answer for one record.
type HoldStatus struct {
	OutstandingVotes     uint32 `json:"outstanding_votes"`
	OutstandingProposals uint32 `json:"outstanding_proposals"`
}

// Blocked reports whether any hold prevents withdrawal.
func (h HoldStatus) Blocked() bool {
	return h.OutstandingVotes > 0 || h.OutstandingProposals > 0
}
