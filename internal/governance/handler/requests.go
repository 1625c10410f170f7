package handler

import (
	"strconv"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
)

// DepositRequest is the body of POST .../deposits. Amount is a decimal string
// so values above 2^53 survive JSON clients.
type DepositRequest struct {
	Owner           string `json:"owner"`
	Source          string `json:"source"`
	SourceAuthority string `json:"source_authority"`
	Payer           string `json:"payer"`
	Amount          string `json:"amount"`

	owner           domain.Identity
	source          domain.Identity
	sourceAuthority domain.Identity
	payer           domain.Identity
	amount          uint64
}

func (r *DepositRequest) Validate() error {
	var err error
	if r.owner, err = parseIdentity("owner", r.Owner); err != nil {
		return err
	}
	if r.source, err = parseIdentity("source", r.Source); err != nil {
		return err
	}
	if r.sourceAuthority, err = parseIdentity("source_authority", r.SourceAuthority); err != nil {
		return err
	}
	if r.Payer == "" {
		r.payer = r.owner
	} else if r.payer, err = parseIdentity("payer", r.Payer); err != nil {
		return err
	}
	if r.Amount == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "amount is required")
	}
	r.amount, err = strconv.ParseUint(r.Amount, 10, 64)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be a base-10 unsigned 64-bit integer")
	}
	if r.amount == 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	return nil
}

func (r *DepositRequest) ParsedOwner() domain.Identity           { return r.owner }
func (r *DepositRequest) ParsedSource() domain.Identity          { return r.source }
func (r *DepositRequest) ParsedSourceAuthority() domain.Identity { return r.sourceAuthority }
func (r *DepositRequest) ParsedPayer() domain.Identity           { return r.payer }
func (r *DepositRequest) ParsedAmount() uint64                   { return r.amount }

// WithdrawRequest is the body of POST .../withdrawal.
type WithdrawRequest struct {
	Destination string `json:"destination"`

	destination domain.Identity
}

func (r *WithdrawRequest) Validate() error {
	var err error
	r.destination, err = parseIdentity("destination", r.Destination)
	return err
}

func (r *WithdrawRequest) ParsedDestination() domain.Identity { return r.destination }

// SetDelegateRequest is the body of PUT .../delegate. A null or absent
// delegate revokes delegation.
type SetDelegateRequest struct {
	Delegate *string `json:"delegate"`

	delegate *domain.Identity
}

func (r *SetDelegateRequest) Validate() error {
	if r.Delegate == nil || *r.Delegate == "" {
		r.delegate = nil
		return nil
	}
	id, err := parseIdentity("delegate", *r.Delegate)
	if err != nil {
		return err
	}
	r.delegate = &id
	return nil
}

func (r *SetDelegateRequest) ParsedDelegate() *domain.Identity { return r.delegate }

func parseIdentity(field, s string) (domain.Identity, error) {
	if s == "" {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	id, err := domain.ParseIdentity(s)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, field+" is not a valid public key")
	}
	if id.IsNil() {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the zero key")
	}
	return id, nil
}
