package handler

import "realmgov/internal/governance/models"

// RecordListResponse wraps record listings.
type RecordListResponse struct {
	Records []*models.TokenOwnerRecord `json:"records"`
	Count   int                        `json:"count"`
}

// AddressResponse reports the derived addresses for a triple.
type AddressResponse struct {
	Address        string `json:"address"`
	HoldingAddress string `json:"holding_address"`
}

func newRecordList(recs []*models.TokenOwnerRecord) RecordListResponse {
	if recs == nil {
		recs = []*models.TokenOwnerRecord{}
	}
	return RecordListResponse{Records: recs, Count: len(recs)}
}
