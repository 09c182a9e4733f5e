package domain

import "github.com/shopspring/decimal"

// Metadata keys written by the ledger
const (
	MetaReason                 = "reason"
	MetaIsCompensating         = "isCompensating"
	MetaSupersededAgreementIDs = "supersededAgreementIds"
	MetaSupersededEventIDs     = "supersededEventIds"
	MetaSupersededEventCount   = "supersededEventCount"
	MetaAgreementNumber        = "agreementNumber"
	MetaDocumentNumber         = "documentNumber"
)

// DefaultDriftEpsilon is the tolerated difference between the ledger total and the contract record
var DefaultDriftEpsilon = decimal.RequireFromString("0.01")
