package domain

import "errors"

var (
	// ErrAlreadySuperseded is returned when superseding an event that is no longer active
	ErrAlreadySuperseded = errors.New("event already superseded")

	// ErrNoActiveEventsFound is returned when a supersession finds nothing to invalidate
	ErrNoActiveEventsFound = errors.New("no active events found")

	// ErrEventNotFound is returned when an event does not exist
	ErrEventNotFound = errors.New("event not found")

	// ErrEventNotSupersedable is returned when superseding a payment or a supersession record
	ErrEventNotSupersedable = errors.New("event cannot be superseded")

	// ErrContractMismatch is returned when an event belongs to a different contract
	ErrContractMismatch = errors.New("event belongs to another contract")

	// ErrLegacyContract is returned when the ledger is used for a contract that does not use event sourcing
	ErrLegacyContract = errors.New("contract does not use event sourcing")

	// ErrContractRequired is returned when the ledger is called without a contract
	ErrContractRequired = errors.New("contract is required")

	// ErrInvalidTrigger is returned when a triggered-by reference is malformed
	ErrInvalidTrigger = errors.New("invalid triggered-by reference")

	// ErrContractAlreadyCreated is returned when a contract already has its CREATED event
	ErrContractAlreadyCreated = errors.New("contract already has a CREATED event")
)
