package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrAlreadyRostered    = errors.New("player is already rostered")
	ErrIneligible         = errors.New("player is ineligible")
	ErrRosterFull         = errors.New("roster is full")
	ErrNotRostered        = errors.New("player is not rostered")
	ErrDemandLimitReached = errors.New("demand limit reached")
	ErrInvalidTrade       = errors.New("invalid trade")
	ErrSameTeam           = errors.New("players are on the same team")
	ErrDuplicateProposal  = errors.New("duplicate pending proposal")
	ErrDeliveryFailed     = errors.New("delivery failed")
)
