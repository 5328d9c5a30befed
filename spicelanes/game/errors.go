package game

// ErrorKind classifies an engine rejection for the presentation layer.
// Validation errors are malformed caller input, preconditions are well-formed
// requests the current state forbids. Both fail before any state change.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindPrecondition
	KindNotFound
)

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// Validation
	ErrInvalidClass    = &Error{KindValidation, "InvalidClass", "unknown ship class"}
	ErrInvalidShipName = &Error{KindValidation, "InvalidShipName", "ship name must be 1-32 characters"}
	ErrInvalidAmount   = &Error{KindValidation, "InvalidAmount", "amount must be positive"}
	ErrInvalidResource = &Error{KindValidation, "InvalidResource", "unknown resource"}
	ErrUnknownPlanet   = &Error{KindValidation, "UnknownPlanet", "unknown planet"}

	// Preconditions
	ErrAlreadyRegistered   = &Error{KindPrecondition, "AlreadyRegistered", "player is already registered"}
	ErrNotRegistered       = &Error{KindPrecondition, "NotRegistered", "player is not registered"}
	ErrInsufficientCredits = &Error{KindPrecondition, "InsufficientCredits", "not enough credits"}
	ErrInsufficientBalance = &Error{KindPrecondition, "InsufficientBalance", "not enough balance"}
	ErrInsufficientSpice   = &Error{KindPrecondition, "InsufficientSpice", "not enough spice in cargo"}
	ErrInsufficientFuel    = &Error{KindPrecondition, "InsufficientFuel", "active ship does not carry enough fuel"}
	ErrInsufficientFee     = &Error{KindPrecondition, "InsufficientFee", "mining fee underpaid"}
	ErrOverCapacity        = &Error{KindPrecondition, "OverCapacity", "refuel amount exceeds tank capacity"}
	ErrNotOwner            = &Error{KindPrecondition, "NotOwner", "ship does not belong to this account"}
	ErrNoActiveShip        = &Error{KindPrecondition, "NoActiveShip", "account has no active ship"}
	ErrAlreadyTraveling    = &Error{KindPrecondition, "AlreadyTraveling", "a trip is already in progress"}
	ErrSamePlanet          = &Error{KindPrecondition, "SamePlanet", "already docked at this planet"}
	ErrNotTraveling        = &Error{KindPrecondition, "NotTraveling", "no trip in progress"}
	ErrStillEnRoute        = &Error{KindPrecondition, "StillEnRoute", "trip has not finished yet"}
	ErrCooldownActive      = &Error{KindPrecondition, "CooldownActive", "mining cooldown active"}
	ErrSlippageExceeded    = &Error{KindPrecondition, "SlippageExceeded", "trade output below minimum"}

	// Lookups
	ErrShipNotFound    = &Error{KindNotFound, "ShipNotFound", "ship not found"}
	ErrAccountNotFound = &Error{KindNotFound, "AccountNotFound", "account not found"}
	ErrPoolNotFound    = &Error{KindNotFound, "PoolNotFound", "no market pool for this pair"}
)
