package models

// OnboardRequest registers a new player and names their first ship.
type OnboardRequest struct {
	Address  string `json:"address"`
	ShipName string `json:"ship_name"`
}

type TravelRequest struct {
	Address  string `json:"address"`
	PlanetID int64  `json:"planet_id"`
}

type CompleteTravelRequest struct {
	Address string `json:"address"`
}

type BuyShipRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Class   int    `json:"class"`
}

type ActivateShipRequest struct {
	Address string `json:"address"`
	ShipID  int64  `json:"ship_id"`
}

type RefuelRequest struct {
	Address string `json:"address"`
	ShipID  int64  `json:"ship_id"`
	Amount  int64  `json:"amount"`
}

// MineRequest carries the fee the client pays, as a decimal string in credit
// base units.
type MineRequest struct {
	Address string `json:"address"`
	Fee     string `json:"fee"`
}

// TradeRequest describes one swap. Amounts are decimal strings; AmountIn is
// resource units when ResourceToCredits is set, credit base units otherwise.
// An empty MinAmountOut applies the conventional 5% bound.
type TradeRequest struct {
	Address           string `json:"address"`
	PlanetID          int64  `json:"planet_id"`
	Resource          int    `json:"resource"`
	ResourceToCredits bool   `json:"resource_to_credits"`
	AmountIn          string `json:"amount_in"`
	MinAmountOut      string `json:"min_amount_out"`
}

// VerifyWorldIDRequest is the proof payload from the client identity kit.
type VerifyWorldIDRequest struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Action            string `json:"action"`
}

type InitiatePaymentRequest struct {
	Address string `json:"address"`
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	Amount        string `json:"amount"`
	Token         string `json:"token"`
	Status        string `json:"status"`
}
