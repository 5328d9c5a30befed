package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	apimodels "github.com/spicelanes/game-server/api/models"
	"github.com/spicelanes/game-server/api/utils"
	"github.com/spicelanes/game-server/spicelanes/worldapp"
)

// VerifyWorldID validates a World ID proof for an action.
func VerifyWorldID(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.VerifyWorldIDRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid proof payload", nil)
		}

		proof := worldapp.Proof{
			MerkleRoot:        req.MerkleRoot,
			NullifierHash:     req.NullifierHash,
			Proof:             req.Proof,
			VerificationLevel: req.VerificationLevel,
		}
		action := req.Action
		if action == "" {
			action = "register"
		}

		result, err := webApp.Verifier.Verify(c.Context(), proof, action)
		if err != nil {
			switch {
			case errors.Is(err, worldapp.ErrMalformedProof):
				return utils.SendBadRequest(c, "merkle_root, nullifier_hash and proof are required", nil)
			case errors.Is(err, worldapp.ErrNullifierReused):
				return utils.SendError(c, http.StatusConflict, "NULLIFIER_REUSED", "proof already used for this action", nil)
			case errors.Is(err, worldapp.ErrProofRejected):
				return utils.SendError(c, http.StatusUnprocessableEntity, "PROOF_REJECTED", "identity proof was rejected", nil)
			}
			return utils.SendError(c, http.StatusBadGateway, "VERIFIER_UNAVAILABLE", "identity verifier unavailable", nil)
		}
		return utils.SendSuccess(c, result, "")
	}
}

// InitiatePayment mints a payment reference for the pay kit.
func InitiatePayment(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.InitiatePaymentRequest
		if err := c.BodyParser(&req); err != nil || req.Address == "" {
			return utils.SendBadRequest(c, "address is required", nil)
		}
		reference, err := webApp.Payments.InitiatePayment(c.Context(), req.Address)
		if err != nil {
			return utils.SendInternalServerError(c, "failed to initiate payment")
		}
		return utils.SendCreated(c, fiber.Map{"reference": reference}, "")
	}
}

// VerifyPayment records a client-reported settlement.
func VerifyPayment(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req apimodels.VerifyPaymentRequest
		if err := c.BodyParser(&req); err != nil || req.Reference == "" {
			return utils.SendBadRequest(c, "reference is required", nil)
		}

		result, err := webApp.Payments.ConfirmPayment(c.Context(), worldapp.PaymentConfirmation{
			TransactionID: req.TransactionID,
			Reference:     req.Reference,
			Amount:        req.Amount,
			Token:         req.Token,
			Status:        req.Status,
		})
		if err != nil {
			switch {
			case errors.Is(err, worldapp.ErrUnknownReference):
				return utils.SendNotFound(c, "unknown payment reference")
			case errors.Is(err, worldapp.ErrPaymentFailed):
				return utils.SendError(c, http.StatusUnprocessableEntity, "PAYMENT_FAILED", "payment did not succeed", nil)
			}
			return utils.SendInternalServerError(c, "failed to confirm payment")
		}
		return utils.SendSuccess(c, result, "")
	}
}
