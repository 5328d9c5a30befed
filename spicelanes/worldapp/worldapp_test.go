package worldapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database/memstore"
)

func validProof() Proof {
	return Proof{
		MerkleRoot:        "0xabc",
		NullifierHash:     "0xdef",
		Proof:             "0x123",
		VerificationLevel: "orb",
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("FormatOnlyWhenUnconfigured", func(t *testing.T) {
		v := NewVerifier(spicelanes.WorldAppConfig{}, memstore.New())

		result, err := v.Verify(ctx, validProof(), "register")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Verified)
		assert.Equal(t, "register", result.Action)
	})

	t.Run("RejectsMissingFields", func(t *testing.T) {
		v := NewVerifier(spicelanes.WorldAppConfig{}, memstore.New())

		for _, proof := range []Proof{
			{},
			{MerkleRoot: "0xabc", Proof: "0x123"},
			{MerkleRoot: "0xabc", NullifierHash: "0xdef"},
			{NullifierHash: "0xdef", Proof: "0x123"},
		} {
			_, err := v.Verify(ctx, proof, "register")
			assert.ErrorIs(t, err, ErrMalformedProof)
		}
	})

	t.Run("RejectsNullifierReplay", func(t *testing.T) {
		v := NewVerifier(spicelanes.WorldAppConfig{}, memstore.New())

		_, err := v.Verify(ctx, validProof(), "register")
		require.NoError(t, err)
		_, err = v.Verify(ctx, validProof(), "register")
		assert.ErrorIs(t, err, ErrNullifierReused)
	})

	t.Run("PortalAccept", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/verify/app_test", r.URL.Path)
			assert.Equal(t, "Bearer key_test", r.Header.Get("Authorization"))

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "register", payload["action"])

			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}))
		defer srv.Close()

		v := NewVerifier(spicelanes.WorldAppConfig{
			Enabled:   true,
			AppID:     "app_test",
			APIKey:    "key_test",
			PortalURL: srv.URL,
		}, memstore.New())

		result, err := v.Verify(ctx, validProof(), "register")
		require.NoError(t, err)
		assert.True(t, result.Verified)
	})

	t.Run("PortalReject", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "code": "invalid_proof"})
		}))
		defer srv.Close()

		store := memstore.New()
		v := NewVerifier(spicelanes.WorldAppConfig{
			Enabled:   true,
			AppID:     "app_test",
			PortalURL: srv.URL,
		}, store)

		_, err := v.Verify(ctx, validProof(), "register")
		assert.ErrorIs(t, err, ErrProofRejected)

		// A rejected proof must not burn its nullifier.
		seen, err := store.Nullifiers().Seen(ctx, validProof().NullifierHash)
		require.NoError(t, err)
		assert.False(t, seen)
	})
}

func TestPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("InitiateThenConfirm", func(t *testing.T) {
		p := NewPayments(spicelanes.WorldAppConfig{}, memstore.New())

		ref, err := p.InitiatePayment(ctx, "0x1111")
		require.NoError(t, err)
		require.NotEmpty(t, ref)

		result, err := p.ConfirmPayment(ctx, PaymentConfirmation{
			TransactionID: "0xtx",
			Reference:     ref,
			Amount:        "0.1",
			Token:         "WLD",
			Status:        StatusSuccess,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Verified)
		assert.Equal(t, StatusSuccess, result.Status)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		p := NewPayments(spicelanes.WorldAppConfig{}, memstore.New())

		_, err := p.ConfirmPayment(ctx, PaymentConfirmation{Reference: "nope", Status: StatusSuccess})
		assert.ErrorIs(t, err, ErrUnknownReference)
	})

	t.Run("ProviderFailureMarksFailed", func(t *testing.T) {
		store := memstore.New()
		p := NewPayments(spicelanes.WorldAppConfig{}, store)

		ref, err := p.InitiatePayment(ctx, "0x1111")
		require.NoError(t, err)

		_, err = p.ConfirmPayment(ctx, PaymentConfirmation{Reference: ref, Status: "failed"})
		assert.ErrorIs(t, err, ErrPaymentFailed)

		payment, err := store.Payments().Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, payment.Status)
	})
}
