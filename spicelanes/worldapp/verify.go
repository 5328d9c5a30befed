package worldapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

var (
	ErrMalformedProof  = errors.New("worldapp: malformed proof payload")
	ErrNullifierReused = errors.New("worldapp: nullifier already used")
	ErrProofRejected   = errors.New("worldapp: proof rejected by verifier")
)

// Proof is the payload the super-app's identity kit produces client-side.
type Proof struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
}

// VerifyResult reports a completed verification. Verified is false when the
// service ran in format-only mode because no portal credentials are
// configured.
type VerifyResult struct {
	Success       bool   `json:"success"`
	Verified      bool   `json:"verified"`
	NullifierHash string `json:"nullifier_hash"`
	Action        string `json:"action"`
}

// Verifier checks World ID proofs. With portal credentials it calls the
// Developer Portal; without them it validates payload shape only and records
// the nullifier, which is enough to keep dev environments replaying-safe but
// is NOT identity verification.
type Verifier struct {
	cfg        spicelanes.WorldAppConfig
	store      repositories.Store
	httpClient *http.Client
}

func NewVerifier(cfg spicelanes.WorldAppConfig, store repositories.Store) *Verifier {
	return &Verifier{
		cfg:   cfg,
		store: store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// portalEnabled reports whether real portal verification is configured. The
// decision is made from startup config, never probed per request.
func (v *Verifier) portalEnabled() bool {
	return v.cfg.Enabled && v.cfg.AppID != "" && v.cfg.PortalURL != ""
}

// Verify validates the proof for action, guards against nullifier replay,
// and consults the Developer Portal when configured.
func (v *Verifier) Verify(ctx context.Context, proof Proof, action string) (*VerifyResult, error) {
	if proof.MerkleRoot == "" || proof.NullifierHash == "" || proof.Proof == "" {
		return nil, ErrMalformedProof
	}

	seen, err := v.store.Nullifiers().Seen(ctx, proof.NullifierHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check nullifier: %w", err)
	}
	if seen {
		return nil, ErrNullifierReused
	}

	verified := false
	if v.portalEnabled() {
		if err := v.verifyWithPortal(ctx, proof, action); err != nil {
			return nil, err
		}
		verified = true
	} else {
		slog.Warn("World ID portal not configured, accepting proof on format only",
			slog.String("type", "sys"),
			slog.String("action", action))
	}

	if err := v.store.Nullifiers().Record(ctx, proof.NullifierHash, action); err != nil {
		return nil, fmt.Errorf("failed to record nullifier: %w", err)
	}

	return &VerifyResult{
		Success:       true,
		Verified:      verified,
		NullifierHash: proof.NullifierHash,
		Action:        action,
	}, nil
}

func (v *Verifier) verifyWithPortal(ctx context.Context, proof Proof, action string) error {
	payload := struct {
		Proof
		Action string `json:"action"`
	}{Proof: proof, Action: action}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode verify request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/verify/%s", v.cfg.PortalURL, v.cfg.AppID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call verifier portal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		slog.Warn("World ID proof rejected",
			slog.String("type", "sys"),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)))
		return ErrProofRejected
	}

	var portalResp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&portalResp); err != nil {
		return fmt.Errorf("failed to decode verify response: %w", err)
	}
	if !portalResp.Success {
		return ErrProofRejected
	}
	return nil
}
