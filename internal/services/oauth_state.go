package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

const defaultStateTTL = 15 * time.Minute

// OAuthState is what the install flow carries through the platform redirect
type OAuthState struct {
	UserID    string `json:"userId"`
	StoreName string `json:"storeName"`
	ExpiresAt int64  `json:"exp"`
}

// StateSigner issues and verifies stateless HMAC-SHA256 OAuth state tokens.
// Token format: base64url(json payload) "." base64url(HMAC(payload)).
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewStateSigner creates a signer; an empty secret falls back to an insecure default
func NewStateSigner(secret string, ttl time.Duration, clock Clock) *StateSigner {
	if secret == "" {
		secret = "default-oauth-state-secret-change-me"
		log.Println("WARNING: OAUTH_STATE_SECRET not set, using insecure default")
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Sign produces a state token for the user and requested store name
func (s *StateSigner) Sign(userID, storeName string) (string, error) {
	payload, err := json.Marshal(OAuthState{
		UserID:    userID,
		StoreName: storeName,
		ExpiresAt: s.clock.Now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	mac := s.computeHMAC(encoded)
	return encoded + "." + base64.RawURLEncoding.EncodeToString(mac), nil
}

// Verify checks signature and expiry and returns the decoded state
func (s *StateSigner) Verify(token string) (*OAuthState, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return nil, ErrInvalidOAuthState
	}

	providedMAC, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return nil, ErrInvalidOAuthState
	}
	if subtle.ConstantTimeCompare(providedMAC, s.computeHMAC(encoded)) != 1 {
		return nil, ErrInvalidOAuthState
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidOAuthState
	}
	var state OAuthState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, ErrInvalidOAuthState
	}

	if state.UserID == "" || s.clock.Now().Unix() > state.ExpiresAt {
		return nil, ErrInvalidOAuthState
	}
	return &state, nil
}

func (s *StateSigner) computeHMAC(encodedPayload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(encodedPayload))
	return h.Sum(nil)
}
