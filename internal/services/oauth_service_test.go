package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"returns-service/internal/cache"
	"returns-service/internal/clients"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

func newOAuthFixture() (*MockStoreRepository, *MockNuvemshopClient, *StateSigner, *OAuthService) {
	stores := new(MockStoreRepository)
	platform := new(MockNuvemshopClient)
	signer := NewStateSigner("secret", 15*time.Minute, nil)
	service := NewOAuthService(stores, platform, signer, cache.NoopCache{}, "4321", "https://auth.test/", testLogger())
	return stores, platform, signer, service
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Minha Loja":        "minha-loja",
		"  Loja   Bonita ":  "-loja-bonita-",
		"Loja & Cia. 2024!": "loja--cia-2024",
		"Café":              "caf",
		"":                  "",
	}
	for input, want := range tests {
		assert.Equal(t, want, Slugify(input), input)
	}
}

func TestOAuthService_GetInstallURL(t *testing.T) {
	_, _, signer, service := newOAuthFixture()

	installURL, err := service.GetInstallURL("user-1", "Minha Loja")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(installURL, "https://auth.test/apps/4321/authorize?state="))

	parsed, err := url.Parse(installURL)
	require.NoError(t, err)
	state, err := signer.Verify(parsed.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, "Minha Loja", state.StoreName)

	_, err = service.GetInstallURL("", "Loja")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}

func TestOAuthService_ExchangeToken_CreatesStore(t *testing.T) {
	stores, platform, signer, service := newOAuthFixture()
	state, err := signer.Sign("user-1", "Requested Name")
	require.NoError(t, err)

	platform.On("ExchangeCode", mock.Anything, "code-1").Return(&clients.TokenResponse{AccessToken: "tok", UserID: 777}, nil)
	platform.On("GetStoreName", mock.Anything, "https://api.test/v1/777", "tok").Return("Loja Bonita", nil)
	stores.On("FindByPlatformID", mock.Anything, "777", "user-1").Return(nil, repository.ErrNotFound)
	stores.On("GetBySlug", mock.Anything, "loja-bonita").Return(&models.Store{}, nil)
	stores.On("CreateWithSettings", mock.Anything, mock.MatchedBy(func(s *models.Store) bool {
		return s.UserID == "user-1" &&
			s.Name == "Loja Bonita" &&
			s.Slug == "loja-bonita-777" &&
			s.APIKey == "tok" &&
			s.APIURL == "https://api.test/v1/777" &&
			*s.NuvemshopStoreID == "777"
	}), mock.AnythingOfType("*models.StoreSettings")).Return(nil)

	result, err := service.ExchangeToken(context.Background(), "code-1", state)
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Equal(t, "Loja Bonita", result.StoreName)
	stores.AssertExpectations(t)
}

func TestOAuthService_ExchangeToken_UpdatesExistingStore(t *testing.T) {
	stores, platform, signer, service := newOAuthFixture()
	state, err := signer.Sign("user-1", "Requested Name")
	require.NoError(t, err)
	existing := testStore("user-1")

	platform.On("ExchangeCode", mock.Anything, "code-1").Return(&clients.TokenResponse{AccessToken: "new-tok", UserID: 777}, nil)
	platform.On("GetStoreName", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	stores.On("FindByPlatformID", mock.Anything, "777", "user-1").Return(existing, nil)
	stores.On("UpdateCredentials", mock.Anything, existing.ID, "new-tok", "https://api.test/v1/777", "Requested Name").Return(nil)

	result, err := service.ExchangeToken(context.Background(), "code-1", state)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, existing.ID, result.StoreID)
	assert.Equal(t, "Requested Name", result.StoreName)
	stores.AssertNotCalled(t, "CreateWithSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestOAuthService_ExchangeToken_Failures(t *testing.T) {
	t.Run("tampered state", func(t *testing.T) {
		_, platform, _, service := newOAuthFixture()
		_, err := service.ExchangeToken(context.Background(), "code-1", "forged.state")
		assert.ErrorIs(t, err, ErrInvalidOAuthState)
		platform.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
	})

	t.Run("code rejected", func(t *testing.T) {
		_, platform, signer, service := newOAuthFixture()
		state, _ := signer.Sign("user-1", "Loja")
		platform.On("ExchangeCode", mock.Anything, "bad").Return(nil, clients.NewStatusError("Nuvemshop", 400, []byte("invalid_grant")))

		_, err := service.ExchangeToken(context.Background(), "bad", state)
		assert.ErrorIs(t, err, ErrTokenExchange)
	})

	t.Run("token without store id", func(t *testing.T) {
		_, platform, signer, service := newOAuthFixture()
		state, _ := signer.Sign("user-1", "Loja")
		platform.On("ExchangeCode", mock.Anything, "code").Return(&clients.TokenResponse{AccessToken: "tok"}, nil)

		_, err := service.ExchangeToken(context.Background(), "code", state)
		assert.ErrorIs(t, err, ErrTokenExchange)
	})
}
