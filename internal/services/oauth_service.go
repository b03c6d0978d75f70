package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"returns-service/internal/cache"
	"returns-service/internal/clients"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonSlugSymbols  = regexp.MustCompile(`[^a-z0-9-]`)
	errEmptyStoreID = errors.New("token response has no store id")
)

// OAuthResult is the outcome of connecting a platform store
type OAuthResult struct {
	StoreID   uuid.UUID `json:"storeId"`
	StoreName string    `json:"storeName"`
	Updated   bool      `json:"updated"`
}

// OAuthService connects merchant storefronts through the platform's OAuth app flow
type OAuthService struct {
	stores      repository.StoreRepository
	platform    clients.NuvemshopClient
	signer      *StateSigner
	cache       cache.QueryCache
	clientID    string
	authBaseURL string
	logger      *logrus.Entry
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(
	stores repository.StoreRepository,
	platform clients.NuvemshopClient,
	signer *StateSigner,
	queryCache cache.QueryCache,
	clientID, authBaseURL string,
	logger *logrus.Logger,
) *OAuthService {
	return &OAuthService{
		stores:      stores,
		platform:    platform,
		signer:      signer,
		cache:       queryCache,
		clientID:    clientID,
		authBaseURL: strings.TrimRight(authBaseURL, "/"),
		logger:      logger.WithField("service", "oauth"),
	}
}

// GetInstallURL builds the platform authorization URL with a signed state
func (s *OAuthService) GetInstallURL(userID, storeName string) (string, error) {
	if userID == "" {
		return "", ErrInvalidOAuthState
	}
	state, err := s.signer.Sign(userID, storeName)
	if err != nil {
		return "", err
	}
	s.logger.WithField("user_id", userID).Info("Generated install URL")
	return fmt.Sprintf("%s/apps/%s/authorize?state=%s", s.authBaseURL, s.clientID, url.QueryEscape(state)), nil
}

// ExchangeToken verifies the state, trades the code for a token and creates or
// refreshes the merchant's store
func (s *OAuthService) ExchangeToken(ctx context.Context, code, state string) (*OAuthResult, error) {
	oauthState, err := s.signer.Verify(state)
	if err != nil {
		return nil, err
	}

	token, err := s.platform.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token.UserID == 0 {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, errEmptyStoreID)
	}

	platformStoreID := strconv.FormatInt(token.UserID, 10)
	apiURL := s.platform.StoreAPIURL(platformStoreID)
	log := s.logger.WithFields(logrus.Fields{
		"user_id":           oauthState.UserID,
		"platform_store_id": platformStoreID,
	})

	storeName := oauthState.StoreName
	if name, err := s.platform.GetStoreName(ctx, apiURL, token.AccessToken); err != nil {
		log.WithError(err).Warn("Could not fetch store info, keeping requested name")
	} else if name != "" {
		storeName = name
	}

	existing, err := s.stores.FindByPlatformID(ctx, platformStoreID, oauthState.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if err := s.stores.UpdateCredentials(ctx, existing.ID, token.AccessToken, apiURL, storeName); err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx, cache.StoreListKey(oauthState.UserID))
		log.WithField("store_id", existing.ID).Info("Updated existing store")
		return &OAuthResult{StoreID: existing.ID, StoreName: storeName, Updated: true}, nil
	}

	slug, err := s.availableSlug(ctx, Slugify(storeName), platformStoreID)
	if err != nil {
		return nil, err
	}

	store := &models.Store{
		UserID:           oauthState.UserID,
		Name:             storeName,
		Slug:             slug,
		APIKey:           token.AccessToken,
		APIURL:           apiURL,
		NuvemshopStoreID: &platformStoreID,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := s.stores.CreateWithSettings(ctx, store, models.DefaultStoreSettings(uuid.Nil)); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.StoreListKey(oauthState.UserID))

	log.WithField("store_id", store.ID).Info("Created new store")
	return &OAuthResult{StoreID: store.ID, StoreName: storeName, Updated: false}, nil
}

// availableSlug suffixes the platform store id when the slug is already taken
func (s *OAuthService) availableSlug(ctx context.Context, slug, platformStoreID string) (string, error) {
	if slug == "" {
		slug = "loja"
	}
	_, err := s.stores.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return slug, nil
	}
	if err != nil {
		return "", err
	}
	return slug + "-" + platformStoreID, nil
}

// Slugify lowercases the name, joins words with dashes and drops other symbols
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	return nonSlugSymbols.ReplaceAllString(slug, "")
}
