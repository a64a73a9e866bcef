package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"deep-research-be/internal/config"
	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.AuthResponse, error)
}

type oauthService struct {
	uowFactory   unitofwork.RepositoryFactory
	googleConfig *oauth2.Config
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewOAuthService(cfg *config.Config, uowFactory unitofwork.RepositoryFactory) IOAuthService {
	return &oauthService{
		uowFactory: uowFactory,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "google" {
		return "", fmt.Errorf("unsupported oauth provider: %s", provider)
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(stateBytes)

	return s.googleConfig.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.AuthResponse, error) {
	if provider != "google" {
		return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, info)
	if err != nil {
		return nil, err
	}

	jwtToken, err := signToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: jwtToken, User: toUserResponse(user)}, nil
}

func (s *oauthService) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo?access_token="+accessToken, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return &info, nil
}

func (s *oauthService) findOrCreateUser(ctx context.Context, info *googleUserInfo) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByProvider{Provider: "google", ProviderID: info.ID})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// Existing local account with the same email gets linked to google.
	user, err = repo.FindOne(ctx, specification.ByEmail{Email: info.Email})
	if err != nil {
		return nil, err
	}
	if user != nil {
		user.Provider = "google"
		user.ProviderId = info.ID
		if user.AvatarUrl == "" {
			user.AvatarUrl = info.Picture
		}
		if err := repo.Update(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("[OAuth Service] Linked google account for %s", user.Email)
		return user, nil
	}

	user = &entity.User{
		FullName:   info.Name,
		Email:      info.Email,
		Provider:   "google",
		ProviderId: info.ID,
		AvatarUrl:  info.Picture,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[OAuth Service] Created user %s via google login", user.Email)
	return user, nil
}
