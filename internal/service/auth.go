package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaekwang-park/task-api/internal/cognito"
	"github.com/jaekwang-park/task-api/internal/model"
	"github.com/jaekwang-park/task-api/internal/repository"
)

// AuthService handles authentication-related business logic.
type AuthService struct {
	cognitoClient cognito.Client
	userRepo      repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cognitoClient cognito.Client, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cognitoClient: cognitoClient,
		userRepo:      userRepo,
	}
}

// --- Input/Output types ---

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterOutput struct {
	UserSub   string `json:"user_sub"`
	Confirmed bool   `json:"confirmed"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type LogoutInput struct {
	AccessToken string
}

// --- Service methods ---

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (RegisterOutput, error) {
	if s.cognitoClient == nil {
		return RegisterOutput{}, ErrAuthNotConfigured
	}

	var verr ValidationError
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "El campo nombre es obligatorio.")
	}
	if strings.TrimSpace(input.Email) == "" {
		verr.Add("email", "El campo email es obligatorio.")
	}
	if input.Password == "" {
		verr.Add("password", "El campo contraseña es obligatorio.")
	}
	if err := verr.orNil(); err != nil {
		return RegisterOutput{}, err
	}

	out, err := s.cognitoClient.SignUp(ctx, cognito.SignUpInput{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	})
	if err != nil {
		return RegisterOutput{}, err
	}

	return RegisterOutput{
		UserSub:   out.UserSub,
		Confirmed: out.Confirmed,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginOutput, error) {
	if s.cognitoClient == nil {
		return LoginOutput{}, ErrAuthNotConfigured
	}

	var verr ValidationError
	if strings.TrimSpace(input.Email) == "" {
		verr.Add("email", "El campo email es obligatorio.")
	}
	if input.Password == "" {
		verr.Add("password", "El campo contraseña es obligatorio.")
	}
	if err := verr.orNil(); err != nil {
		return LoginOutput{}, err
	}

	authOut, err := s.cognitoClient.Login(ctx, cognito.LoginInput{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	})
	if err != nil {
		return LoginOutput{}, err
	}

	// The ID token was just issued by Cognito over TLS; only its payload is read.
	claims, err := extractClaims(authOut.IDToken)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to read id token claims: %w", err)
	}
	email := claims.Email
	if email == "" {
		email = strings.TrimSpace(input.Email)
	}

	if _, err := s.userRepo.GetOrCreate(ctx, claims.Sub, email, claims.Name); err != nil {
		return LoginOutput{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	return LoginOutput{
		IDToken:      authOut.IDToken,
		AccessToken:  authOut.AccessToken,
		RefreshToken: authOut.RefreshToken,
		ExpiresIn:    authOut.ExpiresIn,
		TokenType:    authOut.TokenType,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.cognitoClient == nil {
		return ErrAuthNotConfigured
	}
	if input.AccessToken == "" {
		var verr ValidationError
		verr.Add("access_token", "El campo access_token es obligatorio.")
		return &verr
	}

	return s.cognitoClient.GlobalSignOut(ctx, cognito.GlobalSignOutInput{
		AccessToken: input.AccessToken,
	})
}

// Profile returns the caller's user row.
func (s *AuthService) Profile(ctx context.Context, userID string) (model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

type idTokenClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// extractClaims decodes the JWT payload without verifying the signature.
func extractClaims(idToken string) (idTokenClaims, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return idTokenClaims{}, fmt.Errorf("invalid JWT format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return idTokenClaims{}, fmt.Errorf("failed to decode JWT payload: %w", err)
	}

	var claims idTokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return idTokenClaims{}, fmt.Errorf("failed to parse JWT claims: %w", err)
	}
	if claims.Sub == "" {
		return idTokenClaims{}, fmt.Errorf("sub claim not found in JWT")
	}

	return claims, nil
}
