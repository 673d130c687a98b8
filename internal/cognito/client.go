package cognito

import "context"

// Client is the subset of the Cognito user-pool API the service relies on.
type Client interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error)
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, input GlobalSignOutInput) error
}

// SignUpInput registers a user with email as the username. Name is stored
// as the standard "name" attribute.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type SignUpOutput struct {
	UserSub   string
	Confirmed bool
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput contains tokens returned after successful authentication.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

type GlobalSignOutInput struct {
	AccessToken string
}
