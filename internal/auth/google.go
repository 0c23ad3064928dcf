package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/pagescribe/pagescribe/internal/model"
)

var (
	// ErrProviderUnavailable indicates Google could not be reached or answered
	// with a server error.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrCodeRejected indicates Google refused the authorization code.
	ErrCodeRejected = errors.New("authorization code rejected")
)

// GoogleScopes are requested on every login.
var GoogleScopes = []string{"openid", "email", "profile"}

// GoogleProvider runs the Google OAuth 2.0 authorization code flow.
type GoogleProvider struct {
	config       *oauth2.Config
	userinfoBase string
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithEndpoint overrides the OAuth endpoint.
func WithEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) { p.config.Endpoint = ep }
}

// WithUserinfoBase overrides the base URL of the userinfo API.
func WithUserinfoBase(base string) GoogleOption {
	return func(p *GoogleProvider) { p.userinfoBase = base }
}

// NewGoogleProvider creates a provider for the given client credentials.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthCodeURL returns the consent page URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*model.Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %s", ErrCodeRejected, re.ErrorCode)
		}
		return nil, fmt.Errorf("%w: exchange code: %v", ErrProviderUnavailable, err)
	}

	opts := []option.ClientOption{option.WithTokenSource(p.config.TokenSource(ctx, token))}
	if p.userinfoBase != "" {
		opts = append(opts, option.WithEndpoint(p.userinfoBase))
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo client: %v", ErrProviderUnavailable, err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: fetch userinfo: %v", ErrProviderUnavailable, err)
	}

	return &model.Identity{
		Email:         info.Email,
		Name:          info.Name,
		AvatarURL:     info.Picture,
		Provider:      model.ProviderGoogle,
		Subject:       info.Id,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}
