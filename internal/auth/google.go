package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ExternalIdentity is what an OAuth provider tells us about a user.
type ExternalIdentity struct {
	Email string
	Name  string
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleClient drives the Google OAuth code flow. Issued states are kept
// in memory until the callback consumes them.
type GoogleClient struct {
	config oauth2.Config

	stateMutex sync.Mutex
	state      map[string]struct{}
}

func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		state: make(map[string]struct{}),
	}
}

// LoginURL returns the provider consent URL with a fresh state token.
func (c *GoogleClient) LoginURL() string {
	s := randToken()
	c.stateMutex.Lock()
	c.state[s] = struct{}{}
	c.stateMutex.Unlock()

	return c.config.AuthCodeURL(s)
}

// Exchange validates the callback state, trades the code for a token and
// fetches the user info.
func (c *GoogleClient) Exchange(ctx context.Context, state, code string) (ExternalIdentity, error) {
	c.stateMutex.Lock()
	_, ok := c.state[state]
	delete(c.state, state)
	c.stateMutex.Unlock()

	if !ok {
		return ExternalIdentity{}, errors.New("invalid state")
	}

	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, err
	}
	return c.userInfo(ctx, tok)
}

func (c *GoogleClient) userInfo(ctx context.Context, tok *oauth2.Token) (ExternalIdentity, error) {
	client := c.config.Client(ctx, tok)
	res, err := client.Get(googleUserInfoURL)
	if err != nil {
		return ExternalIdentity{}, err
	}
	defer res.Body.Close()

	var info struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return ExternalIdentity{}, err
	}

	return ExternalIdentity{Email: info.Email, Name: info.Name}, nil
}

func randToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
