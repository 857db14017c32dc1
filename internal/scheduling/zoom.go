// Package scheduling books interview meetings through the Zoom API using
// server-to-server OAuth.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultAPIURL   = "https://api.zoom.us/v2"
	DefaultTokenURL = "https://zoom.us/oauth/token"

	defaultTimeout = 10 * time.Second

	accountCredentialsGrant = "account_credentials"
)

// ErrUnavailable marks every failure to obtain a credential or a meeting.
var ErrUnavailable = errors.New("scheduling unavailable")

type Options struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	Timeout      time.Duration
}

type Zoom struct {
	HTTPClient *http.Client

	oauth  clientcredentials.Config
	apiURL string
	logger *zap.Logger
}

func NewZoom(opts Options, logger *zap.Logger) *Zoom {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	tokenURL := strings.TrimSpace(opts.TokenURL)
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	return &Zoom{
		HTTPClient: &http.Client{Timeout: timeout},
		oauth: clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
			EndpointParams: url.Values{
				"grant_type": {accountCredentialsGrant},
				"account_id": {opts.AccountID},
			},
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		apiURL: apiURL,
		logger: logger,
	}
}

// Credential fetches a fresh account-level access token.
func (z *Zoom) Credential(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, z.HTTPClient)

	z.logger.Debug("requesting zoom access token", zap.String("url", z.oauth.TokenURL))
	tok, err := z.oauth.Token(ctx)
	if err != nil {
		return "", unavailable("fetch access token", err)
	}
	if tok.AccessToken == "" {
		return "", unavailable("fetch access token", errors.New("empty access token"))
	}

	return tok.AccessToken, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
