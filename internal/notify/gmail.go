package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// Gmail delivers mail through the Gmail API using a stored OAuth token.
type Gmail struct {
	service *gmail.Service
}

// NewGmail builds a Gmail transport from an OAuth client credentials file
// and a previously authorized token file.
func NewGmail(ctx context.Context, credentialsFile, tokenFile string) (*Gmail, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}

	return &Gmail{service: srv}, nil
}

func newGmailWithService(srv *gmail.Service) *Gmail {
	return &Gmail{service: srv}
}

func (g *Gmail) Deliver(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("gmail: message is nil")
	}

	raw := base64.URLEncoding.EncodeToString(msg.Bytes())
	if _, err := g.service.Users.Messages.Send(gmailUser, &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: send: %w", err)
	}
	return nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}
