package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
)

// DefaultAPIURL is the Backend API base used when none is configured.
const DefaultAPIURL = "https://api.clerk.com"

// Metadata is the body of a user metadata patch. Nil maps are omitted so
// the provider leaves them untouched.
type Metadata struct {
	Public  map[string]any
	Private map[string]any
	Unsafe  map[string]any
}

// MetadataUpdater is the side-channel used after a user is created.
type MetadataUpdater interface {
	UpdateUserMetadata(ctx context.Context, userID string, md Metadata) error
}

// Client talks to the identity provider's Backend API through its SDK.
type Client struct {
	users     *user.Client
	secretKey string
}

// NewClient returns a client for baseURL. An empty secretKey makes every call
// a logged no-op, which keeps local development working without credentials.
func NewClient(baseURL, secretKey string, hc *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAPIURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	cfg := &sdk.ClientConfig{}
	cfg.HTTPClient = hc
	cfg.URL = sdk.String(strings.TrimRight(baseURL, "/"))
	cfg.Key = sdk.String(secretKey)
	return &Client{users: user.NewClient(cfg), secretKey: secretKey}
}

// UpdateUserMetadata merges md into the metadata of userID.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, md Metadata) error {
	if c.secretKey == "" {
		logger.Warnf("clerk: secret key not configured; skipping metadata update for %s", userID)
		return nil
	}
	if userID == "" {
		return fmt.Errorf("clerk: user id is required")
	}
	params, err := md.params()
	if err != nil {
		return err
	}
	if _, err := c.users.UpdateMetadata(ctx, userID, params); err != nil {
		var apiErr *sdk.APIErrorResponse
		if errors.As(err, &apiErr) {
			return fmt.Errorf("clerk: metadata endpoint returned %d: %w", apiErr.HTTPStatusCode, err)
		}
		return fmt.Errorf("clerk: update metadata: %w", err)
	}
	logger.Debugf("clerk: metadata updated for %s", userID)
	return nil
}

func (md Metadata) params() (*user.UpdateMetadataParams, error) {
	p := &user.UpdateMetadataParams{}
	var err error
	if p.PublicMetadata, err = rawJSON(md.Public); err != nil {
		return nil, err
	}
	if p.PrivateMetadata, err = rawJSON(md.Private); err != nil {
		return nil, err
	}
	if p.UnsafeMetadata, err = rawJSON(md.Unsafe); err != nil {
		return nil, err
	}
	return p, nil
}

func rawJSON(m map[string]any) (*json.RawMessage, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("clerk: encode metadata: %w", err)
	}
	raw := json.RawMessage(b)
	return &raw, nil
}
