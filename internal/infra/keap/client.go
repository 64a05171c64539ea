package keap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.infusionsoft.com/crm/rest/v1"
	tokenURL       = "https://api.infusionsoft.com/token"
)

// Client is the slice of the Keap (Infusionsoft) REST API the roster sync
// uses.
type Client interface {
	UpsertContact(ctx context.Context, email, firstName, lastName string) (int64, error)
	ApplyTag(ctx context.Context, contactID, tagID int64) error
}

// RestClient talks to Keap's REST API with an oauth2 token source that
// refreshes the access token from the stored refresh token.
type RestClient struct {
	BaseURL string
	http    *http.Client
}

func New(clientID, clientSecret, refreshToken string) *RestClient {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	ts := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: refreshToken})

	return &RestClient{
		BaseURL: defaultBaseURL,
		http:    oauth2.NewClient(context.Background(), ts),
	}
}

// NewWithHTTPClient is for tests pointing at a local server.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *RestClient {
	return &RestClient{BaseURL: baseURL, http: httpClient}
}

type contact struct {
	ID             int64          `json:"id,omitempty"`
	GivenName      string         `json:"given_name,omitempty"`
	FamilyName     string         `json:"family_name,omitempty"`
	EmailAddresses []emailAddress `json:"email_addresses,omitempty"`
}

type emailAddress struct {
	Email string `json:"email"`
	Field string `json:"field"`
}

type contactList struct {
	Contacts []contact `json:"contacts"`
}

// UpsertContact looks a contact up by email and creates it when missing,
// returning the Keap contact id either way.
func (c *RestClient) UpsertContact(ctx context.Context, email, firstName, lastName string) (int64, error) {
	existing, err := c.findContactByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		return existing, nil
	}

	body, err := json.Marshal(contact{
		GivenName:      firstName,
		FamilyName:     lastName,
		EmailAddresses: []emailAddress{{Email: email, Field: "EMAIL1"}},
	})
	if err != nil {
		return 0, err
	}

	var created contact
	if err := c.do(ctx, http.MethodPost, "/contacts", body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *RestClient) ApplyTag(ctx context.Context, contactID, tagID int64) error {
	body, err := json.Marshal(map[string][]int64{"tagIds": {tagID}})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/contacts/%d/tags", contactID)
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *RestClient) findContactByEmail(ctx context.Context, email string) (int64, error) {
	path := "/contacts?email=" + url.QueryEscape(email)
	var list contactList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return 0, err
	}
	if len(list.Contacts) == 0 {
		return 0, nil
	}
	return list.Contacts[0].ID, nil
}

func (c *RestClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("keap request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("keap %s %s: status %d: %s", method, path, resp.StatusCode, string(b))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
