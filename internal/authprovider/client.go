package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"taldaor/internal/models"
)

// Sentinel conditions derived from the provider's own error signals. Callers
// branch on these with errors.Is; any other error is an infrastructure
// failure.
var (
	ErrAlreadyRegistered = errors.New("identity already registered")
	ErrAlreadyConfirmed  = errors.New("identity already confirmed")
)

// Identity is the provider's representation of a login credential: email,
// opaque password hash (never exposed), confirmation state and user id.
type Identity struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	ConfirmedAt *time.Time `json:"email_confirmed_at"`
	Role        string     `json:"-"`
}

// Confirmed reports whether the identity's email has been confirmed.
func (i *Identity) Confirmed() bool {
	return i != nil && i.ConfirmedAt != nil
}

// AdminClient is the privileged server-side handle to the hosted auth
// provider. It is constructed once at process start and injected into the
// services that need it.
type AdminClient interface {
	// CreateUser creates an identity with the email unconfirmed; the user
	// confirms via the provider's own emailed link. Role is stamped into
	// provider-side metadata so it can be read back for claims.
	CreateUser(ctx context.Context, email, password string, role models.Role) (*Identity, error)

	// InviteByEmail creates an identity and sends the provider's invite
	// email, with redirectTo as the post-confirmation landing URL.
	InviteByEmail(ctx context.Context, email string, role models.Role, redirectTo string) (*Identity, error)

	// GetUserByEmail looks up an identity. Returns (nil, nil) when no
	// identity exists for the email; errors are infrastructure failures.
	GetUserByEmail(ctx context.Context, email string) (*Identity, error)

	// ResendConfirmation asks the provider to resend its confirmation email.
	// Returns ErrAlreadyConfirmed when the identity confirmed in the
	// meantime, so callers can degrade to the password-reset flow.
	ResendConfirmation(ctx context.Context, email, redirectTo string) error

	// SendPasswordRecovery asks the provider to email a recovery link with
	// redirectTo as the reset-completion route.
	SendPasswordRecovery(ctx context.Context, email, redirectTo string) error

	// Health pings the provider.
	Health(ctx context.Context) error
}

type httpAdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewHTTPAdminClient creates an AdminClient over the provider's REST admin
// API. The service key is a privileged server-side credential and must never
// reach a client. Every call is bounded by timeout.
func NewHTTPAdminClient(baseURL, serviceKey string, timeout time.Duration) AdminClient {
	return &httpAdminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *httpAdminClient) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*http.Response, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceKey))
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}

// apiError is the provider's error body; field names vary by endpoint
// version, so all the known ones are tried.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.Error, e.ErrorDescription} {
		if s != "" {
			return s
		}
	}
	return ""
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.text()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "already confirmed"):
		return fmt.Errorf("%w: %s", ErrAlreadyConfirmed, msg)
	case resp.StatusCode == http.StatusUnprocessableEntity || strings.Contains(lower, "already"):
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, msg)
	}
	return fmt.Errorf("auth provider returned status %d: %s", resp.StatusCode, msg)
}

func (c *httpAdminClient) CreateUser(ctx context.Context, email, password string, role models.Role) (*Identity, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": false,
		"user_metadata": map[string]string{"role": string(role)},
		"app_metadata":  map[string]string{"role": string(role)},
	}

	resp, err := c.makeRequest(ctx, http.MethodPost, "/admin/users", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	identity.Role = string(role)
	return &identity, nil
}

func (c *httpAdminClient) InviteByEmail(ctx context.Context, email string, role models.Role, redirectTo string) (*Identity, error) {
	endpoint := "/invite"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	payload := map[string]interface{}{
		"email": email,
		"data":  map[string]string{"role": string(role)},
	}

	resp, err := c.makeRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	identity.Role = string(role)
	return &identity, nil
}

func (c *httpAdminClient) GetUserByEmail(ctx context.Context, email string) (*Identity, error) {
	endpoint := "/admin/users?page=1&per_page=1&email=" + url.QueryEscape(email)

	resp, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var listResponse struct {
		Users []Identity `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResponse); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}

	// The provider's email filter can be fuzzy; require an exact
	// case-insensitive match.
	for i := range listResponse.Users {
		if strings.EqualFold(listResponse.Users[i].Email, email) {
			return &listResponse.Users[i], nil
		}
	}
	return nil, nil
}

func (c *httpAdminClient) ResendConfirmation(ctx context.Context, email, redirectTo string) error {
	endpoint := "/resend"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	payload := map[string]interface{}{
		"type":  "signup",
		"email": email,
	}

	resp, err := c.makeRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *httpAdminClient) SendPasswordRecovery(ctx context.Context, email, redirectTo string) error {
	endpoint := "/recover"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	payload := map[string]interface{}{"email": email}

	resp, err := c.makeRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *httpAdminClient) Health(ctx context.Context) error {
	resp, err := c.makeRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth provider health returned status %d", resp.StatusCode)
	}
	return nil
}
