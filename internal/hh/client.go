package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestTimeout = 30 * time.Second

// ErrNotAuthorized signals a missing, expired or rejected token. The
// supervisor absorbs it and skips the cycle.
var ErrNotAuthorized = errors.New("hh: not authorized")

// APIError is any non-2xx reply from the job board, kept verbatim for
// diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hh: api returned %d: %s", e.StatusCode, e.Body)
}

// TokenSource supplies a currently valid access token for authenticated calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BaseURL      string
	OAuthURL     string
	UserAgent    string
}

// Client is a typed wrapper around the job-board REST API.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	tokens     TokenSource
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
			// Apply relies on seeing the 303 and its Location header.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		logger:  logger,
	}
}

// SetTokenSource wires the token authority in after construction; the
// authority itself refreshes tokens through this client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// AuthorizeURL builds the OAuth authorization URL the admin surface sends
// the user to.
func (c *Client) AuthorizeURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	return c.cfg.OAuthURL + "/authorize?" + q.Encode()
}

func (c *Client) do(req *http.Request, authenticated bool) ([]byte, *http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, nil, err
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if authenticated {
		if c.tokens == nil {
			return nil, nil, ErrNotAuthorized
		}
		token, err := c.tokens.AccessToken(req.Context())
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("hh: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("hh: reading response: %w", err)
	}
	return data, resp, nil
}

// statusError classifies a non-2xx status. 401 and 403 collapse into
// ErrNotAuthorized so the token lifecycle can react.
func statusError(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotAuthorized
	}
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	data, resp, err := c.do(req, true)
	if err != nil {
		return err
	}
	if err := statusError(resp, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("hh: decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, *http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, true)
}

func (c *Client) token(ctx context.Context, form url.Values) (*OAuthTokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.OAuthURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, resp, err := c.do(req, false)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, data); err != nil {
		return nil, err
	}

	var tokens OAuthTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("hh: decoding token response: %w", err)
	}
	return &tokens, nil
}

// ExchangeCode trades an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*OAuthTokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	return c.token(ctx, form)
}

// RefreshTokens trades a refresh token for a fresh pair.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*OAuthTokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)
	return c.token(ctx, form)
}

// SearchVacancies requests up to 100 vacancies ordered by publication time.
func (c *Client) SearchVacancies(ctx context.Context, params SearchParams) ([]Vacancy, error) {
	q := url.Values{}
	q.Set("text", params.Text)
	q.Set("per_page", "100")
	q.Set("order_by", "publication_time")
	for _, area := range params.Areas {
		q.Add("area", area)
	}
	if params.SalaryFrom != nil {
		q.Set("salary", strconv.Itoa(*params.SalaryFrom))
	}
	if params.Experience != "" {
		q.Set("experience", params.Experience)
	}
	if params.Schedule != "" {
		q.Set("schedule", params.Schedule)
	}
	if params.Employment != "" {
		q.Set("employment", params.Employment)
	}
	if params.OnlyWithSalary {
		q.Set("only_with_salary", "true")
	}

	var result searchResponse
	if err := c.getJSON(ctx, "/vacancies", q, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// GetVacancy fetches the vacancy detail, including the full description.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	var vacancy Vacancy
	if err := c.getJSON(ctx, "/vacancies/"+id, nil, &vacancy); err != nil {
		return nil, err
	}
	return &vacancy, nil
}

// ListResumes returns the applicant's resumes; the first one is used for
// applications.
func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var result resumesResponse
	if err := c.getJSON(ctx, "/resumes/mine", nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ListNegotiations returns all negotiations for the applicant.
func (c *Client) ListNegotiations(ctx context.Context) ([]Negotiation, error) {
	var result negotiationsResponse
	if err := c.getJSON(ctx, "/negotiations", nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Apply submits an application. The job board answers 201 or 303 with the
// negotiation id in the Location header; when the header is missing a
// placeholder neg_<vacancy_id> keeps the local bookkeeping consistent.
func (c *Client) Apply(ctx context.Context, vacancyID, coverLetter, resumeID string) (string, error) {
	payload := map[string]string{
		"vacancy_id": vacancyID,
		"resume_id":  resumeID,
		"message":    coverLetter,
	}
	data, resp, err := c.postJSON(ctx, "/negotiations", payload)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusSeeOther {
		if err := statusError(resp, data); err != nil {
			return "", err
		}
	}

	location := resp.Header.Get("Location")
	if location == "" {
		c.logger.Warn("apply response has no Location header",
			zap.String("vacancy_id", vacancyID),
			zap.Int("status", resp.StatusCode))
		return "neg_" + vacancyID, nil
	}
	parts := strings.Split(strings.TrimRight(location, "/"), "/")
	return parts[len(parts)-1], nil
}

// ListMessages returns the messages of a negotiation chat in remote order.
func (c *Client) ListMessages(ctx context.Context, negotiationID string) ([]Message, error) {
	var result messagesResponse
	if err := c.getJSON(ctx, "/negotiations/"+negotiationID+"/messages", nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// SendMessage appends a message to a negotiation chat.
func (c *Client) SendMessage(ctx context.Context, negotiationID, text string) error {
	data, resp, err := c.postJSON(ctx, "/negotiations/"+negotiationID+"/messages", map[string]string{
		"message": text,
	})
	if err != nil {
		return err
	}
	return statusError(resp, data)
}
