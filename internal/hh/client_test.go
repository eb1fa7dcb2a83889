package hh

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://example.com/callback",
		BaseURL:      server.URL,
		OAuthURL:     server.URL + "/oauth",
		UserAgent:    "hh-agent-test/1.0",
	}, zap.NewNop())
	client.SetTokenSource(staticTokens("test-token"))
	return client, server
}

func TestAuthorizeURL(t *testing.T) {
	client := NewClient(Config{
		ClientID:    "abc",
		RedirectURI: "https://example.com/cb",
		OAuthURL:    "https://hh.example/oauth",
	}, zap.NewNop())

	parsed, err := url.Parse(client.AuthorizeURL())
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "abc", parsed.Query().Get("client_id"))
	assert.Equal(t, "https://example.com/cb", parsed.Query().Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":1209600}`))
	}))

	tokens, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, "rt", tokens.RefreshToken)
	assert.Equal(t, int64(1209600), tokens.ExpiresIn)
}

func TestSearchVacancies(t *testing.T) {
	salary := 200000
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vacancies", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "go developer", q.Get("text"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "publication_time", q.Get("order_by"))
		assert.Equal(t, []string{"1", "2"}, q["area"])
		assert.Equal(t, "200000", q.Get("salary"))
		assert.Equal(t, "true", q.Get("only_with_salary"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Write([]byte(`{"items":[{"id":"v1","name":"Go Developer","employer":{"name":"Acme"}}],"found":1}`))
	}))

	items, err := client.SearchVacancies(context.Background(), SearchParams{
		Text:           "go developer",
		Areas:          []string{"1", "2"},
		SalaryFrom:     &salary,
		OnlyWithSalary: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "v1", items[0].ID)
	assert.Equal(t, "Acme", items[0].Employer.Name)
}

func TestApply_LocationHeader(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/negotiations", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Location", "/negotiations/12345")
		w.WriteHeader(http.StatusCreated)
	}))

	id, err := client.Apply(context.Background(), "v1", "cover letter", "r1")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
}

func TestApply_SeeOtherIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://hh.example/negotiations/67890/")
		w.WriteHeader(http.StatusSeeOther)
	}))

	id, err := client.Apply(context.Background(), "v1", "letter", "r1")
	require.NoError(t, err)
	assert.Equal(t, "67890", id)
}

func TestApply_MissingLocationSynthesizesID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	id, err := client.Apply(context.Background(), "v42", "letter", "r1")
	require.NoError(t, err)
	assert.Equal(t, "neg_v42", id)
}

func TestApply_ErrorSurfacesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"type":"negotiations","value":"already_applied"}]}`))
	}))

	_, err := client.Apply(context.Background(), "v1", "letter", "r1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "already_applied")
}

func TestUnauthorizedMapsToErrNotAuthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListResumes(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthorized))
}

func TestListMessagesAndSend(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			require.Equal(t, "/negotiations/n1/messages", r.URL.Path)
			w.Write([]byte(`{"items":[{"id":"m1","author":{"participant_type":"employer"},"text":"hello"}]}`))
		case r.Method == http.MethodPost:
			require.Equal(t, "/negotiations/n1/messages", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
		}
	}))

	messages, err := client.ListMessages(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "employer", messages[0].Author.ParticipantType)

	require.NoError(t, client.SendMessage(context.Background(), "n1", "hi"))
}
