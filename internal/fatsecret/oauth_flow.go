package fatsecret

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CallbackOutOfBand is the oauth_callback sentinel for flows without a
// redirect URI, such as CLI applications.
const CallbackOutOfBand = "oob"

// Operation labels embedded in FlowError messages.
const (
	opRequestToken = "request token"
	opAccessToken  = "access token"
)

const (
	// flowRequestTimeout bounds each handshake HTTP call.
	flowRequestTimeout = 30 * time.Second

	// maxTokenResponseSize caps provider response bodies; token responses
	// are a few hundred bytes.
	maxTokenResponseSize = 64 * 1024
)

// FlowManager drives the OAuth 1.0a three-legged handshake:
//
//  1. GetRequestToken obtains and persists a temporary request token.
//  2. AuthorizationURL builds the URL the user visits to authorize access.
//  3. ExchangeForAccessToken trades the user's verifier for a user token,
//     persists it, and discards the request token.
//
// The manager itself is stateless; all handshake state lives in the token
// store, so step 3 sees the request token written by step 1 even across
// process restarts. Two concurrent flows against the same store would race
// on the single request-token slot; the design is single-user,
// single-flow-at-a-time.
type FlowManager struct {
	settings   *Settings
	store      TokenStore
	httpClient *http.Client
	logger     *Logger
}

// NewFlowManager creates a flow manager using the given settings and store.
func NewFlowManager(settings *Settings, store TokenStore, logger *Logger) *FlowManager {
	return &FlowManager{
		settings:   settings,
		store:      store,
		httpClient: &http.Client{Timeout: flowRequestTimeout},
		logger:     logger,
	}
}

// GetRequestToken performs step 1: a two-legged signed POST to the
// request-token endpoint. The callback defaults to "oob" when empty. On
// success the token is persisted for the later exchange.
func (m *FlowManager) GetRequestToken(ctx context.Context, callback string) (*RequestToken, error) {
	if callback == "" {
		callback = CallbackOutOfBand
	}

	signer := NewSigner(m.settings.ConsumerKey, m.settings.ConsumerSecret)
	signed := signer.Sign(m.settings.RequestTokenURL, http.MethodPost, map[string]string{
		"oauth_callback": callback,
	})

	m.logger.InfoVerbose("Requesting OAuth request token from %s", m.settings.RequestTokenURL)
	values, err := m.postTokenRequest(ctx, opRequestToken, m.settings.RequestTokenURL, signed)
	if err != nil {
		return nil, err
	}

	token := &RequestToken{
		Token:  values.Get("oauth_token"),
		Secret: values.Get("oauth_token_secret"),
	}
	if token.Token == "" || token.Secret == "" {
		return nil, &FlowError{Op: opRequestToken, Reason: fmt.Sprintf("invalid provider response: %q", values.Encode())}
	}

	if err := m.store.SaveRequestToken(*token); err != nil {
		return nil, fmt.Errorf("save request token: %w", err)
	}
	return token, nil
}

// AuthorizationURL performs step 2: building the URL the user must visit to
// authorize the request token. Pure; no I/O and no state change.
func (m *FlowManager) AuthorizationURL(token *RequestToken) string {
	return m.settings.AuthorizeURL + "?oauth_token=" + percentEncode(token.Token)
}

// ExchangeForAccessToken performs step 3: trading the verifier the user
// received for a long-lived user token, signed with the persisted request
// token as the three-legged credential. On success the user token is
// persisted and the request token cleared.
func (m *FlowManager) ExchangeForAccessToken(ctx context.Context, verifier string) (*UserToken, error) {
	requestToken, err := m.store.LoadRequestToken()
	if err != nil {
		return nil, fmt.Errorf("load request token: %w", err)
	}
	if requestToken == nil {
		return nil, &FlowError{Op: opAccessToken, Reason: "no request token found, start the authentication flow first"}
	}

	signer := NewUserSigner(
		m.settings.ConsumerKey, m.settings.ConsumerSecret,
		requestToken.Token, requestToken.Secret,
	)
	signed := signer.Sign(m.settings.AccessTokenURL, http.MethodPost, map[string]string{
		"oauth_verifier": verifier,
	})

	m.logger.InfoVerbose("Exchanging verifier for access token at %s", m.settings.AccessTokenURL)
	values, err := m.postTokenRequest(ctx, opAccessToken, m.settings.AccessTokenURL, signed)
	if err != nil {
		return nil, err
	}

	userToken := &UserToken{
		Token:     values.Get("oauth_token"),
		Secret:    values.Get("oauth_token_secret"),
		CreatedAt: time.Now().Unix(),
	}
	if userToken.Token == "" || userToken.Secret == "" {
		return nil, &FlowError{Op: opAccessToken, Reason: fmt.Sprintf("invalid provider response: %q", values.Encode())}
	}

	if err := m.store.SaveUserToken(*userToken); err != nil {
		return nil, fmt.Errorf("save user token: %w", err)
	}
	// The temporary token must not survive a successful exchange.
	if err := m.store.ClearRequestToken(); err != nil {
		return nil, fmt.Errorf("clear request token: %w", err)
	}
	return userToken, nil
}

// postTokenRequest sends a form-encoded POST to an OAuth endpoint and parses
// the form-encoded response body. Non-2xx statuses and transport failures
// surface as FlowErrors carrying the status code or cause.
func (m *FlowManager) postTokenRequest(ctx context.Context, op, endpoint string, params map[string]string) (url.Values, error) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FlowError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &FlowError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, &FlowError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FlowError{Op: op, Status: resp.StatusCode}
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, &FlowError{Op: op, Reason: fmt.Sprintf("malformed provider response: %v", err)}
	}
	return values, nil
}
