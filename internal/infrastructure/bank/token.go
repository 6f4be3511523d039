package bank

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pixbridge/inter-gateway/internal/application"
	"github.com/pixbridge/inter-gateway/internal/domain"
	"golang.org/x/sync/singleflight"
)

const tokenPath = "/oauth/v2/token"

// refreshMargin forces a refresh shortly before the provider-reported expiry
// so in-flight calls never carry an about-to-die token.
const refreshMargin = 60 * time.Second

// defaultTokenLifetime stands in when the provider omits expires_in or
// reports one shorter than the refresh margin. Inter issues hour-long
// tokens; five minutes keeps a conservative cache without re-authenticating
// per call.
const defaultTokenLifetime = 5 * time.Minute

// CredentialSource hands out the active credential set for the duration of a
// call. Credentials are never cached here beyond the derived token and TLS
// transport, both keyed on the credential version.
type CredentialSource interface {
	Active(ctx context.Context) (*domain.CredentialSet, error)
}

type accessToken struct {
	value   string
	expiry  time.Time
	version int64
}

func (t accessToken) valid(now time.Time, version int64) bool {
	return t.value != "" && t.version == version && now.Before(t.expiry.Add(-refreshMargin))
}

// tokenManager owns the cached OAuth token. Refresh is guarded by a
// single-flight group: one refresh in flight at a time, concurrent callers
// wait on its result.
type tokenManager struct {
	timeout time.Duration
	baseURL string // test override; empty means per-environment default

	group singleflight.Group

	mu           sync.RWMutex
	token        accessToken
	transport    *http.Client
	transportVer int64
}

func newTokenManager(timeout time.Duration, baseURL string) *tokenManager {
	return &tokenManager{timeout: timeout, baseURL: baseURL}
}

// bearer returns a valid token and the mTLS-authenticated client for creds,
// refreshing if the cached token expired or belongs to an older credential set.
func (m *tokenManager) bearer(ctx context.Context, creds *domain.CredentialSet) (string, *http.Client, error) {
	httpClient, err := m.clientFor(creds)
	if err != nil {
		return "", nil, err
	}

	m.mu.RLock()
	tok := m.token
	m.mu.RUnlock()

	if tok.valid(time.Now(), creds.Version) {
		return tok.value, httpClient, nil
	}

	return m.refresh(ctx, creds, httpClient)
}

// invalidate drops the cached token after a 401 so the next call re-authenticates.
func (m *tokenManager) invalidate() {
	m.mu.Lock()
	m.token = accessToken{}
	m.mu.Unlock()
}

func (m *tokenManager) refresh(ctx context.Context, creds *domain.CredentialSet, httpClient *http.Client) (string, *http.Client, error) {
	v, err, _ := m.group.Do("token", func() (any, error) {
		m.mu.RLock()
		tok := m.token
		m.mu.RUnlock()
		if tok.valid(time.Now(), creds.Version) {
			return tok, nil
		}

		tok, err := m.authenticate(ctx, creds, httpClient)
		if err != nil {
			return accessToken{}, err
		}

		m.mu.Lock()
		m.token = tok
		m.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", nil, err
	}
	return v.(accessToken).value, httpClient, nil
}

// authenticate runs the client-credentials flow over the mTLS connection.
func (m *tokenManager) authenticate(ctx context.Context, creds *domain.CredentialSet, httpClient *http.Client) (accessToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("scope", "cob.write cob.read pix.read")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base(creds)+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return accessToken{}, fmt.Errorf("error creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return accessToken{}, fmt.Errorf("error requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return accessToken{}, &application.BankError{
			Code:       "authentication_failed",
			Message:    strings.TrimSpace(string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return accessToken{}, fmt.Errorf("error decoding token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return accessToken{}, &application.BankError{
			Code:       "authentication_failed",
			Message:    "provider returned empty access token",
			StatusCode: http.StatusUnauthorized,
		}
	}

	// a missing or tiny expires_in would leave the cached token inside the
	// refresh margin, re-authenticating on every call
	expiresIn := time.Duration(tokenResp.ExpiresIn) * time.Second
	if expiresIn <= refreshMargin {
		expiresIn = defaultTokenLifetime
	}

	return accessToken{
		value:   tokenResp.AccessToken,
		expiry:  time.Now().Add(expiresIn),
		version: creds.Version,
	}, nil
}

// clientFor builds the client-certificate transport, cached per credential
// version so a credential replacement mid-flight picks up the new pair.
func (m *tokenManager) clientFor(creds *domain.CredentialSet) (*http.Client, error) {
	m.mu.RLock()
	if m.transport != nil && m.transportVer == creds.Version {
		defer m.mu.RUnlock()
		return m.transport, nil
	}
	m.mu.RUnlock()

	pair, err := creds.KeyPair()
	if err != nil {
		return nil, &application.BankError{
			Code:       "authentication_failed",
			Message:    "stored certificate/key pair is not loadable",
			StatusCode: http.StatusUnauthorized,
		}
	}

	client := &http.Client{
		Timeout: m.timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{Certificates: []tls.Certificate{pair}},
		},
	}

	m.mu.Lock()
	m.transport = client
	m.transportVer = creds.Version
	m.mu.Unlock()
	return client, nil
}

func (m *tokenManager) base(creds *domain.CredentialSet) string {
	if m.baseURL != "" {
		return m.baseURL
	}
	return creds.BaseURL()
}
