package session_repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/endpointops/android-app-importer/src/entity/clientmodule"
	"github.com/endpointops/android-app-importer/src/entity/logger"
	"github.com/endpointops/android-app-importer/src/entity/session"
	"github.com/endpointops/android-app-importer/src/use_case"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("session_repository")

// Tokens about to expire are not worth reusing from the cache.
const expirySlack = 1 * time.Minute

type rest struct {
	client    *http.Client
	module    clientmodule.Module
	cachePath string
}

type restTokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type cachedToken struct {
	AccessToken string    `msgpack:"access_token"`
	TokenType   string    `msgpack:"token_type"`
	ExpiresAt   time.Time `msgpack:"expires_at"`
	TenantID    string    `msgpack:"tenant_id"`
	Fingerprint string    `msgpack:"fingerprint"`
}

func (r rest) Connect(ctx context.Context) (session.Session, error) {
	ctx, span := tracer.Start(ctx, "session_repository.Connect")
	defer span.End()

	if cached, ok := r.readCache(); ok {
		zap.L().Info("reusing cached session", logger.WithTraceId(ctx))
		return cached, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", r.module.ClientID)
	form.Set("client_secret", r.module.ClientSecret)
	if len(r.module.Scope) > 0 {
		form.Set("scope", r.module.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.module.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		zap.L().Error("create token request failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("create token request failed: %s", err))
		return session.Session{}, fmt.Errorf("%w", use_case.ErrConnectingSession)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := r.client.Do(req)
	if err != nil {
		zap.L().Error("execute token request failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("execute token request failed: %s", err))
		return session.Session{}, fmt.Errorf("%w", use_case.ErrConnectingSession)
	}

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		zap.L().Error("io read failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("io read failed: %s", err))
		return session.Session{}, fmt.Errorf("%w", use_case.ErrConnectingSession)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		zap.L().Error("token endpoint rejected request", logger.WithTraceId(ctx), zap.Any("status", res.StatusCode), zap.Any("body", string(data)))
		span.SetStatus(codes.Error, fmt.Sprintf("token endpoint returned %d", res.StatusCode))
		return session.Session{}, fmt.Errorf("status %d: %w", res.StatusCode, use_case.ErrConnectingSession)
	}

	var o restTokenResp
	if err := json.Unmarshal(data, &o); err != nil {
		zap.L().Error("unmarshal token failed", logger.WithTraceId(ctx), zap.Any("error", err))
		span.SetStatus(codes.Error, fmt.Sprintf("unmarshal token failed: %s", err))
		return session.Session{}, fmt.Errorf("%w", use_case.ErrConnectingSession)
	}

	if len(o.AccessToken) <= 0 {
		zap.L().Error("token endpoint returned no token", logger.WithTraceId(ctx))
		span.SetStatus(codes.Error, "token endpoint returned no token")
		return session.Session{}, fmt.Errorf("empty token: %w", use_case.ErrConnectingSession)
	}

	tokenType := o.TokenType
	if len(tokenType) <= 0 {
		tokenType = "Bearer"
	}

	sess := session.Session{
		AccessToken: o.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   time.Now().Add(time.Duration(o.ExpiresIn) * time.Second),
		TenantID:    r.module.TenantID,
	}

	r.writeCache(sess)
	zap.L().Info("session connected", logger.WithTraceId(ctx), zap.Any("tenant", sess.TenantID))
	return sess, nil
}

// readCache returns a still-valid session from the msgpack cache file, if
// one exists for this client. Cache problems are never errors.
func (r rest) readCache() (session.Session, bool) {
	if len(r.cachePath) <= 0 {
		return session.Session{}, false
	}

	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return session.Session{}, false
	}

	var cached cachedToken
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		zap.L().Warn("token cache unreadable, ignoring", zap.Any("error", err))
		return session.Session{}, false
	}
	if cached.Fingerprint != r.module.Fingerprint() {
		return session.Session{}, false
	}

	sess := session.Session{
		AccessToken: cached.AccessToken,
		TokenType:   cached.TokenType,
		ExpiresAt:   cached.ExpiresAt,
		TenantID:    cached.TenantID,
	}
	if !sess.Valid(time.Now().Add(expirySlack)) {
		return session.Session{}, false
	}
	return sess, true
}

func (r rest) writeCache(sess session.Session) {
	if len(r.cachePath) <= 0 {
		return
	}

	data, err := msgpack.Marshal(cachedToken{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresAt:   sess.ExpiresAt,
		TenantID:    sess.TenantID,
		Fingerprint: r.module.Fingerprint(),
	})
	if err != nil {
		zap.L().Warn("token cache marshal failed", zap.Any("error", err))
		return
	}

	if err := os.WriteFile(r.cachePath, data, 0o600); err != nil {
		zap.L().Warn("token cache write failed", zap.Any("error", err))
	}
}

func NewRest(module clientmodule.Module, cachePath string) use_case.SessionRepository {
	c := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  true,
			MaxIdleConnsPerHost: 10,
		},
	}

	r := &rest{
		client:    c,
		module:    module,
		cachePath: cachePath,
	}
	return r
}
