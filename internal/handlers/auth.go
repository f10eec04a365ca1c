package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/gin-gonic/gin"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/repos"
	"github.com/schoolwrapped/recap-backend/internal/schoology"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

const requestSecretTTL = 10 * time.Minute

// requestSecretStore holds OAuth request-token secrets between /auth/start
// and /auth/callback. Entries are single use and expire on their own, so an
// abandoned login never leaks state.
type requestSecretStore struct {
	mu      sync.Mutex
	entries map[string]secretEntry
}

type secretEntry struct {
	secret  string
	expires time.Time
}

func newRequestSecretStore() *requestSecretStore {
	return &requestSecretStore{entries: make(map[string]secretEntry)}
}

func (s *requestSecretStore) Put(token, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for t, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, t)
		}
	}
	s.entries[token] = secretEntry{secret: secret, expires: now.Add(requestSecretTTL)}
}

func (s *requestSecretStore) Pop(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return "", false
	}
	delete(s.entries, token)
	if time.Now().After(e.expires) {
		return "", false
	}
	return e.secret, true
}

// AuthHandler drives the three-legged OAuth 1.0a dance against Schoology and
// enqueues the recap job once tokens are in hand.
type AuthHandler struct {
	log         *logger.Logger
	cfg         schoology.Config
	oauthCfg    *oauth1.Config
	jobRepo     repos.JobRepo
	secrets     *requestSecretStore
	frontendURL string
}

func NewAuthHandler(cfg schoology.Config, callbackURL, frontendURL string, jobRepo repos.JobRepo, baseLog *logger.Logger) *AuthHandler {
	return &AuthHandler{
		log:         baseLog.With("handler", "AuthHandler"),
		cfg:         cfg,
		oauthCfg:    cfg.OAuthConfig(callbackURL),
		jobRepo:     jobRepo,
		secrets:     newRequestSecretStore(),
		frontendURL: frontendURL,
	}
}

// GET /auth/start
func (h *AuthHandler) StartAuth(c *gin.Context) {
	requestToken, requestSecret, err := h.oauthCfg.RequestToken()
	if err != nil {
		h.log.Warn("Request token fetch failed", "error", err)
		RespondError(c, http.StatusBadGateway, "oauth_request_token", err)
		return
	}
	h.secrets.Put(requestToken, requestSecret)

	authorizationURL, err := h.oauthCfg.AuthorizationURL(requestToken)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "oauth_authorize_url", err)
		return
	}
	c.Redirect(http.StatusFound, authorizationURL.String())
}

// GET /auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	requestToken := c.Query("oauth_token")
	if requestToken == "" {
		RespondError(c, http.StatusBadRequest, "missing_oauth_token", errors.New("oauth_token query param required"))
		return
	}
	requestSecret, ok := h.secrets.Pop(requestToken)
	if !ok {
		RespondError(c, http.StatusBadRequest, "unknown_oauth_token", errors.New("login session expired, start over"))
		return
	}

	// Schoology's OAuth 1.0a flow predates the verifier; the param is empty
	// when the provider does not send one.
	verifier := c.Query("oauth_verifier")
	accessToken, accessSecret, err := h.oauthCfg.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		h.log.Warn("Access token exchange failed", "error", err)
		RespondError(c, http.StatusBadGateway, "oauth_access_token", err)
		return
	}

	client := schoology.NewClient(h.cfg, accessToken, accessSecret, h.log)
	me, err := client.GetMe(c.Request.Context())
	if err != nil {
		h.log.Warn("Profile fetch after auth failed", "error", err)
		RespondError(c, http.StatusBadGateway, "profile_fetch", err)
		return
	}

	job := &types.Job{
		Email:             me.PrimaryEmail,
		AccessToken:       accessToken,
		AccessTokenSecret: accessSecret,
	}
	if err := h.jobRepo.Create(c.Request.Context(), job); err != nil {
		RespondError(c, http.StatusInternalServerError, "job_create", err)
		return
	}
	h.log.Info("Recap job enqueued", "job_id", job.ID, "email", job.Email)

	c.Redirect(http.StatusFound, fmt.Sprintf("%s/recap?id=%s", h.frontendURL, job.ID))
}
