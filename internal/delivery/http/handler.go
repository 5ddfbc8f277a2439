package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/internal/dashboard"
	"github.com/sodam/backend/internal/domain"
	"github.com/sodam/backend/internal/usecase"
)

var log = logrus.WithField("prefix", "gin")

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scoring *usecase.ScoringService
	auth    *usecase.AuthService
	recs    domain.RecsAPI
}

// NewHandler creates a new HTTP handler. recs is the scoring API client the
// dashboard page talks to.
func NewHandler(scoring *usecase.ScoringService, auth *usecase.AuthService, recs domain.RecsAPI) *Handler {
	return &Handler{
		scoring: scoring,
		auth:    auth,
		recs:    recs,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sodam-backend",
		"version": "1.0.0",
	})
}

// Score scores one location
func (h *Handler) Score(c *gin.Context) {
	var req domain.ScoreRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.scoring.Score(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Batch scores several locations
func (h *Handler) Batch(c *gin.Context) {
	var req domain.BatchRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.scoring.ScoreBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Sample returns the scored candidate areas
func (h *Handler) Sample(c *gin.Context) {
	c.JSON(http.StatusOK, h.scoring.Sample(c.Request.Context()))
}

// Register creates an account
func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered", "user": user})
}

// Login exchanges credentials for an access token
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me returns the account behind the access token
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DashboardPage serves the empty dashboard
func (h *Handler) DashboardPage(c *gin.Context) {
	page, err := dashboard.NewPage()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, http.StatusOK, page)
}

// DashboardAction handles the dashboard form. The submitted inputs are kept
// on the page and the chosen flow runs against the scoring API. If the flow
// fails the page comes back unrendered with 502.
func (h *Handler) DashboardAction(c *gin.Context) {
	page, err := dashboard.NewPage()
	if err != nil {
		respondError(c, err)
		return
	}
	for _, name := range domain.FeatureNames {
		if err := page.SetValue(name, c.PostForm(name)); err != nil {
			respondError(c, err)
			return
		}
	}

	ctrl := dashboard.NewController(h.recs, page)
	ctx := c.Request.Context()

	switch action := c.PostForm("action"); action {
	case "score":
		err = ctrl.ClickScore(ctx)
	case "sample":
		err = ctrl.ClickSample(ctx)
	default:
		log.WithField("action", action).Debug("unknown dashboard action")
		renderPage(c, http.StatusBadRequest, page)
		return
	}

	if err != nil {
		renderPage(c, http.StatusBadGateway, page)
		return
	}
	renderPage(c, http.StatusOK, page)
}

func renderPage(c *gin.Context, status int, page *dashboard.Page) {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		respondError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// bindJSON decodes the request body into dst. An empty body leaves dst zero.
func bindJSON(c *gin.Context, dst interface{}) error {
	data, err := c.GetRawData()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

// respondError maps domain errors to status codes and an {"error": ...} body
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrMissingFields):
		status, message = http.StatusBadRequest, domain.ErrMissingFields.Error()
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownProfile):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		status, message = http.StatusConflict, domain.ErrEmailTaken.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		status, message = http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, domain.ErrRateLimited.Error()
	case errors.Is(err, domain.ErrRecsAPIFailure), errors.Is(err, domain.ErrMalformedResponse):
		status, message = http.StatusBadGateway, err.Error()
	default:
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
