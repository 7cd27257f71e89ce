package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/auth"
	"github.com/arnavshah/roster-engine-go/pkg/client"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const claimsKey = "claims"

// Handler contains dependencies for the route handlers
type Handler struct {
	DB          *gorm.DB
	Client      *client.ScheduleClient
	Issuer      *auth.Issuer
	Users       *database.UserStore
	Schedules   *database.ScheduleStore
	Shifts      *database.ShiftStore
	Preferences *preferences.Store
	Location    *time.Location
	Now         func() time.Time
}

// NewHandler wires the stores, the scheduler and the orchestrator over one database
func NewHandler(db *gorm.DB, issuer *auth.Issuer, opts client.Options) *Handler {
	prefs := preferences.NewStore(db)
	users := database.NewUserStore(db)
	shifts := database.NewShiftStore(db)
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		DB:          db,
		Client:      client.NewScheduleClient(scheduler.NewScheduler(prefs), shifts, users, opts),
		Issuer:      issuer,
		Users:       users,
		Schedules:   database.NewScheduleStore(db),
		Shifts:      shifts,
		Preferences: prefs,
		Location:    loc,
		Now:         time.Now,
	}
}

// fail writes a structured failure for err
func fail(c *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"error":   apperr.Message(err),
		"code":    apperr.GetCode(err),
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

// AuthMiddleware verifies the bearer token and stores its claims
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			fail(c, apperr.New(apperr.CodeUnauthorized, "authorization header required"))
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := h.Issuer.VerifyToken(token)
		if err != nil {
			fail(c, apperr.New(apperr.CodeUnauthorized, "invalid token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil || claims.Role != role {
			fail(c, apperr.New(apperr.CodeForbidden, "access denied: user must be a '"+role+"'"))
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *auth.Claims {
	raw, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := raw.(*auth.Claims)
	return claims
}

// RequestLogger logs each request through zerolog
func RequestLogger() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Login handles username/password login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.Users.ByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		fail(c, apperr.New(apperr.CodeUnauthorized, "invalid credentials"))
		return
	}

	token, err := h.Issuer.CreateToken(user)
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.CodeInternal, "could not create token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "access_token": token, "token_type": "bearer", "role": user.Role})
}

// CreateUser lets an admin add staff or admin accounts
func (h *Handler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=admin staff"`
	}
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if req.Role == "" {
		req.Role = database.RoleStaff
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.CodeInternal, "could not hash password"))
		return
	}
	user, err := h.Users.Create(c.Request.Context(), req.Username, hash, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}
