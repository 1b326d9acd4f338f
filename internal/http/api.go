package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"urban-match/internal/domain"
	"urban-match/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	matches   service.MatchService
	snapshots service.SnapshotService
	limiter   RateLimiter
	metrics   *Metrics
	logger    logrus.FieldLogger
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Limiter RateLimiter
	Metrics *Metrics
	Logger  logrus.FieldLogger
}

func NewHandler(users service.UserService, matches service.MatchService, snapshots service.SnapshotService, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	registerValidators()
	return &Handler{
		users:     users,
		matches:   matches,
		snapshots: snapshots,
		limiter:   opts.Limiter,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), h.observe(), corsMiddleware(), h.rateLimit())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the User API!"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	users := router.Group("/users")
	{
		users.POST("", h.createUser)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
		users.GET("/:id/matches", h.matchByProfile)
		users.POST("/:id/matches", h.matchByPreferences)
	}

	snapshots := router.Group("/snapshots")
	{
		snapshots.POST("", h.exportSnapshot)
		snapshots.GET("", h.listSnapshots)
		snapshots.DELETE("/*key", h.deleteSnapshot)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, bindingMessage(err))
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.toUser())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", service.DefaultListLimit)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	users, err := h.users.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	// an empty body is an empty patch
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, bindingMessage(err))
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, req.toPatch())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) matchByProfile(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	users, err := h.matches.MatchByProfile(c.Request.Context(), id)
	h.respondMatches(c, "profile", users, err)
}

func (h *Handler) matchByPreferences(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req matchPreferencesRequest
	// an empty body means "no preferences"
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, bindingMessage(err))
		return
	}

	users, err := h.matches.MatchByPreferences(c.Request.Context(), id, req.toPreferences())
	h.respondMatches(c, "preferences", users, err)
}

func (h *Handler) respondMatches(c *gin.Context, source string, users []domain.User, err error) {
	switch {
	case err == nil:
		h.metrics.observeMatches(source, len(users))
		c.JSON(http.StatusOK, usersToResponse(users))
	case errors.Is(err, service.ErrNoMatches):
		h.metrics.observeMatches(source, 0)
		h.fail(c, err)
	default:
		h.fail(c, err)
	}
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + ": must be an integer")
	}
	if v < 0 {
		return 0, errors.New("invalid " + name + ": must be non-negative")
	}
	return v, nil
}
