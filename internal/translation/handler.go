package translation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pairchat/pkg/i18n"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/middleware"
	"github.com/richxcame/pairchat/pkg/validation"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for translations
type Handler struct {
	service *Service
}

// NewHandler creates a new translation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Translate translates a chat message
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		h.respondError(c, "translate", req.MessageID, err)
		return
	}

	result, err := h.service.Translate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "translate", req.MessageID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"translation": result,
	})
}

// ListTranslations returns cached translations of a message
func (h *Handler) ListTranslations(c *gin.Context) {
	messageID := c.Param("messageId")

	var req ListRequest
	if err := middleware.ValidateQuery(c, &req); err != nil {
		h.respondError(c, "list_translations", messageID, err)
		return
	}

	translations, err := h.service.ListTranslations(c.Request.Context(), messageID, &req)
	if err != nil {
		h.respondError(c, "list_translations", messageID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"translations": translations})
}

// GetPreference returns the caller's display preference for a message
func (h *Handler) GetPreference(c *gin.Context) {
	messageID := c.Param("messageId")

	userRole, err := middleware.GetUserRole(c)
	if err != nil {
		h.respondUnauthorized(c)
		return
	}

	pref, err := h.service.GetPreference(c.Request.Context(), userRole, messageID)
	if err != nil {
		h.respondError(c, "get_preference", messageID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"preference": pref,
	})
}

// SetPreference stores the caller's display preference for a message
func (h *Handler) SetPreference(c *gin.Context) {
	userRole, err := middleware.GetUserRole(c)
	if err != nil {
		h.respondUnauthorized(c)
		return
	}

	var req PreferenceRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		h.respondError(c, "set_preference", req.MessageID, err)
		return
	}

	pref, err := h.service.SetPreference(c.Request.Context(), userRole, &req)
	if err != nil {
		h.respondError(c, "set_preference", req.MessageID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"preference": pref,
	})
}

// RegisterRoutes registers translation routes. translateMiddleware runs
// only in front of POST /translations, e.g. a rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, translateMiddleware ...gin.HandlerFunc) {
	translations := rg.Group("/translations")
	{
		translations.POST("", append(translateMiddleware, h.Translate)...)
		translations.POST("/preferences", h.SetPreference)
		translations.GET("/preferences/:messageId", h.GetPreference)
		translations.GET("/:messageId", h.ListTranslations)
	}
}

// errorBody is the flat error envelope of the translation API
type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

func (h *Handler) respondError(c *gin.Context, operation, messageID string, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: "translation failed", Code: CodeTranslationFailed}

	var (
		reqErr      *RequestError
		provErr     *Error
		valErr      *validation.ValidationError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.Status
		body = errorBody{Error: reqErr.Message, Code: reqErr.Code, Details: reqErr.Details}
	case errors.As(err, &provErr):
		status = provErr.HTTPStatus
		body = errorBody{Error: provErr.Message, Code: string(provErr.Kind)}
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		body = errorBody{Error: "invalid request", Code: CodeInvalidRequest, Details: valErr.Errors}
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
		body = errorBody{Error: "request body too large", Code: CodeInvalidRequest}
	}

	userRole, _ := middleware.GetUserRole(c)
	fields := []zap.Field{
		zap.String("endpoint", c.FullPath()),
		zap.String("operation", operation),
		zap.String("message_id", messageID),
		zap.String("user_role", userRole),
		zap.String("code", body.Code),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("translation request failed", fields...)
	} else {
		logger.WithContext(c.Request.Context()).Info("translation request rejected", fields...)
	}

	lang := i18n.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
	body.Error = i18n.ErrorMessage(body.Code, lang, body.Error)
	c.JSON(status, body)
}

func (h *Handler) respondUnauthorized(c *gin.Context) {
	lang := i18n.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusUnauthorized, errorBody{
		Error: i18n.ErrorMessage("UNAUTHORIZED", lang, "unauthorized"),
		Code:  "UNAUTHORIZED",
	})
}
