package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"urban-match/internal/service"
)

const (
	codeInvalidRequest  = "invalid_request"
	codeUserNotFound    = "user_not_found"
	codeNoMatches       = "no_matches"
	codeRateLimited     = "rate_limited"
	codeStorageDisabled = "storage_disabled"
	codeInternal        = "internal_error"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// fail maps a service error onto a status code and error code.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, codeInvalidRequest, verr.Error())
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, codeUserNotFound, "User not found")
	case errors.Is(err, service.ErrNoMatches):
		respondError(c, http.StatusNotFound, codeNoMatches, "No matches found")
	case errors.Is(err, service.ErrStorageDisabled):
		respondError(c, http.StatusServiceUnavailable, codeStorageDisabled, err.Error())
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).Error("request failed")
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// bindingMessage flattens validator errors into "field: rule" pairs.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", field))
		case "ltefield":
			parts = append(parts, fmt.Sprintf("%s must not exceed %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		v.RegisterStructValidation(ageRangeValidation, matchPreferencesRequest{})
	})
}

func ageRangeValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(matchPreferencesRequest)
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		sl.ReportError(req.MinAge, "min_age", "MinAge", "ltefield", "max_age")
	}
}
