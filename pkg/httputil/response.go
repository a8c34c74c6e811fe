package httputil

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is returned by operations without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps paginated data
type ListResponse struct {
	Items       interface{} `json:"items"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Total       int         `json:"total"`
}

// RespondWithError sends an error response. Errors that are not an
// *errors.AppError are logged and reported as a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.FromError(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Message: appErr.Message})
}

// RespondWithMessage sends a bare {message} body
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}

// RespondWithList sends a paginated response
func RespondWithList(c *gin.Context, items interface{}, page, limit, total int) {
	c.JSON(http.StatusOK, ListResponse{
		Items:       items,
		TotalPages:  TotalPages(total, limit),
		CurrentPage: page,
		Total:       total,
	})
}

// TotalPages is ceil(total/limit), zero when there is nothing to page.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Pagination reads page and limit from the query string, applying defaults
// and clamping limit to MaxLimit.
func Pagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// BindJSON decodes and validates the request body into obj. On failure it
// writes a 400 with the validation message and returns false. An empty body
// is validated as an empty object, so missing required fields are listed.
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if stderrors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err != nil {
		RespondWithError(c, errors.Validation(validator.Message(err), err))
		return false
	}
	return true
}
