package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size of list endpoints
	DefaultLimit = 15
	// MaxLimit caps the page size a client may request
	MaxLimit = 100
)

// PaginationParams holds pagination-related query parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// ParsePaginationParams parses and validates pagination parameters from the request
// with support for default and maximum limits
func ParsePaginationParams(c *gin.Context, defaultLimit int, maxLimit int) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

// SendPaginatedResponse sends a list envelope with count, page and totalPages
func SendPaginatedResponse(c *gin.Context, statusCode int, data interface{}, count, page, totalPages int) {
	c.JSON(statusCode, Envelope{
		Success:    true,
		Data:       data,
		Count:      &count,
		Page:       &page,
		TotalPages: &totalPages,
	})
}
