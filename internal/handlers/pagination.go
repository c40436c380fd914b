package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePaginationParams reads pageNumber and pageSize. A missing or
// malformed value falls back to its default; pageSize 0 means "all".
func parsePaginationParams(c *gin.Context, defaultSize int64) (pageNumber, pageSize int64) {
	pageNumber = 1
	pageSize = defaultSize

	if raw := c.Query("pageNumber"); raw != "" {
		if p, err := strconv.ParseInt(raw, 10, 64); err == nil && p >= 1 {
			pageNumber = p
		}
	}
	if raw := c.Query("pageSize"); raw != "" {
		if s, err := strconv.ParseInt(raw, 10, 64); err == nil && s >= 1 {
			pageSize = s
		}
	}
	return pageNumber, pageSize
}

func skipFor(pageNumber, pageSize int64) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (pageNumber - 1) * pageSize
}
