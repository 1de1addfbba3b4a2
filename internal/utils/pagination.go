package utils

import (
	"math"
	"strconv"

	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// GetPageParams reads page and page_size query parameters, clamping them to
// sane values.
func GetPageParams(ctx *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}

func NewPageMeta(page, pageSize int, total int64) types.PageMeta {
	return types.PageMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}

// PageOffset converts a 1-based page into an OFFSET.
func PageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}
