package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope:
// success {success:true, message?, data, count?, total?, totalPages?, currentPage?}
// failure {success:false, error, details?}

func RespondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondOKWithMessage(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func RespondCreated(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RespondPage shapes a paginated listing.
func RespondPage(ctx *gin.Context, items interface{}, count, total, page, limit int) {
	totalPages := 0

	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"success":     true,
		"count":       count,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
		"data":        items,
	})
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	body := gin.H{
		"success": false,
		"error":   message,
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}
