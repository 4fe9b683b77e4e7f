package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dukkan-system/internal/apperr"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int64 `json:"pages"`
}

func pageMeta(total int64, page, pageSize int) PageMeta {
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return PageMeta{Total: total, Page: page, PageSize: pageSize, Pages: pages}
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// writeError maps the service error taxonomy to HTTP statuses. Consistency
// faults are the only fatal class: they are logged here with the full chain
// and reported as 500 so operators can reconcile.
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case apperr.IsInvalidArgument(err), apperr.IsInsufficientStock(err), apperr.IsAlreadyExists(err):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case apperr.IsConsistencyFault(err):
		log.Printf("Consistency fault surfaced to client: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Internal inconsistency detected; operation rolled back"))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Internal server error"))
	}
}
