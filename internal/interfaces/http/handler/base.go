package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/infrastructure/logger"
	"github.com/condoledger/backend/internal/interfaces/http/dto"
	"github.com/condoledger/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides shared response helpers for all HTTP handlers.
type BaseHandler struct{}

// Success writes a 200 response with the given payload.
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 response with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 response with the given payload.
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 validation error response.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeValidation, message, middleware.GetRequestID(c)))
}

// HandleError maps an error to the appropriate HTTP response. Domain
// errors carry their own code; anything else becomes a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An internal error occurred", requestID))
}

// tenantID resolves the tenant from the JWT, falling back to the
// X-Tenant-ID header for internal service-to-service calls.
func (h *BaseHandler) tenantID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetJWTTenantID(c); ok {
		return id, nil
	}
	if header := c.GetHeader("X-Tenant-ID"); header != "" {
		id, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, shared.NewDomainError("INVALID_TENANT", "X-Tenant-ID header is not a valid UUID")
		}
		return id, nil
	}
	return uuid.Nil, shared.NewDomainError(dto.ErrCodeUnauthorized, "Tenant could not be determined from the request")
}

// userID resolves the acting user from the JWT, falling back to the
// X-User-ID header.
func (h *BaseHandler) userID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetJWTUserID(c); ok {
		return id, nil
	}
	if header := c.GetHeader("X-User-ID"); header != "" {
		id, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, shared.NewDomainError("INVALID_USER", "X-User-ID header is not a valid UUID")
		}
		return id, nil
	}
	return uuid.Nil, shared.NewDomainError(dto.ErrCodeUnauthorized, "User could not be determined from the request")
}

// pathUUID parses a UUID path parameter.
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Path parameter '"+name+"' is not a valid UUID")
	}
	return id, nil
}
