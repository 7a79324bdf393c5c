package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

// respondError maps domain errors onto HTTP status codes in one place so
// every handler degrades the same way.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *ledger.ValidationError
		notFoundErr    *ledger.NotFoundError
		transitionErr  *ledger.InvalidStateTransitionError
		processedErr   *ledger.AlreadyProcessedError
		overpayErr     *ledger.OverpaymentError
		overrefundErr  *ledger.OverrefundError
		concurrencyErr *ledger.ConcurrencyConflictError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &transitionErr), errors.As(err, &processedErr), errors.As(err, &concurrencyErr):
		status = http.StatusConflict
	case errors.As(err, &overpayErr), errors.As(err, &overrefundErr):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, response.Error(status, err.Error()))
}

// actorFrom reads the authenticated identity the auth middleware placed
// into the context.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	rawID, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Missing identity"))
		return service.Actor{}, false
	}
	idStr, _ := rawID.(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: c.GetString("userRole")}, true
}

// businessFrom reads the tenant scope from the token claims.
func businessFrom(c *gin.Context) (uuid.UUID, bool) {
	businessID, err := uuid.Parse(c.GetString("businessID"))
	if err != nil {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing business scope"))
		return uuid.Nil, false
	}
	return businessID, true
}

// scope reads both the actor and the business in one step.
func scope(c *gin.Context) (uuid.UUID, service.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return uuid.Nil, service.Actor{}, false
	}
	businessID, ok := businessFrom(c)
	if !ok {
		return uuid.Nil, service.Actor{}, false
	}
	return businessID, actor, true
}
