package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// domainErrors maps service errors to responses. The first match wins.
var domainErrors = []errorMapping{
	{domain.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND", "Product not found"},
	{domain.ErrCartItemNotFound, http.StatusNotFound, "NOT_FOUND", "Cart item not found"},
	{domain.ErrCartNotFound, http.StatusNotFound, "NOT_FOUND", "Cart not found"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND", "Order not found"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Not enough permissions"},

	{domain.ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE", "Price must be greater than zero"},
	{domain.ErrInvalidStock, http.StatusBadRequest, "INVALID_STOCK", "Stock must not be negative"},
	{domain.ErrInvalidCondition, http.StatusBadRequest, "INVALID_CONDITION", "Condition must be NEW or USED"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be greater than zero"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", "Shipping cost and discount must not be negative"},
	{domain.ErrEmptyOrder, http.StatusBadRequest, "EMPTY_ORDER", "Order must contain at least one item"},
	{domain.ErrSellerMismatch, http.StatusBadRequest, "SELLER_MISMATCH", "Every product must belong to the seller"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART", "Cart is empty"},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status"},

	{domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock"},
	{domain.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Order cannot move to that status"},
	{domain.ErrOrderNotPayable, http.StatusConflict, "ORDER_NOT_PAYABLE", "Order is not awaiting payment"},
	{domain.ErrCartNotActive, http.StatusConflict, "CART_NOT_ACTIVE", "Cart was already checked out"},

	{domain.ErrGatewayUnavailable, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "Payment gateway unavailable"},
}

// writeError answers with the mapped status for a known error and a bare 500
// otherwise
func writeError(c *gin.Context, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			c.JSON(m.status, response.Error(m.code, m.message))
			return
		}
	}
	response.AbortInternal(c, err)
}

// currentCaller reads the authenticated caller, answering 401 itself when it
// cannot
func currentCaller(c *gin.Context) (service.Caller, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return service.Caller{}, false
	}
	caller, err := service.CallerFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
		return service.Caller{}, false
	}
	return caller, true
}

// optionalCaller returns the caller when Guard.Optional stored valid claims
func optionalCaller(c *gin.Context) *service.Caller {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return nil
	}
	caller, err := service.CallerFromClaims(claims)
	if err != nil {
		return nil
	}
	return &caller
}

// pathID parses a positive integer path parameter, answering 400 itself when
// it is malformed
func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest(label+" id must be a positive integer"))
		return 0, false
	}
	return id, true
}
