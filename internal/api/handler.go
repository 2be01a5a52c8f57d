package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/salesledger/internal/apperr"
	"github.com/mmynk/salesledger/internal/middleware"
	"github.com/mmynk/salesledger/internal/service"
)

var (
	errInvalidBody     = errors.New("invalid request body")
	errOwnerImmutable  = errors.New("userId cannot be changed")
	errMissingIdentity = errors.New("authenticated identity missing from request")
)

// handler holds the services and implements the HTTP endpoints.
type handler struct {
	auth    *service.AuthService
	sales   *service.SaleService
	metrics *middleware.Metrics
}

// writeError renders err with the status its code maps to.
// The full error is attached to the gin context for the request logger.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := apperr.CodeOf(err)
	c.JSON(code.HTTPStatus(), errorResponse{Error: apperr.MessageOf(err)})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperr.New(apperr.CodeInvalidArgument, errInvalidBody))
		_ = c.Error(err)
		return false
	}
	return true
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeUnauthenticated {
			h.metrics.AuthFailures.WithLabelValues("login").Inc()
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTokenResponse(token))
}

func (h *handler) refreshToken(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTokenResponse(token))
}

func (h *handler) me(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	// Role as carried by the token, which may lag behind the stored one.
	resp := toUserResponse(user)
	resp.Role = string(caller.Role)
	c.JSON(http.StatusOK, resp)
}

func (h *handler) createSale(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	var req createSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	sale, err := h.sales.CreateSale(c.Request.Context(), caller, service.CreateSaleInput{
		ProductName: req.ProductName,
		Amount:      req.Amount,
		DateOfSale:  req.DateOfSale,
		Status:      req.Status,
		UserID:      req.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

func (h *handler) listSales(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	sales, err := h.sales.ListSales(c.Request.Context(), caller, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponses(sales))
}

func (h *handler) getSale(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(sale))
}

func (h *handler) updateSale(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	var req updateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID != nil {
		writeError(c, apperr.New(apperr.CodeInvalidArgument, errOwnerImmutable))
		return
	}

	sale, err := h.sales.UpdateSale(c.Request.Context(), caller, c.Param("id"), service.UpdateSaleInput{
		ProductName: req.ProductName,
		Amount:      req.Amount,
		DateOfSale:  req.DateOfSale,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(sale))
}

func (h *handler) deleteSale(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		writeError(c, apperr.New(apperr.CodeInternal, errMissingIdentity))
		return
	}

	if err := h.sales.DeleteSale(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Sale deleted successfully"})
}
