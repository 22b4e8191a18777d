package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"bazaar/internal/domain"
	cartsvc "bazaar/internal/service/cart"
	sessionsvc "bazaar/internal/service/session"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	session         *sessionsvc.Service
	carts           *cartsvc.Service
	defaultCurrency string
}

type loginRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	AnonymousCartID string `json:"anonymousCartId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type createCartRequest struct {
	Currency string `json:"currency" binding:"required"`
}

type itemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

func (h *handlers) signup(c *gin.Context) {
	var in sessionsvc.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	customer, err := h.session.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *handlers) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.session.Login(c.Request.Context(), in.Email, in.Password, in.AnonymousCartID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) refresh(c *gin.Context) {
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	tokens, err := h.session.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (h *handlers) logout(c *gin.Context) {
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.session.Logout(c.Request.Context(), in.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) createCart(c *gin.Context) {
	var in createCartRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cart, err := h.carts.Create(c.Request.Context(), domain.AnonymousOwner(), in.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) addItem(c *gin.Context) {
	var in itemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), c.Param("id"), in.SKU, in.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeItem(c *gin.Context) {
	var in itemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), c.Param("id"), in.SKU, in.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) applyDiscount(c *gin.Context) {
	cart, err := h.carts.ApplyDiscount(c.Request.Context(), c.Param("id"), c.Param("discountId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeDiscount(c *gin.Context) {
	cart, err := h.carts.RemoveDiscount(c.Request.Context(), c.Param("id"), c.Param("discountId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

const customerKey = "customer"

func (h *handlers) requireAccessToken(c *gin.Context) {
	raw, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	customer, err := h.session.Authenticate(c.Request.Context(), raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorKind(err)})
		return
	}
	c.Set(customerKey, customer)
	c.Next()
}

func (h *handlers) currentCustomer(c *gin.Context) {
	customer := c.MustGet(customerKey).(*domain.Customer)
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *handlers) updateCustomer(c *gin.Context) {
	customer := c.MustGet(customerKey).(*domain.Customer)
	var in sessionsvc.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	updated, err := h.session.UpdateProfile(c.Request.Context(), customer.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": updated})
}

func (h *handlers) currentCart(c *gin.Context) {
	customer := c.MustGet(customerKey).(*domain.Customer)
	cart, err := h.carts.ForCustomer(c.Request.Context(), customer.ID, h.defaultCurrency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// respondError maps domain error kinds onto status codes. Only the
// coarse kind goes out; details stay in the server.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errorKind(err)})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnknownSKU),
		errors.Is(err, domain.ErrCurrencyMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errorKind(err)})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, domain.ErrConflictRetryExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict, retry"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, domain.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "token malformed"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "token revoked"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid quantity"
	case errors.Is(err, domain.ErrUnknownSKU):
		return "unknown sku"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency mismatch"
	}
	return "error"
}
