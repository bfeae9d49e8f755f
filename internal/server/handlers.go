package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type selectionRequest struct {
	ProductID *int64 `json:"product_id"`
}

// statusFor maps a store error kind to an HTTP status.
func statusFor(err error) int {
	switch store.KindOf(err) {
	case store.KindValidation:
		return http.StatusUnauthorized
	case store.KindNetwork, store.KindDecode:
		return http.StatusBadGateway
	case store.KindSuperseded:
		return http.StatusConflict
	case store.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  store.KindOf(err).String(),
	})
}

func (s *Server) requireSession(c *gin.Context) {
	if !s.store.Snapshot().IsAuthenticated {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	c.Next()
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if _, err := s.store.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) logout(c *gin.Context) {
	if err := s.store.Logout().Wait(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) refreshCatalog(c *gin.Context) {
	if err := s.store.FetchProducts(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(s.store.Snapshot().Products)})
}

func (s *Server) selectProduct(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if req.ProductID == nil {
		s.store.SetSelectedProduct(nil)
		c.JSON(http.StatusOK, s.store.Snapshot())
		return
	}

	product, ok := models.FindProduct(s.store.Snapshot().Products, *req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
		return
	}
	s.store.SetSelectedProduct(&product)
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	product, ok := models.FindProduct(s.store.Snapshot().Products, req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
		return
	}
	s.respondAfterWrite(c, s.store.AddToCart(product))
}

func (s *Server) updateCartItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	s.respondAfterWrite(c, s.store.UpdateCartItemQuantity(id, *req.Quantity))
}

func (s *Server) removeCartItem(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	s.respondAfterWrite(c, s.store.RemoveFromCart(id))
}

func (s *Server) clearCart(c *gin.Context) {
	s.respondAfterWrite(c, s.store.ClearCart())
}

// respondAfterWrite waits for the cart to reach durable storage and returns
// the new state. The in-memory change stands even if the write failed.
func (s *Server) respondAfterWrite(c *gin.Context, pending *store.Pending) {
	if err := pending.Wait(c.Request.Context()); err != nil {
		var storeErr *store.Error
		if !errors.As(err, &storeErr) {
			err = &store.Error{Kind: store.KindCanceled, Op: "persist", Err: err}
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return id, true
}
