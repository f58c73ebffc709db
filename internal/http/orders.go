package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// Cart handlers
type addToCartReq struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gte=1,lte=999"`
}

type quantityReq struct {
	Quantity int64 `json:"quantity" binding:"required,gte=1,lte=999"`
}

// @Summary Current user's cart
// @Tags cart
// @Produce json
// @Success 200 {array} domain.CartItem
// @Failure 401 {object} map[string]string
// @Router /api/cart [get]
func (s *Server) listCart(c *gin.Context) {
	u, _ := currentUser(c)
	items, err := s.carts.List(c, u.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Add to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addToCartReq true "Line"
// @Success 201 {object} domain.CartItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/cart [post]
func (s *Server) addToCart(c *gin.Context) {
	var req addToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, _ := currentUser(c)
	item, err := s.carts.Add(c, u.ID, req.ProductID, req.Quantity)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// @Summary Update cart line quantity
// @Tags cart
// @Accept json
// @Param id path int true "Cart line ID"
// @Param input body quantityReq true "Quantity"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/cart/{id} [put]
func (s *Server) updateCartLine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, _ := currentUser(c)
	if err := s.carts.Update(c, u.ID, id, req.Quantity); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete cart line
// @Tags cart
// @Param id path int true "Cart line ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/cart/{id} [delete]
func (s *Server) deleteCartLine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, _ := currentUser(c)
	if err := s.carts.Delete(c, u.ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Order handlers
type createOrderReq struct {
	CustomerName    string               `json:"customerName" binding:"required"`
	CustomerNumber  string               `json:"customerNumber"`
	CustomerAddress string               `json:"customerAddress" binding:"required"`
	Status          domain.OrderStatus   `json:"status"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod"`
	Total           int64                `json:"total" binding:"gte=0"`
}

type statusReq struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// @Summary All orders
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Failure 403 {object} map[string]string
// @Router /api/order [get]
func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.List(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Orders of a user
// @Description Customers may only read their own orders
// @Tags orders
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} domain.Order
// @Failure 403 {object} map[string]string
// @Router /api/order/{id} [get]
func (s *Server) listUserOrders(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, _ := currentUser(c)
	if u.ID != id && !u.IsAdmin() {
		s.fail(c, service.ErrForbidden)
		return
	}
	list, err := s.orders.ListByUser(c, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Place order from the current cart
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Customer details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/order [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, _ := currentUser(c)
	o, err := s.orders.CreateFromCart(c, u.ID, service.OrderInput{
		CustomerName:    req.CustomerName,
		CustomerNumber:  req.CustomerNumber,
		CustomerAddress: req.CustomerAddress,
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		Total:           req.Total,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary Change order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body statusReq true "Status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/order/{id} [put]
func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.UpdateStatus(c, id, req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Delete order
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/order/{id} [delete]
func (s *Server) deleteOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.orders.Delete(c, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
