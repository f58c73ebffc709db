package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// Services зависимости сервера
type Services struct {
	Products   *service.ProductService
	Categories *service.CategoryService
	Carts      *service.CartService
	Orders     *service.OrderService
	Auth       *service.AuthService
}

type Server struct {
	engine    *gin.Engine
	log       *slog.Logger
	imagesDir string

	products   *service.ProductService
	categories *service.CategoryService
	carts      *service.CartService
	orders     *service.OrderService
	auth       *service.AuthService
}

// NewServer собирает gin-движок. Загруженные изображения пишутся в imagesDir и отдаются по /images.
func NewServer(svc Services, log *slog.Logger, imagesDir string) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{
		engine:     r,
		log:        log,
		imagesDir:  imagesDir,
		products:   svc.Products,
		categories: svc.Categories,
		carts:      svc.Carts,
		orders:     svc.Orders,
		auth:       svc.Auth,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if s.imagesDir != "" {
		s.engine.Static("/images", s.imagesDir)
	}

	s.engine.Use(s.session())

	auth := s.engine.Group("/auth")
	{
		auth.GET("/me", s.me)
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/logout", s.logout)
	}

	api := s.engine.Group("/api")
	{
		products := api.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)
		products.POST("", s.requireAdmin(), s.createProduct)
		products.PUT(":id", s.requireAdmin(), s.updateProduct)
		products.DELETE(":id", s.requireAdmin(), s.deleteProduct)

		categories := api.Group("/categories")
		categories.GET("", s.listCategories)
		categories.POST("", s.requireAdmin(), s.createCategory)

		cart := api.Group("/cart", s.requireUser())
		cart.GET("", s.listCart)
		cart.POST("", s.addToCart)
		cart.PUT(":id", s.updateCartLine)
		cart.DELETE(":id", s.deleteCartLine)

		orders := api.Group("/order", s.requireUser())
		orders.GET("", s.requireAdmin(), s.listOrders)
		orders.GET(":id", s.listUserOrders)
		orders.POST("", s.createOrder)
		orders.PUT(":id", s.requireAdmin(), s.updateOrderStatus)
		orders.DELETE(":id", s.requireAdmin(), s.deleteOrder)
	}
}

// Product handlers
type productForm struct {
	Name        string   `form:"name" binding:"required"`
	Price       int64    `form:"price" binding:"gte=0"`
	CategoryID  int64    `form:"categoryId" binding:"gte=0"`
	RatingCount int64    `form:"ratingCount" binding:"gte=0"`
	Stars       *float64 `form:"stars" binding:"omitempty,gte=0,lte=5"`
}

func (f productForm) product(id int64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        f.Name,
		Price:       f.Price,
		CategoryID:  f.CategoryID,
		RatingCount: f.RatingCount,
		Stars:       f.Stars,
	}
}

// saveImage сохраняет файл из поля image; без файла возвращает пустую строку
func (s *Server) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", service.ErrInvalidInput
	}
	if s.imagesDir == "" {
		return "", service.ErrInvalidInput
	}
	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(s.imagesDir, name)); err != nil {
		return "", err
	}
	return "images/" + name, nil
}

// @Summary Create product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param price formData int true "Price in minor units"
// @Param categoryId formData int false "Category"
// @Param ratingCount formData int false "Rating count"
// @Param stars formData number false "Stars"
// @Param image formData file false "Image"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	p := form.product(0)
	image, err := s.saveImage(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p.Image = image
	created, err := s.products.Create(c, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.products.GetByID(c, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Product ID"
// @Param name formData string true "Name"
// @Param price formData int true "Price in minor units"
// @Param image formData file false "New image"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	p := form.product(id)
	image, err := s.saveImage(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p.Image = image
	updated, err := s.products.Update(c, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.products.Delete(c, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Name contains"
// @Param category query int false "Category ID"
// @Param min_price query int false "Min price"
// @Param max_price query int false "Max price"
// @Success 200 {array} domain.Product
// @Router /api/products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	if q := c.Query("q"); q != "" {
		f.NameSubstring = q
	}
	if v := c.Query("category"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CategoryID = x
		}
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.products.List(c, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Category handlers
type createCategoryReq struct {
	Name string `json:"name" binding:"required"`
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} domain.Category
// @Router /api/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	list, err := s.categories.List(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body createCategoryReq true "Category"
// @Success 201 {object} domain.Category
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/categories [post]
func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cat, err := s.categories.Create(c, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// fail пишет ошибку с кодом по mapErrorToStatus; внутренние ошибки логируются
func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
