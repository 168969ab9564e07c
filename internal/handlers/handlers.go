package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/api/internal/cache"
	"storefront/api/internal/config"
	"storefront/api/internal/middleware"
	"storefront/api/internal/models"
	"storefront/api/internal/payment"
	"storefront/api/internal/permissions"
	"storefront/api/internal/repository"
	"storefront/api/internal/service"
	"storefront/api/internal/storage"
)

// AuthService is the slice of the auth service the handlers call.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (service.TokenPair, error)
	Refresh(ctx context.Context, oldToken string) (service.TokenPair, error)
}

// OrderService is the slice of the order service the handlers call.
type OrderService interface {
	CreateOrder(ctx context.Context, requester models.User, input service.CreateOrderInput) (models.Order, error)
	GetOrder(ctx context.Context, requester models.User, orderID int64) (models.Order, error)
	ListOrders(ctx context.Context, requester models.User) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, requester models.User, userID int64) ([]models.Order, error)
	CreatePaymentSession(ctx context.Context, requester models.User, orderID int64) (string, error)
	CompletePayment(ctx context.Context, requester models.User, orderID int64) error
}

type ProductStore interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetByID(ctx context.Context, id int64) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product models.Product) error
	UpdateImage(ctx context.Context, id int64, imageURL string) error
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]models.Product, error)
	AddProduct(ctx context.Context, categoryID, productID int64) (models.CategoryItem, error)
	RemoveProduct(ctx context.Context, categoryID, productID int64) error
	Delete(ctx context.Context, id int64) error
}

// ImageStore stores uploaded product images and returns their public URL.
type ImageStore interface {
	PutProductImage(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	authService  AuthService
	orderService OrderService
	users        service.UserStore
	products     ProductStore
	categories   CategoryStore
	images       ImageStore
	perms        *permissions.Engine
	catalog      *cache.Catalog
	db           *pgxpool.Pool
	rdb          *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	perms := permissions.New()
	checkout := payment.NewClient(cfg.Payment)
	auth := service.NewAuthService(userRepo, tokenRepo, cfg, log)
	orders := service.NewOrderService(orderRepo, userRepo, checkout, perms, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		authService:  auth,
		orderService: orders,
		users:        userRepo,
		products:     productRepo,
		categories:   categoryRepo,
		images:       store,
		perms:        perms,
		catalog:      cache.NewCatalog(rdb),
		db:           db,
		rdb:          rdb,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	limit := middleware.RateLimit(h.cfg.RateLimit, h.rdb)
	auth := middleware.Auth(h.cfg, h.users)

	users := v1.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.POST("/login", limit, h.Login)
		users.POST("/refresh", limit, h.Refresh)

		protected := v1.Group("/users")
		protected.Use(auth)
		protected.GET("", h.ListUsers)
		protected.GET("/:id", h.GetUser)
		protected.DELETE("/:id", h.DeleteUser)
	}

	products := v1.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)

		admin := v1.Group("/products")
		admin.Use(auth)
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
		admin.POST("/:id/image", h.UploadProductImage)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id/products", h.ListCategoryProducts)

		admin := v1.Group("/categories")
		admin.Use(auth)
		admin.POST("", h.CreateCategory)
		admin.DELETE("/:id", h.DeleteCategory)
		admin.POST("/:id/products/:productId", h.AddCategoryProduct)
		admin.DELETE("/:id/products/:productId", h.RemoveCategoryProduct)
	}

	orders := v1.Group("/orders")
	{
		// the payment provider redirects the browser here without a token
		orders.GET("/success", h.PaymentSuccess)
		orders.GET("/cancel", h.PaymentCancel)

		protected := v1.Group("/orders")
		protected.Use(auth)
		protected.POST("", h.CreateOrder)
		protected.GET("", h.ListOrders)
		protected.GET("/:id", h.GetOrder)
		protected.GET("/user/:id", h.ListOrdersByUser)
		protected.POST("/:id/payment", h.CreatePayment)
		protected.POST("/:id/payment-completed", h.CompletePayment)
	}
}
