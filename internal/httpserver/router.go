package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/catalog"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/order"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type SessionService interface {
	SignIn(ctx context.Context, clientID, email, password string) (*domain.User, error)
	SignUp(ctx context.Context, clientID, email, password, fullName string) (*session.SignUpOutcome, error)
	SignOut(ctx context.Context, clientID string) error
	RecoverPassword(ctx context.Context, email string) error
	CurrentUser(ctx context.Context, clientID string) (*domain.User, error)
	Profile(ctx context.Context, clientID string) (*domain.Profile, error)
}

type CatalogService interface {
	List(ctx context.Context, clientID string, f catalog.Filter) ([]domain.Course, error)
	GetBySlug(ctx context.Context, clientID, slug string) (*domain.Course, error)
}

type CartService interface {
	Summary(ctx context.Context, clientID string) (domain.CartSummary, error)
	Add(ctx context.Context, clientID string, item domain.CartItem) (domain.CartSummary, error)
	Remove(ctx context.Context, clientID, id string) (domain.CartSummary, error)
	Clear(ctx context.Context, clientID string) error
}

type OrderService interface {
	Checkout(ctx context.Context, clientID string) (order.CheckoutResult, error)
	CreateOrder(ctx context.Context, clientID string, courseIDs []string, total int64) (string, error)
	MarkOrderPaid(ctx context.Context, clientID, orderID string) (bool, error)
	List(ctx context.Context, clientID string) ([]domain.Order, error)
	Get(ctx context.Context, clientID, orderID string) (domain.Order, error)
	PayWithBalance(ctx context.Context, clientID, orderID string) (order.PaymentResult, error)
}

type BalanceService interface {
	Snapshot(ctx context.Context, clientID string) (domain.WalletSnapshot, error)
	RedeemCode(ctx context.Context, clientID, code string) (domain.WalletSnapshot, error)
	Pay(ctx context.Context, clientID string, amount int64, orderID string) (domain.WalletSnapshot, error)
}

type EnrollmentService interface {
	Mine(ctx context.Context, clientID string) ([]domain.Enrollment, error)
	HasAccess(ctx context.Context, clientID, courseID string) (bool, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, clientID string) ([]domain.AdminUser, error)
	ListCourses(ctx context.Context, clientID string) ([]domain.Course, error)
	UserEnrollments(ctx context.Context, clientID, userID string) ([]domain.Enrollment, error)
	GrantEnrollment(ctx context.Context, clientID, userID, courseID string) ([]domain.Enrollment, error)
	RevokeEnrollment(ctx context.Context, clientID, userID, courseID string) ([]domain.Enrollment, error)
	CreateRechargeCode(ctx context.Context, clientID string, in admin.NewRechargeCode) (domain.RechargeCode, error)
	ListRechargeCodes(ctx context.Context, clientID string) ([]domain.RechargeCode, error)
	SetUserAdmin(ctx context.Context, clientID, userID string, isAdmin bool) error
	DebugAdminStatus(ctx context.Context, clientID string) (json.RawMessage, error)
}

// Deps carries the services the handlers call into.
type Deps struct {
	SessionSvc    SessionService
	CatalogSvc    CatalogService
	CartSvc       CartService
	OrderSvc      OrderService
	BalanceSvc    BalanceService
	EnrollmentSvc EnrollmentService
	AdminSvc      AdminService
}

// Options holds transport settings that are not services.
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	Ready          ReadyFunc
}

func (d Deps) validate() error {
	switch {
	case d.SessionSvc == nil:
		return errors.New("session service is required")
	case d.CatalogSvc == nil:
		return errors.New("catalog service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	case d.BalanceSvc == nil:
		return errors.New("balance service is required")
	case d.EnrollmentSvc == nil:
		return errors.New("enrollment service is required")
	case d.AdminSvc == nil:
		return errors.New("admin service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, opts Options, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(opts.Ready))

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api", clientMiddleware(opts.CookieSecure))

	auth := api.Group("/auth")
	auth.POST("/signin", h.signIn)
	auth.POST("/signup", h.signUp)
	auth.POST("/signout", h.signOut)
	auth.POST("/recover", h.recoverPassword)
	auth.GET("/me", h.me)

	api.GET("/courses", h.listCourses)
	api.GET("/courses/:slug", h.getCourse)

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.DELETE("/cart/items/:id", h.removeCartItem)
	api.DELETE("/cart", h.clearCart)

	api.POST("/checkout", h.checkout)
	api.POST("/orders", h.createOrder)
	api.GET("/orders", h.listOrders)
	api.GET("/orders/:id", h.getOrder)
	api.POST("/orders/:id/pay", h.payOrder)
	api.POST("/orders/:id/mark-paid", h.markOrderPaid)

	api.GET("/balance", h.getBalance)
	api.POST("/balance/redeem", h.redeemCode)
	api.POST("/balance/pay", h.payWithBalance)

	api.GET("/enrollments", h.listEnrollments)
	api.GET("/enrollments/:courseId/access", h.courseAccess)

	adm := api.Group("/admin", adminOnly(deps.SessionSvc))
	adm.GET("/users", h.adminUsers)
	adm.PUT("/users/:userId/admin", h.adminSetAdmin)
	adm.GET("/users/:userId/enrollments", h.adminUserEnrollments)
	adm.POST("/users/:userId/enrollments", h.adminGrantEnrollment)
	adm.DELETE("/users/:userId/enrollments/:courseId", h.adminRevokeEnrollment)
	adm.GET("/courses", h.adminCourses)
	adm.GET("/recharge-codes", h.adminRechargeCodes)
	adm.POST("/recharge-codes", h.adminCreateRechargeCode)
	// Reachable without the admin flag so a misconfigured profile can be diagnosed.
	api.GET("/admin/debug", h.adminDebug)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", clientHeader},
		ExposeHeaders:    []string{clientHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
