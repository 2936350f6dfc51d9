package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/retail-pos/internal/auth"
	"github.com/tuanvumaihuynh/retail-pos/internal/config"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/metric"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/middleware"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/swagger"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/service"
	"github.com/tuanvumaihuynh/retail-pos/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg        config.HTTP
	logger     *slog.Logger
	metrics    *metric.Metrics
	jwtManager *auth.JWTManager

	authHandler    *authHandler
	productHandler *productHandler
	cartHandler    *cartHandler
	saleHandler    *saleHandler
	userHandler    *userHandler
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	v validator.Validator,
	jwtManager *auth.JWTManager,
	authSvc service.AuthService,
	productSvc service.ProductService,
	cartSvc service.CartService,
	saleSvc service.SaleService,
	userSvc service.UserService,
) *Service {
	logger := log.With(slog.String("service", "http"))
	rp := &responder{logger: logger, validator: v}

	return &Service{
		cfg:        cfg,
		logger:     logger,
		metrics:    metric.New(),
		jwtManager: jwtManager,

		authHandler:    newAuthHandler(rp, authSvc),
		productHandler: newProductHandler(rp, productSvc),
		cartHandler:    newCartHandler(rp, cartSvc),
		saleHandler:    newSaleHandler(rp, saleSvc),
		userHandler:    newUserHandler(rp, userSvc),
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	authed := middleware.Authenticate(s.jwtManager)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	staffOrAdmin := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", s.authHandler.Register)
			ar.Post("/login", s.authHandler.Login)

			ar.Group(func(ar chi.Router) {
				ar.Use(authed)
				ar.Get("/me", s.authHandler.Me)
				ar.Post("/logout", s.authHandler.Logout)
			})
		})

		api.Route("/products", func(pr chi.Router) {
			pr.Get("/", s.productHandler.List)
			pr.Get("/{id}", s.productHandler.Get)

			pr.Group(func(pr chi.Router) {
				pr.Use(authed, adminOnly)
				pr.Post("/", s.productHandler.Create)
				pr.Put("/{id}", s.productHandler.Update)
				pr.Delete("/{id}", s.productHandler.Delete)
			})

			pr.Group(func(pr chi.Router) {
				pr.Use(authed, staffOrAdmin)
				pr.Get("/alerts/low-stock", s.productHandler.LowStockAlerts)
				pr.Patch("/{id}/stock", s.productHandler.UpdateStock)
			})
		})

		api.Route("/cart", func(cr chi.Router) {
			cr.Use(authed)
			cr.Get("/", s.cartHandler.Get)
			cr.Post("/add", s.cartHandler.AddItem)
			cr.Put("/update", s.cartHandler.UpdateItem)
			cr.Delete("/remove/{productId}", s.cartHandler.RemoveItem)
			cr.Delete("/clear", s.cartHandler.Clear)
		})

		api.Route("/sales", func(sr chi.Router) {
			sr.Use(authed)
			sr.Post("/checkout", s.saleHandler.Checkout)
			sr.Get("/my/history", s.saleHandler.MyHistory)
			sr.Get("/{id}", s.saleHandler.Get)

			sr.Group(func(sr chi.Router) {
				sr.Use(staffOrAdmin)
				sr.Post("/", s.saleHandler.Create)
				sr.Get("/", s.saleHandler.List)
				sr.Get("/stats/summary", s.saleHandler.Stats)
			})
		})

		api.Route("/users", func(ur chi.Router) {
			ur.Use(authed, adminOnly)
			ur.Get("/", s.userHandler.List)
			ur.Get("/stats", s.userHandler.Stats)
			ur.Get("/{id}", s.userHandler.Get)
			ur.Post("/", s.userHandler.Create)
			ur.Put("/{id}", s.userHandler.Update)
			ur.Patch("/{id}/toggle-status", s.userHandler.ToggleStatus)
			ur.Delete("/{id}", s.userHandler.Delete)
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}
