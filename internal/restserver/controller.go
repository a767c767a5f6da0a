package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/runningmedian/internal/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	config   Config
	Server   http.Server
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg Config, logger *zap.SugaredLogger) (*Controller, error) {
	cfg.ApplyDefaults(logger)

	if _, err := parseDefaults(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		config: cfg,
		logger: logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.HTTPPort)
	ctrl.Server.Handler = router
	ctrl.Server.ReadTimeout = 30 * time.Second
	ctrl.Server.WriteTimeout = 30 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestLogMiddleware)

	router.HandleFunc("/api/v1/median", c.handlers.HandleMedian).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/taperings", c.handlers.HandleTaperings).Methods(http.MethodGet)
	router.HandleFunc("/health", c.handlers.HandleHealth).Methods(http.MethodGet)

	return router
}

// requestLogMiddleware tags every request with an ID and logs its outcome
func (c *Controller) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		c.logger.Debugw("handled request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
