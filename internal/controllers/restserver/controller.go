// Package restserver exposes the distribution kernel and climatology store
// over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wxcompute/rainodds/internal/climatology"
	"github.com/wxcompute/rainodds/internal/log"
	"github.com/wxcompute/rainodds/pkg/config"
)

const (
	defaultTrials = 10000
	// maxTrials bounds a single simulate request so one caller cannot pin
	// the worker pool for minutes.
	maxTrials = 1000000
)

// Controller serves the rainodds HTTP API.
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	store      climatology.Store
	Server     http.Server
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a REST server controller bound to the given
// climatology store.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, store climatology.Store, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("REST server requires a climatology store")
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}
	if rc.DefaultTrials <= 0 {
		rc.DefaultTrials = defaultTrials
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		store:      store,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the HTTP listener and a shutdown watcher.
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCert != "" && c.restConfig.TLSKey != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCert, c.restConfig.TLSKey); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints.
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestLogger)

	router.HandleFunc("/api/stations", c.handlers.ListStations).Methods(http.MethodGet)
	router.HandleFunc("/api/stations/{station}/pmf", c.handlers.GetStationPMF).Methods(http.MethodGet)
	router.HandleFunc("/api/stations/{station}/exceedance", c.handlers.GetStationExceedance).Methods(http.MethodGet)
	router.HandleFunc("/api/stations/{station}/simulate", c.handlers.GetStationSimulation).Methods(http.MethodGet)
	router.HandleFunc("/api/exceedance", c.handlers.PostExceedance).Methods(http.MethodPost)

	return router
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger tags each request with a UUID and logs method, path, status
// and duration through zap.
func (c *Controller) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		c.logger.Infow("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
