package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type HTTPServer struct {
	address        string
	handlers       *Handlers
	logger         logging.Logger
	frontendOrigin string
}

func NewHTTPServer(address string, logger logging.Logger, users UserService, frontendOrigin string) *HTTPServer {
	return &HTTPServer{
		address:        address,
		handlers:       NewHandlers(users, logger),
		logger:         logger.With("module", "http_server"),
		frontendOrigin: frontendOrigin,
	}
}

// Router builds the route table with CORS for the configured frontend origin.
func (s *HTTPServer) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handlers.Health).Methods(http.MethodGet)

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", s.handlers.Signup).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", s.handlers.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/forgot-password", s.handlers.ForgotPassword).Methods(http.MethodPost)
	authRouter.HandleFunc("/reset-password", s.handlers.ResetPassword).Methods(http.MethodPost)
	authRouter.HandleFunc("/profile", s.handlers.UpdateProfile).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.frontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
