package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/taskman-dev/taskman/internal/config"
	v1 "github.com/taskman-dev/taskman/internal/delivery/http/v1"
	"github.com/taskman-dev/taskman/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	sessionCfg := config.Global().Session

	userService := services.NewUserService(globalLogger, globalPostgresPool)
	sessionService := services.NewSessionService(
		globalLogger,
		globalPostgresPool,
		sessionCfg.Issuer,
		[]byte(sessionCfg.Secret),
		sessionCfg.TTL,
	)
	taskService := services.NewTaskService(globalLogger, globalPostgresPool)

	v1Handler := v1.New(
		globalLogger,
		userService,
		sessionService,
		taskService,
	)

	// One bucket per credential endpoint pair keeps password guessing
	// slow without touching the task routes.
	authLimiter := v1.RateLimiter(rate.Limit(1), 5)

	router.GET("/", v1Handler.HandleIndex)
	router.GET("/login", v1Handler.HandleLoginPage)
	router.POST("/login", authLimiter, v1Handler.HandleLogin)
	router.GET("/register", v1Handler.HandleRegisterPage)
	router.POST("/register", authLimiter, v1Handler.HandleRegister)
	router.GET("/logout", v1Handler.HandleLogout)

	router.GET("/dashboard", v1Handler.HandleSessionMiddleware, v1Handler.HandleDashboard)

	taskRouter := router.Group("/task")
	taskRouter.Use(v1Handler.HandleSessionMiddleware)
	taskRouter.POST("/create", v1Handler.HandleCreateTask)
	taskRouter.POST("/:id/update", v1Handler.HandleUpdateTask)
	taskRouter.POST("/:id/delete", v1Handler.HandleDeleteTask)
}
