// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdinarayanSahu/campus-reads/internal/bookdelivery"
	"github.com/AdinarayanSahu/campus-reads/internal/bookrepo"
	"github.com/AdinarayanSahu/campus-reads/internal/bookservice"
	"github.com/AdinarayanSahu/campus-reads/internal/borrowdelivery"
	"github.com/AdinarayanSahu/campus-reads/internal/borrowrepo"
	"github.com/AdinarayanSahu/campus-reads/internal/borrowservice"
	"github.com/AdinarayanSahu/campus-reads/internal/domain"
	"github.com/AdinarayanSahu/campus-reads/internal/middleware"
	"github.com/AdinarayanSahu/campus-reads/internal/sessiondelivery"
	"github.com/AdinarayanSahu/campus-reads/internal/sessionrepo"
	"github.com/AdinarayanSahu/campus-reads/internal/sessionservice"
	"github.com/AdinarayanSahu/campus-reads/internal/userdelivery"
	"github.com/AdinarayanSahu/campus-reads/internal/userrepo"
	"github.com/AdinarayanSahu/campus-reads/internal/userservice"
	"github.com/AdinarayanSahu/campus-reads/pkg/configpkg"
	"github.com/AdinarayanSahu/campus-reads/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	bookRepo := bookrepo.NewRepoPGS(conn)
	borrowRepo := borrowrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	bookService := bookservice.New(bookRepo)
	borrowService := borrowservice.New(borrowRepo, userService, bookService)
	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)

	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	bookHandler := bookdelivery.NewHandler(bookService)
	borrowHandler := borrowdelivery.NewHandler(borrowService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Register)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.GET("/books", bookHandler.List)
	authRoutes.GET("/books/:id", bookHandler.Get)

	authRoutes.POST("/borrows", borrowHandler.Submit)
	authRoutes.GET("/borrows/:id", borrowHandler.Get)
	authRoutes.POST("/borrows/:id/return", borrowHandler.Return)
	authRoutes.POST("/borrows/:id/renew", borrowHandler.Renew)
	authRoutes.GET("/borrows/user/:userId", borrowHandler.ListByUser)
	authRoutes.GET("/borrows/user/:userId/active", borrowHandler.ListActiveByUser)
	authRoutes.GET("/borrows/user/:userId/pending", borrowHandler.ListPendingByUser)

	staffRoutes := engine.Group("/")
	staffRoutes.Use(
		middleware.AuthMiddleware(sessionService.TokenMaker),
		middleware.RequireRoles(domain.RoleLibrarian, domain.RoleAdmin),
	)

	staffRoutes.GET("/users", userHandler.List)
	staffRoutes.GET("/users/:id", userHandler.Get)

	staffRoutes.POST("/books", bookHandler.Create)
	staffRoutes.PUT("/books/:id", bookHandler.Update)
	staffRoutes.DELETE("/books/:id", bookHandler.Delete)

	staffRoutes.POST("/borrows/:id/approve", borrowHandler.Approve)
	staffRoutes.POST("/borrows/:id/reject", borrowHandler.Reject)
	staffRoutes.GET("/borrows", borrowHandler.ListAll)
	staffRoutes.GET("/borrows/active", borrowHandler.ListActive)
	staffRoutes.GET("/borrows/overdue", borrowHandler.ListOverdue)
	staffRoutes.GET("/borrows/pending", borrowHandler.ListPending)
	staffRoutes.GET("/borrows/book/:bookId", borrowHandler.ListByBook)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
