// Package stubapi is an in-repo double of the external GenLink backend.
//
// The real API is a separate service this repository only consumes. The stub
// implements just enough of its surface - accounts, reports, type tables -
// for the CLI's tests and for offline development. Matching policy (which
// volunteer gets which report, how points are awarded) is deliberately naive
// here; only the wire contracts matter.
package stubapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

// Server is the stub API server
type Server struct {
	router   *gin.Engine
	db       *gorm.DB
	logger   zerolog.Logger
	validate *validator.Validate
	tokens   *TokenIssuer
}

// New creates a stub server over the given sqlite database.
// Use ":memory:" in tests.
func New(dbURL, jwtSecret string, log zerolog.Logger) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	tokens, err := NewTokenIssuer(jwtSecret)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	// Polish phone numbers: exactly 9 digits, no prefix
	if err := validate.RegisterValidation("phone9", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		if len(value) != 9 {
			return false
		}
		for _, char := range value {
			if char < '0' || char > '9' {
				return false
			}
		}
		return true
	}); err != nil {
		return nil, err
	}
	// Passwords need at least one letter and one digit
	if err := validate.RegisterValidation("passwordmix", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		var hasLetter, hasDigit bool
		for _, char := range value {
			switch {
			case char >= '0' && char <= '9':
				hasDigit = true
			case (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z'):
				hasLetter = true
			}
		}
		return hasLetter && hasDigit
	}); err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		logger:   log,
		validate: validate,
		tokens:   tokens,
	}
	s.setupRouter()
	return s, nil
}

// Handler exposes the router for httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server (blocks)
func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting stub API server")
	return s.router.Run(addr)
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")

	accounts := v1.Group("/accounts")
	{
		accounts.POST("/register", s.register)
		accounts.POST("/login", s.login)
		accounts.GET("/volunteers/active", s.listActiveVolunteers)

		me := accounts.Group("/me")
		me.Use(s.authMiddleware())
		{
			me.GET("", s.getMyAccount)
			me.PUT("", s.updateMyAccount)
			me.DELETE("", s.deleteMyAccount)
		}
	}

	reports := v1.Group("/reports")
	{
		reports.POST("/", s.createReport)
		reports.GET("/stats/summary", s.reportStats)

		authed := reports.Group("")
		authed.Use(s.authMiddleware())
		{
			authed.GET("/", s.listReports)
			authed.GET("/my/accepted", s.myAcceptedReport)
			authed.GET("/my/completed", s.myCompletedReports)
			authed.GET("/:id", s.getReport)
			authed.POST("/:id/accept", s.acceptReport)
			authed.POST("/active/cancel", s.cancelActiveReport)
			authed.POST("/active/complete", s.completeActiveReport)
		}
	}

	types := v1.Group("/types")
	{
		types.GET("/report-types", s.listReportTypes)
		types.GET("/availability-types", s.listAvailabilityTypes)
	}
}

// loggingMiddleware logs requests via zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// authMiddleware validates the bearer token and loads the account
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		var account Account
		if err := s.db.Where("id = ?", claims.AccountID).First(&account).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Account no longer exists"})
			return
		}

		c.Set("account", &account)
		c.Next()
	}
}

// currentAccount returns the account loaded by authMiddleware
func currentAccount(c *gin.Context) *Account {
	value, exists := c.Get("account")
	if !exists {
		return nil
	}
	account, ok := value.(*Account)
	if !ok {
		return nil
	}
	return account
}
