package api

import (
	intconfig "natours/internal/config"
	"natours/internal/domain"
	h "natours/internal/http/handlers"
	"natours/internal/http/middleware"
	"natours/internal/query"
	"natours/internal/repositories"
	"natours/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Deps are the process-wide collaborators the router wires into handlers.
type Deps struct {
	Env  intconfig.Env
	DB   *sqlx.DB
	Log  *zap.Logger
	Auth services.AuthService
}

func NewRouter(d Deps) (*gin.Engine, error) {
	env := d.Env
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	limits := query.Options{DefaultLimit: env.PageLimitDefault, MaxLimit: env.PageLimitMax}
	pipeline := func(s query.Schema, whitelist []string) (*query.Pipeline, error) {
		opts := limits
		opts.Whitelist = whitelist
		return query.NewPipeline(s, opts)
	}
	tourPipeline, err := pipeline(repositories.TourSchema, repositories.TourFilterWhitelist)
	if err != nil {
		return nil, err
	}
	userPipeline, err := pipeline(repositories.UserSchema, repositories.UserFilterWhitelist)
	if err != nil {
		return nil, err
	}
	reviewPipeline, err := pipeline(repositories.ReviewSchema, repositories.ReviewFilterWhitelist)
	if err != nil {
		return nil, err
	}

	authH := h.AuthHandler{
		Auth: d.Auth,
		Cookie: h.CookieConfig{
			Name:   env.JWTCookieName,
			MaxAge: env.JWTCookieExpiresIn,
			Secure: env.CookieSecure,
		},
	}
	userH := h.UserHandler{Users: repositories.UserRepository{DB: d.DB}, Pipeline: userPipeline}
	tourH := h.TourHandler{Tours: repositories.TourRepository{DB: d.DB}, Pipeline: tourPipeline}
	reviewH := h.ReviewHandler{Reviews: repositories.ReviewRepository{DB: d.DB}, Pipeline: reviewPipeline}
	sysH := h.SystemHandler{DB: d.DB}

	protect := middleware.Protect(d.Auth, env.JWTCookieName)
	staff := middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)
	admin := middleware.RestrictTo(domain.RoleAdmin)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.ErrorHandler(log),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(h.NotFound)
	r.GET("/", h.Root)

	sys := r.Group("/api")
	sys.GET("/health", h.Health)
	sys.GET("/db-check", sysH.DBCheck)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.POST("/signup", authH.Signup)
		users.POST("/login", authH.Login)
		users.GET("/logout", authH.Logout)

		me := users.Group("", protect)
		me.PATCH("/updateMyPassword", authH.UpdateMyPassword)
		me.GET("/me", userH.Me)
		me.PATCH("/updateMe", userH.UpdateMe)
		me.DELETE("/deleteMe", userH.DeleteMe)

		adminUsers := users.Group("", protect, admin)
		adminUsers.GET("", userH.List)
		adminUsers.GET("/:id", userH.Get)
		adminUsers.PATCH("/:id", userH.Update)
		adminUsers.DELETE("/:id", userH.Delete)

		tours := v1.Group("/tours")
		tours.GET("/top-5-cheap", h.AliasTopTours, tourH.List)
		tours.GET("/tour-stats", tourH.Stats)
		tours.GET("/monthly-plan/:year", protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide), tourH.MonthlyPlan)
		tours.GET("", protect, tourH.List)
		tours.GET("/:id", tourH.Get)
		tours.POST("", protect, staff, tourH.Create)
		tours.PATCH("/:id", protect, staff, tourH.Update)
		tours.DELETE("/:id", protect, staff, tourH.Delete)
		tours.GET("/:id/reviews", reviewH.List)
		tours.POST("/:id/reviews", protect, middleware.RestrictTo(domain.RoleUser), reviewH.Create)

		reviews := v1.Group("/reviews")
		reviews.GET("", reviewH.List)
		reviews.POST("", protect, middleware.RestrictTo(domain.RoleUser), reviewH.Create)
	}

	return r, nil
}
