package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/commonfund/ledgerd/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Member   *apiHandler.MemberHandler
	Effort   *apiHandler.EffortHandler
	Treasury *apiHandler.TreasuryHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/members", handlers.Member.Register)

	// The two timeout transitions are deliberately public: once the window
	// has elapsed, anyone may force resolution.
	r.POST("/api/v1/efforts/{id}/auto-fail", handlers.Effort.AutoFail)
	r.POST("/api/v1/efforts/{id}/deadline-fail", handlers.Effort.DeadlineFail)

	// Member routes
	r.GET("/api/v1/members/me", authMiddleware(handlers.Member.Me))
	r.POST("/api/v1/members/subscription", authMiddleware(handlers.Member.PaySubscription))

	r.GET("/api/v1/efforts", authMiddleware(handlers.Effort.List))
	r.POST("/api/v1/efforts", authMiddleware(handlers.Effort.Submit))
	r.GET("/api/v1/efforts/{id}", authMiddleware(handlers.Effort.Get))
	r.GET("/api/v1/efforts/{id}/events", authMiddleware(handlers.Effort.Events))
	r.POST("/api/v1/efforts/{id}/duration", authMiddleware(handlers.Effort.RequestDuration))
	r.POST("/api/v1/efforts/{id}/duration/approve", authMiddleware(handlers.Effort.ApproveDuration))
	r.POST("/api/v1/efforts/{id}/commit", authMiddleware(handlers.Effort.Commit))
	r.POST("/api/v1/efforts/{id}/complete", authMiddleware(handlers.Effort.Complete))
	r.POST("/api/v1/efforts/{id}/approve", authMiddleware(handlers.Effort.Approve))

	r.GET("/api/v1/treasury", authMiddleware(handlers.Treasury.Balance))

	return r
}
