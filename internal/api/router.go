package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/middleware"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/service"
)

// HealthChecker is satisfied by the postgres and redis connections. With the
// file or memory store there is nothing to ping and it is left nil.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type RouterOptions struct {
	Health HealthChecker
	// AllowOrigins lists the browser origins CORS lets through. "*" allows
	// any; empty disables CORS handling.
	AllowOrigins []string
	// EnableClear registers DELETE /v1/clear, which wipes all data.
	EnableClear bool
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *service.Services, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(logger), middleware.Recovery(logger))
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	}

	// Health check and auth are PUBLIC. Everything else needs a token.
	r.GET("/v1/health", healthHandler(opts.Health))

	if opts.EnableClear {
		r.DELETE("/v1/clear", NewAdminHandler(svc.Admin, logger).Clear)
	}

	authH := NewAuthHandler(svc.Auth, logger)
	public := r.Group("/v1/auth")
	public.POST("/register", authH.Register)
	public.POST("/login", authH.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(svc.Auth))

	v1.POST("/auth/logout", authH.Logout)

	users := NewUserHandler(svc.Users, logger)
	v1.GET("/users", users.List)
	v1.GET("/users/me", users.GetMe)
	v1.GET("/users/me/stats", users.Stats)
	v1.GET("/users/stats", users.WorkspaceStats)
	v1.GET("/users/:id", users.Get)
	v1.PUT("/users/me/name", users.SetName)
	v1.PUT("/users/me/email", users.SetEmail)
	v1.PUT("/users/me/handle", users.SetHandle)

	channels := NewChannelHandler(svc.Channels, logger)
	members := NewMembershipHandler(svc.Channels, logger)
	v1.POST("/channels", channels.Create)
	v1.GET("/channels", channels.List)
	v1.GET("/channels/all", channels.ListAll)
	v1.GET("/channels/:id", channels.Details)
	v1.POST("/channels/:id/join", members.Join)
	v1.POST("/channels/:id/leave", members.Leave)
	v1.POST("/channels/:id/invite", members.Invite)
	v1.POST("/channels/:id/owners", members.AddOwner)
	v1.DELETE("/channels/:id/owners", members.RemoveOwner)

	dms := NewDmHandler(svc.Dms, logger)
	v1.POST("/dms", dms.Create)
	v1.GET("/dms", dms.List)
	v1.GET("/dms/:id", dms.Details)
	v1.POST("/dms/:id/leave", dms.Leave)
	v1.DELETE("/dms/:id", dms.Remove)

	msgs := NewMessageHandler(svc.Messages, logger)
	v1.POST("/channels/:id/messages", msgs.Send(models.ChannelRef))
	v1.GET("/channels/:id/messages", msgs.Page(models.ChannelRef))
	v1.POST("/channels/:id/messages/later", msgs.SendLater(models.ChannelRef))
	v1.POST("/dms/:id/messages", msgs.Send(models.DmRef))
	v1.GET("/dms/:id/messages", msgs.Page(models.DmRef))
	v1.POST("/dms/:id/messages/later", msgs.SendLater(models.DmRef))
	v1.PUT("/messages/:id", msgs.Edit)
	v1.DELETE("/messages/:id", msgs.Remove)
	v1.POST("/messages/:id/react", msgs.React)
	v1.POST("/messages/:id/unreact", msgs.Unreact)
	v1.POST("/messages/:id/pin", msgs.Pin)
	v1.POST("/messages/:id/unpin", msgs.Unpin)

	standups := NewStandupHandler(svc.Standups, logger)
	v1.POST("/channels/:id/standup", standups.Start)
	v1.GET("/channels/:id/standup", standups.Active)
	v1.POST("/channels/:id/standup/messages", standups.Send)

	notifications := NewNotificationHandler(svc.Notifications, logger)
	v1.GET("/notifications", notifications.List)

	return r
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Tokens travel in the Authorization header, not cookies, so credentials
// stay off and "*" is safe to honour.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
