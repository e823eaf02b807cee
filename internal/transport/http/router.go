package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/metrics"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Deps struct {
	Handler   *Handler
	Auth      httpmw.Authenticator
	SSE       http.HandlerFunc
	WS        http.HandlerFunc
	Store     Pinger
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Timeout   time.Duration
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httputil.MiddlewareTracing)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           d.CORS.MaxAge,
	}))

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteProblem(w, r, httputil.Problem{Type: problemBase + "route-not-found", Status: http.StatusNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteProblem(w, r, httputil.Problem{Type: problemBase + "method-not-allowed", Status: http.StatusMethodNotAllowed})
	})

	// probes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Store.Ping(ctx); err != nil {
				httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.OK(w, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", metrics.Handler())

	h := d.Handler
	authMW := httpmw.Auth(d.Auth, writeError)

	r.Route("/api", func(api chi.Router) {
		// стримы живут дольше таймаута запроса и не сжимаются
		api.Group(func(st chi.Router) {
			st.Use(authMW)
			if d.SSE != nil {
				st.Get("/sse/listen", d.SSE)
			}
			if d.WS != nil {
				st.Get("/ws/listen", d.WS)
			}
		})

		api.Group(func(rest chi.Router) {
			rest.Use(middlewareChi.Timeout(timeout))
			rest.Use(middlewareChi.Compress(5, "application/json", "application/problem+json"))

			rest.Route("/auth", func(ar chi.Router) {
				if d.RateLimit.RPS > 0 {
					limiter := httpmw.NewRateLimiter(d.RateLimit.RPS, d.RateLimit.Burst, func(w http.ResponseWriter, r *http.Request) {
						writeError(w, r, errTooMany)
					})
					ar.Use(limiter.Middleware)
				}

				ar.Post("/signup", h.Signup)
				ar.Post("/login", h.Login)
				ar.Post("/refresh", h.Refresh)
				ar.Post("/logout", h.Logout)
				ar.Get("/invitations/{token}", h.GetImInvitation)
				ar.With(authMW).Post("/invitations", h.CreateImInvitation)
			})

			rest.Group(func(pr chi.Router) {
				pr.Use(authMW)

				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.SearchUsers)
					ur.Get("/me", h.Me)
					ur.Patch("/me", h.UpdateMe)
					ur.Get("/me/sessions", h.MySessions)
					ur.Get("/me/invitations", h.ReceivedInvitations)
					ur.Get("/{id}", h.GetUser)
				})

				pr.Route("/channels", func(cr chi.Router) {
					cr.Post("/", h.CreateChannel)
					cr.Get("/", h.ListMyChannels)
					cr.Get("/public", h.SearchPublicChannels)

					cr.Route("/{id}", func(ch chi.Router) {
						ch.Get("/", h.GetChannel)
						ch.Patch("/", h.UpdateChannel)
						ch.Delete("/", h.DeleteChannel)
						ch.Post("/join", h.JoinChannel)
						ch.Post("/leave", h.LeaveChannel)

						ch.Get("/members", h.ListMembers)
						ch.Put("/members/{userId}", h.UpdateMemberRole)
						ch.Delete("/members/{userId}", h.RemoveMember)

						ch.Get("/messages", h.GetMessages)
						ch.Post("/messages", h.CreateMessage)
						ch.Get("/messages/{messageId}", h.GetMessage)
						ch.Patch("/messages/{messageId}", h.EditMessage)
						ch.Delete("/messages/{messageId}", h.DeleteMessage)

						ch.Get("/invitations", h.ChannelInvitations)
						ch.Post("/invitations", h.CreateInvitation)
						ch.Delete("/invitations/{invitationId}", h.RevokeInvitation)
						ch.Post("/invitations/{invitationId}/accept", h.AcceptInvitation)
						ch.Post("/invitations/{invitationId}/reject", h.RejectInvitation)
					})
				})
			})
		})
	})

	return r
}
