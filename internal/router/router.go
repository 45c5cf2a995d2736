package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/flight-ticket-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/flight-ticket-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Routes that do not require an existing session: register, login and
	// the two refresh flavors.  Each handler generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body or a bearer token in the
	// Authorization header; it does not go through the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Same handler reachable without the /auth prefix for convenience.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated flight browsing
// endpoints.  The response cache applies only here: these routes
// serve the same body to every caller, so replaying a cached response
// is safe.  Authenticated routes are never cached; a cached reply
// there would bypass the JWT check and leak one user's data to
// another.
func RegisterPublic(e *echo.Echo, f *handler.FlightHandler, cache echo.MiddlewareFunc) {
	// Search and list flights by route and date.
	e.GET("/v1/flights", f.Search, cache)
	// Flight details including per-class availability counters.
	e.GET("/v1/flights/:id", f.Get, cache)
	// Free seat numbers for one class of a flight.
	e.GET("/v1/flights/:id/free-seats", f.FreeSeats, cache)
	// Priced facilities offered on a flight.
	e.GET("/v1/flights/:id/facilities", f.Facilities, cache)
}

// RegisterCustomer registers the authenticated customer surface:
// basket management, orders, checkout and boarding passes.
func RegisterCustomer(e *echo.Echo, b *handler.BasketHandler, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))

	// Basket: book a ticket, view (drains notices), remove a ticket.
	g.POST("/basket/tickets", b.AddTicket)
	g.GET("/basket", b.View)
	g.DELETE("/basket/tickets/:id", b.RemoveTicket)

	// Orders: create from basket, customize tickets, checkout, inspect.
	g.POST("/orders", o.Create)
	g.GET("/orders", o.List)
	g.GET("/orders/:id", o.Get)
	g.PATCH("/orders/:id/tickets/:ticketID", o.CustomizeTicket)
	g.POST("/orders/:id/checkout", o.Checkout)
	g.GET("/orders/:id/boarding-passes", o.BoardingPasses)
}

// RegisterAdmin registers fleet and schedule management, restricted
// to the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/airplanes", a.CreateAirplane)
	g.GET("/airplanes", a.ListAirplanes)
	g.DELETE("/airplanes/:id", a.DeleteAirplane)
	g.POST("/flights", a.CreateFlight)
	g.POST("/flights/:id/facilities", a.AttachFacility)
}

// RegisterPayment registers the gateway callback.  The route is
// unauthenticated; the handler validates the HMAC signature instead.
func RegisterPayment(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/callback", p.Callback)
}
