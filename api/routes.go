package api

import (
	"github.com/garnizeh/jobmatch/internal/config"
	"github.com/garnizeh/jobmatch/internal/matching"
	"github.com/garnizeh/jobmatch/pkg/repository"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, store repository.Store, tokens repository.TokenRepo, svc *matching.Service, health Pinger) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := NewSystemHandler(health)
	authHandler := NewAuthHandler(store, tokens, cfg.JWTSecret, cfg.TokenDuration)
	market := NewMarketHandler(svc)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret, tokens))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Profiles
	apiV1.HandleFunc("/profiles", market.CreateProfile).Methods("POST")
	apiV1.HandleFunc("/profiles", market.ListProfiles).Methods("GET")
	apiV1.HandleFunc("/profiles/{id:[0-9]+}/main", market.SetMainProfile).Methods("POST")

	// Offers
	apiV1.HandleFunc("/offers", market.CreateOffer).Methods("POST")
	apiV1.HandleFunc("/offers", market.ListOffers).Methods("GET")
	apiV1.HandleFunc("/offers/active", market.ListActiveOffers).Methods("GET")
	apiV1.HandleFunc("/offers/send", market.SendOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/archive", market.ArchiveOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/accept", market.AcceptOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/decline", market.DeclineOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/withdraw", market.WithdrawOffer).Methods("POST")

	// Matches
	apiV1.HandleFunc("/matches", market.ProposeMatch).Methods("POST")
	apiV1.HandleFunc("/matches", market.ListMatches).Methods("GET")
	apiV1.HandleFunc("/matches/confirm", market.ConfirmMatch).Methods("POST")

	return r
}
