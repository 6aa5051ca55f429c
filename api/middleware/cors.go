package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",                                  // local dev
	"https://loadbridge-8f41c9aa02d7.herokuapp.com",          // backend API
	"https://loadbridge.vercel.app",                          // Vercel domain
	"https://loadbridge-4kx2mp1qd-angelmondragon.vercel.app", // Vercel deployment URL
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-LB-Token", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-LB-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
