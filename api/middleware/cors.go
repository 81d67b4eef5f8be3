package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://velocimech.co.nz",
	"https://www.velocimech.co.nz",
	"https://velocimech.vercel.app", // preview deployments
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Device-Fingerprint"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
