// Package parleyrest provides the REST plumbing for the chat read APIs, with
// CORS support and common middleware, running under Lambda or locally.
package parleyrest

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	parleycli "github.com/parley-chat/parley-go-chat/parley-cli"
	"github.com/rs/zerolog"
	"github.com/savaki/apigateway"
)

func Middlewares(service parleycli.Service, routes chi.Router) chi.Router {
	routes.Use(
		withCORS(),
		withLogger(parleycli.Logger(service)),
		middleware.Recoverer,
	)
	return routes
}

func Webserver(service parleycli.Service, routes chi.Router) error {
	logger := parleycli.Logger(service)

	if parleycli.CommonOpts.Console {
		logger.Info().Int("port", parleycli.CommonOpts.Port).Msg("starting http server")
		addr := fmt.Sprintf(":%v", parleycli.CommonOpts.Port)
		return http.ListenAndServe(addr, routes)
	}

	lambda.Start(apigateway.Wrap(routes, parleycli.CommonOpts.Env))
	return nil
}

func withCORS() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
}

func withLogger(logger zerolog.Logger) func(handler http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.WithContext(req.Context())
			req = req.WithContext(ctx)
			handler.ServeHTTP(w, req)
		})
	}
}
