package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"ratesvc/internal/api/docs"
)

// SwaggerUIHandler serves Swagger UI pointed at /openapi.json.
func SwaggerUIHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL("/openapi.json"))
}

// OpenAPISpecHandler serves the registered API document.
func OpenAPISpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
	}
}
