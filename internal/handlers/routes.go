package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/api/v1/shorten",
		Summary:     "Create short URL",
		Description: "Creates a short code for a long URL, or returns the existing one when the URL is already mapped.",
		Tags:        []string{"URLs"},
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "user-metrics",
		Method:      http.MethodGet,
		Path:        "/api/v1/metrics/users",
		Summary:     "Mappings per user",
		Tags:        []string{"Metrics"},
	}, urlHandler.UserMetrics)

	huma.Register(api, huma.Operation{
		OperationID: "inspect-code",
		Method:      http.MethodGet,
		Path:        "/api/v1/codes/{code}",
		Summary:     "Decode a generated short code",
		Tags:        []string{"URLs"},
	}, urlHandler.Inspect)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the long URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.Redirect)
}
