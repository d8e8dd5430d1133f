package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// CheckResultData represents the outcome of a single compliance check
type CheckResultData struct {
	CheckName  string                 `json:"check_name" example:"brightness"`
	Passed     bool                   `json:"passed" example:"true"`
	Confidence float64                `json:"confidence" example:"0.95"`
	Message    string                 `json:"message" example:"Brightness is within the acceptable range"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ValidatePhotoResponse represents the verdict for an uploaded photo
type ValidatePhotoResponse struct {
	PhotoID    string            `json:"photo_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status     string            `json:"status" example:"approved"`
	Passed     bool              `json:"passed" example:"true"`
	Confidence float64           `json:"confidence" example:"0.92"`
	Checks     int               `json:"checks" example:"9"`
	Failed     int               `json:"failed" example:"0"`
	Feedback   []string          `json:"feedback,omitempty"`
	Results    []CheckResultData `json:"results"`
}

// PhotoResponse represents a stored validation record
type PhotoResponse struct {
	ID        string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status    string            `json:"status" example:"rejected"`
	Results   []CheckResultData `json:"results"`
	FilePath  string            `json:"file_path,omitempty" example:"data/photos/550e8400.jpg"`
	Timestamp string            `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	CreatedAt string            `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// PaginationData contains pagination information
type PaginationData struct {
	Total  int64 `json:"total" example:"30"`
	Limit  int   `json:"limit" example:"20"`
	Offset int   `json:"offset" example:"0"`
}

// PhotoListResponse wraps a page of validation records
type PhotoListResponse struct {
	Data       []PhotoResponse `json:"data"`
	Pagination PaginationData  `json:"pagination"`
}

// CheckInfoResponse describes one configured compliance check
type CheckInfoResponse struct {
	Name        string  `json:"name" example:"brightness"`
	Description string  `json:"description" example:"Checks whether the photo is neither too dark nor too bright"`
	Threshold   float64 `json:"threshold" example:"0.5"`
}

// WebhookData represents a configured webhook
type WebhookData struct {
	ID              string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name            string   `json:"name" example:"CI endpoint"`
	URL             string   `json:"url" example:"https://example.com/hooks"`
	Events          []string `json:"events" example:"photo.validated"`
	Enabled         bool     `json:"enabled" example:"true"`
	LastTriggeredAt string   `json:"last_triggered_at,omitempty" example:"2024-01-01T00:00:00Z"`
	CreatedAt       string   `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt       string   `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// WebhookListData wraps the webhook list
type WebhookListData struct {
	Webhooks []WebhookData `json:"webhooks"`
}

// CreateWebhookData is the request body for webhook creation
type CreateWebhookData struct {
	Name    string   `json:"name" example:"CI endpoint"`
	URL     string   `json:"url" example:"https://example.com/hooks"`
	Events  []string `json:"events" example:"photo.validated"`
	Enabled bool     `json:"enabled" example:"true"`
}

// CreatedWebhookData wraps the created webhook plus its one-time secret
type CreatedWebhookData struct {
	Webhook WebhookData `json:"webhook"`
	Secret  string      `json:"secret" example:"4f6a..."`
}

// CheckFailureData is the failure count for one compliance check
type CheckFailureData struct {
	CheckName string `json:"check_name" example:"sharpness"`
	Failures  int64  `json:"failures" example:"4"`
}

// StatsOverviewData summarizes every validation run on record
type StatsOverviewData struct {
	Total         int64              `json:"total" example:"120"`
	Approved      int64              `json:"approved" example:"85"`
	Rejected      int64              `json:"rejected" example:"34"`
	Pending       int64              `json:"pending" example:"1"`
	AvgConfidence float64            `json:"avg_confidence" example:"0.82"`
	CheckFailures []CheckFailureData `json:"check_failures"`
}

// DailyCountData is one day's worth of validation runs
type DailyCountData struct {
	Day      string `json:"day" example:"2024-01-01T00:00:00Z"`
	Total    int64  `json:"total" example:"12"`
	Approved int64  `json:"approved" example:"9"`
	Rejected int64  `json:"rejected" example:"3"`
}

// DailyStatsData wraps a per-day series
type DailyStatsData struct {
	Days int              `json:"days" example:"7"`
	Data []DailyCountData `json:"data"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Passfoto Validation API",
		Version:     "v1.0.0",
		Description: "Passport photo compliance validation: runs a configurable set of ICAO-style checks on uploaded photos and reports a verdict with per-check feedback",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/photos/validate - Validate Photo
		endpoint.New(
			endpoint.POST,
			"/photos/validate",
			endpoint.WithTags("Photos"),
			endpoint.WithSummary("Validate a passport photo"),
			endpoint.WithDescription("Runs the full compliance check set on the uploaded image and persists the result. Pass a session_id form field to stream progress over the websocket endpoint."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ValidatePhotoResponse{}, "201", "Validation completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Photo has no image data or the image is empty"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/photos - List Photos
		endpoint.New(
			endpoint.GET,
			"/photos",
			endpoint.WithTags("Photos"),
			endpoint.WithSummary("List validation records"),
			endpoint.WithDescription("Pages through stored validation records, newest first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Page size (1-100, default: 20)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Page offset (default: 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PhotoListResponse{}, "200", "Records retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/photos/:id - Get Photo
		endpoint.New(
			endpoint.GET,
			"/photos/{id}",
			endpoint.WithTags("Photos"),
			endpoint.WithSummary("Get a validation record"),
			endpoint.WithDescription("Retrieves the stored validation record for the given photo ID"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Photo identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PhotoResponse{}, "200", "Record retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid photo ID"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "PHOTO_NOT_FOUND", Message: "Photo not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// DELETE /v1/photos/:id - Delete Photo
		endpoint.New(
			endpoint.DELETE,
			"/photos/{id}",
			endpoint.WithTags("Photos"),
			endpoint.WithSummary("Delete a validation record"),
			endpoint.WithDescription("Deletes the validation record and the stored image"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Photo identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Record deleted successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "PHOTO_NOT_FOUND", Message: "Photo not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/checks - List Checks
		endpoint.New(
			endpoint.GET,
			"/checks",
			endpoint.WithTags("Checks"),
			endpoint.WithSummary("List the configured compliance checks"),
			endpoint.WithDescription("Returns the check set every photo runs through, in execution order"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]CheckInfoResponse{}, "200", "Checks retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/stats - Stats Overview
		endpoint.New(
			endpoint.GET,
			"/stats",
			endpoint.WithTags("Stats"),
			endpoint.WithSummary("Aggregate validation figures"),
			endpoint.WithDescription("Totals by status, mean check confidence and per-check failure counts across all stored runs"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatsOverviewData{}, "200", "Figures retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/stats/daily - Daily Stats
		endpoint.New(
			endpoint.GET,
			"/stats/daily",
			endpoint.WithTags("Stats"),
			endpoint.WithSummary("Per-day validation counts"),
			endpoint.WithDescription("Run counts per day over a recent window, oldest first"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("days", parameter.Query, parameter.WithDescription("Window size in days (1-90, default: 7)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DailyStatsData{}, "200", "Series retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/webhooks - List Webhooks
		endpoint.New(
			endpoint.GET,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("List configured webhooks"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookListData{}, "200", "Webhooks retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/webhooks - Create Webhook
		endpoint.New(
			endpoint.POST,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Create a webhook"),
			endpoint.WithDescription("Registers a delivery endpoint for validation events. The signing secret is returned once, at creation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CreateWebhookData{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CreatedWebhookData{}, "201", "Webhook created successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request body"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// DELETE /v1/webhooks/:id - Delete Webhook
		endpoint.New(
			endpoint.DELETE,
			"/webhooks/{id}",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Delete a webhook"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Webhook identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Webhook deleted successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "WEBHOOK_NOT_FOUND", Message: "Webhook not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
