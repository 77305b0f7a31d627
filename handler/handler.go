// Package handler adapts the timeline proxy to API Gateway proxy events.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"portfolio-feed/internal/domain"
	"portfolio-feed/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	adminTokenHeader  = "X-Admin-Token"

	timelinePrefix = "/api/twitter/"
	refreshPrefix  = "/admin/refresh/"
)

type TimelineUseCase interface {
	Timeline(ctx context.Context, handle string) (domain.Timeline, error)
}

type Handler struct {
	timeline    TimelineUseCase
	adminToken  string
	allowOrigin string
	logger      *slog.Logger
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler wires the proxy routes. An empty adminToken makes the refresh
// route reject every request.
func NewHandler(timeline TimelineUseCase, adminToken, allowOrigin string, logger *slog.Logger) (*Handler, error) {
	if timeline == nil {
		return nil, errors.New("handler: timeline use case must not be nil")
	}
	// API Gateway responses carry a single origin.
	if i := strings.IndexByte(allowOrigin, ','); i >= 0 {
		allowOrigin = allowOrigin[:i]
	}
	if allowOrigin = strings.TrimSpace(allowOrigin); allowOrigin == "" {
		allowOrigin = "*"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{timeline: timeline, adminToken: adminToken, allowOrigin: allowOrigin, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := header(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With(slog.String("correlation_id", correlationID))

	if req.HTTPMethod == http.MethodOptions {
		return h.respond(http.StatusNoContent, nil, correlationID), nil
	}

	switch {
	case req.HTTPMethod == http.MethodGet && strings.HasPrefix(req.Path, timelinePrefix):
		handle := pathHandle(req, timelinePrefix)
		tl, err := h.timeline.Timeline(ctx, handle)
		if err != nil {
			return h.fail(ctx, logger, err, correlationID), nil
		}
		return h.respond(http.StatusOK, tl, correlationID), nil

	case req.HTTPMethod == http.MethodPost && strings.HasPrefix(req.Path, refreshPrefix):
		if err := usecase.CheckAdminToken(h.adminToken, header(req.Headers, adminTokenHeader)); err != nil {
			return h.fail(ctx, logger, err, correlationID), nil
		}
		logger.InfoContext(ctx, "admin refresh acknowledged", slog.String("handle", pathHandle(req, refreshPrefix)))
		return h.respond(http.StatusOK, okResponse{OK: true}, correlationID), nil
	}

	return h.respond(http.StatusNotFound, errorResponse{Error: "not_found"}, correlationID), nil
}

func (h *Handler) fail(ctx context.Context, logger *slog.Logger, err error, correlationID string) events.APIGatewayProxyResponse {
	status, msg := usecase.HTTPError(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "request failed", slog.Int("status", status), slog.Any("err", err))
	return h.respond(status, errorResponse{Error: msg}, correlationID)
}

func (h *Handler) respond(status int, body any, correlationID string) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  h.allowOrigin,
		"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type,X-Admin-Token",
		correlationHeader:              correlationID,
	}
	resp := events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	if body == nil {
		return resp
	}
	b, err := json.Marshal(body)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		b = []byte(`{"error":"server_error"}`)
	}
	resp.Body = string(b)
	return resp
}

// pathHandle prefers the API Gateway path parameter and falls back to the
// last path segment.
func pathHandle(req events.APIGatewayProxyRequest, prefix string) string {
	if v := req.PathParameters["username"]; v != "" {
		return v
	}
	return strings.Trim(strings.TrimPrefix(req.Path, prefix), "/")
}

func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
