// Package root serves the service status message at "/".
package root

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/devsecops-backend/internal/platform/logging"
)

// Register wires the root route into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service status message",
		Description: "Returns a fixed message confirming the backend is up.",
		Tags:        []string{"Status"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogInfo(ctx, "root get", zap.String("path", "/"))
	return &GetOutput{Body: Data{Message: Message}}, nil
}
