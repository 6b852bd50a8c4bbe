package root

// Message is the fixed status message served at the root path.
const Message = "Backend is running securely!"

// Data models the root response payload.
type Data struct {
	Message string `json:"message" doc:"Service status message" example:"Backend is running securely!"`
}

// GetOutput is the response wrapper for the root endpoint.
type GetOutput struct {
	Body Data
}
