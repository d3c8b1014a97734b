package dto

// Response statuses shared by every endpoint.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// FileResponse is the uniform envelope returned by the document endpoints.
// Every failure path returns the same shape as success, differing only in
// status, issues, next_steps and data presence.
type FileResponse struct {
	Status    string   `json:"status"`
	Data      any      `json:"data,omitempty"`
	Issues    []string `json:"issues,omitempty"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// FailureResponse builds a failure envelope.
func FailureResponse(issues, nextSteps []string) *FileResponse {
	return &FileResponse{
		Status:    StatusFailure,
		Issues:    issues,
		NextSteps: nextSteps,
	}
}

// ErrorResponse represents a transport-level error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
