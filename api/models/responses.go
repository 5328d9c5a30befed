package models

// APIResponse is the envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{Success: true, Data: data, Message: message}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{Success: false, Error: &APIError{Code: code, Message: message, Details: details}}
}
