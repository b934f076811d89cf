package model

// APIResponse is the envelope for every successful API response.
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// APIError carries a stable machine-readable code and a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIErrorResponse is the envelope for every failed API response.
type APIErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// OK wraps data in a success envelope.
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Fail wraps an error code and message in a failure envelope.
func Fail(code, message string) APIErrorResponse {
	return APIErrorResponse{
		Success: false,
		Error:   APIError{Code: code, Message: message},
	}
}
