package types

// ApiError carries the message of a failed request.
type ApiError struct {
	Message string `json:"message"`
}

// ApiResponse is the envelope every endpoint responds with.
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ApiError   `json:"error,omitempty"`
}

// Ok wraps data in a success envelope.
func Ok(data interface{}) ApiResponse {
	return ApiResponse{Success: true, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(message string) ApiResponse {
	return ApiResponse{Success: false, Error: &ApiError{Message: message}}
}
