package response

import "encoding/json"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SuccessResponse wraps payload data in a success envelope
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse wraps an error message
func ErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

// MessageResponse wraps a human-readable outcome with no payload
func MessageResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

// JSON renders the envelope as a response body. Marshalling can only
// fail on an unencodable Data payload; that is reported as a plain
// error body instead of being propagated to every call site.
func (r APIResponse) JSON() string {
	bytes, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"Failed to encode response."}`
	}
	return string(bytes)
}

// Headers returns the standard headers for a JSON response. A fresh map
// is returned on every call so handlers can add per-response headers
// like Retry-After without leaking them into other responses.
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}
