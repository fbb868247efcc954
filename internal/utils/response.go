package utils

// APIResponse is the envelope every endpoint returns: a success flag, a
// human-readable message and the payload (an order, a list of orders, or a
// status-update receipt).
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, errDetail string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   errDetail,
	}
}
