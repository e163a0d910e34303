package gee

// ErrorResponse is the JSON body written by AbortWithError.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func NewErrorResponse(c *Context, code int, detail string) ErrorResponse {
	return ErrorResponse{
		Code:      code,
		Detail:    detail,
		RequestID: c.Req.Header.Get("X-Request-ID"),
	}
}
