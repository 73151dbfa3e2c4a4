package chessdto

// ErrorResponse is the body of every failed chess call.
type ErrorResponse struct {
	Error string `json:"error"`
}
