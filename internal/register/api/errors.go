package api

import "fmt"

// ResponseError is returned for answers with an HTTP status of 400 and above.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// ServerMessage is the "message" field of the error body, empty when the server sent none.
func (e *ResponseError) ServerMessage() string {
	return e.Message
}
