package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when a request reaches the /graphql handler.
// Context carries the request context with its request ID.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted once the handler has written its response.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
