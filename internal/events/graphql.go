package events

import "time"

// GraphQLStart is emitted before an operation enters the engine. Batched
// requests emit one pair of events per operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after the engine returns, whether or not the
// operation produced data.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
