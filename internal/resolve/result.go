package resolve

// Path addresses a location in the response tree: field response names and
// list indices.
type Path []PathElement

type PathElement any

// Error is an execution or validation error with an optional response path.
type Error struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// Result is the outcome of executing one operation. Data is nil when
// validation failed before resolution began.
type Result struct {
	Data   map[string]any `json:"data"`
	Errors []Error        `json:"errors,omitempty"`
}

func errorResult(messages ...string) *Result {
	res := &Result{}
	for _, m := range messages {
		res.Errors = append(res.Errors, Error{Message: m})
	}
	return res
}
