package anilist

import "fmt"

// Error is the normalized failure of one upstream call. Message is what the
// REST layer shows to clients: the first GraphQL error message, or the
// query's fallback text.
type Error struct {
	Query   string
	Message string
	Status  int   // HTTP status from upstream, 0 when the request never completed
	Err     error // underlying transport/decode error, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail is a log-friendly description including the cause.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Query, e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Query, e.Message, e.Status)
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
