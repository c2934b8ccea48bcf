package models

import "time"

// FailedEmailRecord captures an inbound email whose Slack delivery was
// abandoned, either after retry exhaustion or on a terminal error.
type FailedEmailRecord struct {
	Email        *Email    `json:"email"`
	Channel      string    `json:"channel"`
	ErrorMessage string    `json:"error"`
	ErrorCode    string    `json:"error_code,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Attempts     int       `json:"attempts"`
}
