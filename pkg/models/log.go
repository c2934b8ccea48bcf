package models

import "time"

// EmailLogRetention is how long audit records are kept before DynamoDB
// expires them via the TTL attribute.
const EmailLogRetention = 90 * 24 * time.Hour

// EmailLog is an append-only audit record for an outbound send.
type EmailLog struct {
	MessageID   string    `json:"message_id" dynamodbav:"MessageID"`
	TeamID      string    `json:"team_id" dynamodbav:"TeamID"`
	ChannelID   string    `json:"channel_id" dynamodbav:"ChannelID"`
	UserID      string    `json:"user_id" dynamodbav:"UserID"`
	FromAddress string    `json:"from_address" dynamodbav:"FromAddress"`
	ToAddresses []string  `json:"to_addresses" dynamodbav:"ToAddresses"`
	Subject     string    `json:"subject" dynamodbav:"Subject"`
	Status      string    `json:"status" dynamodbav:"Status"`
	SentAt      time.Time `json:"sent_at" dynamodbav:"SentAt"`
	TTL         int64     `json:"ttl" dynamodbav:"TTL"`
}
