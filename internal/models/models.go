package models

import "time"

// Shard is one of the five collectible records served by the gated shard
// endpoints. Static content, defined once at startup.
type Shard struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Fragment    string `json:"fragment"`
	Data        string `json:"data"`
	Description string `json:"description"`
}

// Receipt is the persisted record of a settled payment. PaymentID is the
// hex sha256 digest of the proof as presented on the wire, which doubles as
// the idempotency key.
type Receipt struct {
	PaymentID string
	Route     string
	Payer     string
	Amount    string
	TxHash    string
	CreatedAt time.Time
}

// SettledEvent is published after a payment settles successfully.
type SettledEvent struct {
	PaymentID string    `json:"payment_id"`
	Route     string    `json:"route"`
	Payer     string    `json:"payer"`
	Amount    string    `json:"amount"`
	TxHash    string    `json:"tx_hash"`
	Timestamp time.Time `json:"timestamp"`
}
