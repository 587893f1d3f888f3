// Package queue defines message payloads exchanged over the message broker.
package queue

// DreamInterpretedEvent is published after an interpretation request is
// admitted, generated and journaled. It carries everything the email
// consumer needs to deliver the notification without querying the
// primary database.
type DreamInterpretedEvent struct {
    DreamID        uint64 `json:"dream_id"`
    UserID         uint64 `json:"user_id"`
    Name           string `json:"name"`
    Email          string `json:"email"`
    Interpretation string `json:"interpretation"`
    Language       string `json:"language"`
    InterpretedAt  string `json:"interpreted_at"`
}
