package model

import "time"

// Dream is one row of the usage journal: a submitted narrative together
// with the interpretation that was generated for it.  Rows are append
// only; nothing in the application mutates or deletes them.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – requesting user.
//  Name           – display name supplied with the request.
//  Email          – address the interpretation was mailed to.
//  Message        – the dream narrative as submitted.
//  Interpretation – generated interpretation text.
//  Language       – "es" or "en".
//  CreatedAt      – timestamp of the admitted request.
type Dream struct {
    ID             uint64    // dreams.id
    UserID         uint64    // dreams.user_id
    Name           string    // dreams.name
    Email          string    // dreams.email
    Message        string    // dreams.message
    Interpretation string    // dreams.interpretation
    Language       string    // dreams.language
    CreatedAt      time.Time // dreams.created_at
}
