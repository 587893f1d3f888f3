// Package repository defines the data access layer and the sentinel
// errors shared across its repositories. The sentinels let handlers
// distinguish failure classes without string matching: ErrEmailExists
// maps to 409, ErrUserNotFound and ErrNoSubscription to 404. Quota
// exhaustion is not an error at all; DreamRepo.Record reports it as a
// boolean so handlers can return a normal rejection response.
package repository

import "errors"

// ErrEmailExists is returned when registration hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when an email or id resolves to no user row.
var ErrUserNotFound = errors.New("user not found")

// ErrNoSubscription is returned when a user has no subscription row.
var ErrNoSubscription = errors.New("no active subscription")
