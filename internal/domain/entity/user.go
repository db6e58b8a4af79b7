// Package entity defines the core domain entities for the contest reminder
// system: registered users with their notification addresses, the contest
// catalog, and the append-only notification log.
package entity

import "time"

// PushSubscription is a single browser push endpoint registered by a user.
// Uniqueness within a user is by Endpoint; the key material is opaque to
// everything except the browser push sender.
type PushSubscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Preferences gates notification delivery per mechanism. Browser push and
// native push share the Push flag; chat has its own.
type Preferences struct {
	Push bool
	Chat bool
}

// User represents a registered user together with every address the system
// may notify. Identity (ExternalID) is owned by the external auth provider;
// this system only reads it.
type User struct {
	ID                int64
	ExternalID        string
	Email             string
	ChatID            string // chat-bot identity, empty if not linked
	PushSubscriptions []PushSubscription
	DeviceTokens      []string // native push tokens, opaque
	Preferences       Preferences
	CreatedAt         time.Time
}

// PushEligible reports whether the user should receive push notifications:
// the preference must be on AND at least one push address must exist.
// An empty address set never produces a send, even if the flag is
// inconsistently true.
func (u *User) PushEligible() bool {
	return u.Preferences.Push && (len(u.PushSubscriptions) > 0 || len(u.DeviceTokens) > 0)
}

// ChatEligible reports whether the user should receive chat notifications.
func (u *User) ChatEligible() bool {
	return u.Preferences.Chat && u.ChatID != ""
}

// Notifiable reports whether any channel would deliver to this user.
// Users for which this is false are skipped by both workflows.
func (u *User) Notifiable() bool {
	return u.PushEligible() || u.ChatEligible()
}
