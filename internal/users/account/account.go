// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package account handles account profile management, preferences, and security settings.

It provides functionalities for account holders to view and update their private identity data,
configure notification and locale settings, and manage their active device sessions.

# Architecture

  - Entities: Preferences, SessionInfo (DTO).
  - Domain: This package depends on the auth package for the Account entity.
  - Security: Provides session transparency and revocation mechanisms.
*/
package account

import (
	"context"
	"time"

	"github.com/anlevn/tatami/internal/users/auth"
)

// # Domain Entities

// Preferences represents the customizable notification and locale settings for an account.
type Preferences struct {
	AccountID          string    `json:"account_id"`
	Locale             string    `json:"locale"`      // BCP-47 language tag, e.g. "en", "nl", "ja"
	Timezone           string    `json:"timezone"`    // IANA zone name, e.g. "Europe/Amsterdam"
	DateFormat         string    `json:"date_format"` // 'dmy', 'mdy', 'ymd'
	EmailNotifications bool      `json:"email_notifications"`
	EnrolmentAlerts    bool      `json:"enrolment_alerts"` // Notify on school roster changes
	WeeklyDigest       bool      `json:"weekly_digest"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SessionInfo provides a safety-mapped view of an active account session.
// It omits sensitive token hashes for transport.
type SessionInfo struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"` // e.g. "Chrome on Windows"
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsCurrent  bool      `json:"is_current"` // True if this session belongs to the current request
}

// # Repository Contracts

// AccountRepository defines the persistence contract for login accounts.
type AccountRepository interface {
	/*
		FindByID retrieves an account record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	/*
		Update modifies the mutable profile fields of an existing account.

		Parameters:
		  - context: context.Context
		  - account: *Account (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, account *auth.Account) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}

// PreferencesRepository defines the persistence contract for account settings.
type PreferencesRepository interface {
	/*
		FindByAccountID retrieves preferences for a specific account.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - *Preferences: Hydrated settings
		  - error: apperr.NotFound if not present
	*/
	FindByAccountID(context context.Context, accountID string) (*Preferences, error)

	/*
		Upsert saves or updates preferences for an account using an idempotent strategy.

		Parameters:
		  - context: context.Context
		  - prefs: *Preferences

		Returns:
		  - error: Storage failure errors
	*/
	Upsert(context context.Context, prefs *Preferences) error
}

// SessionRepository defines the visibility and revocation contract for account sessions.
type SessionRepository interface {
	/*
		FindActiveByAccountID lists all valid, non-expired sessions for an account.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - []SessionInfo: List of active devices
		  - error: Retrieval errors
	*/
	FindActiveByAccountID(context context.Context, accountID string) ([]SessionInfo, error)

	/*
		Revoke marks a specific session as revoked.

		Parameters:
		  - context: context.Context
		  - accountID: string (Security constraint: owner validation)
		  - sessionID: string

		Returns:
		  - error: Revocation failures
	*/
	Revoke(context context.Context, accountID, sessionID string) error

	/*
		RevokeOthers revokes all active sessions except for a target session.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - currentSessionID: string (The whitelist target)

		Returns:
		  - error: Revocation failures
	*/
	RevokeOthers(context context.Context, accountID, currentSessionID string) error

	/*
		RevokeAll terminates every session for an account.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Revocation failures
	*/
	RevokeAll(context context.Context, accountID string) error
}
