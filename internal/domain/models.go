// Package domain defines the persistence models for the resolver admin
// backend: operator accounts and their sessions, the two append-only DNS
// event logs, the domain blocklist, and the single-row configuration
// document. These types are mapped with GORM and form the core data layer.
//
// All timestamps are stored as milliseconds since the Unix epoch (int64),
// matching the wire contract of the admin API. Durations are milliseconds
// as well; there is exactly one duration unit in this schema.
package domain

import "time"

// NowMS returns the current time as milliseconds since the Unix epoch,
// the timestamp representation used across all models and wire payloads.
func NowMS() int64 { return time.Now().UnixMilli() }

// User is an operator account. Accounts are provisioned out of band
// (bootstrap seeding or a future management tool); the API only ever
// reads them during login.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Name: unique login name.
//   - PasswordHash: bcrypt hash of the password.
//   - Permissions: reserved permission bitmask, defaults to 0.
//   - CreatedAt: creation time in ms.
type User struct {
	ID           string `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string `json:"name"          gorm:"type:varchar(64);not null;uniqueIndex:ux_users_name"`
	PasswordHash string `json:"-"             gorm:"type:varchar(128);not null"`
	Permissions  int64  `json:"permissions"   gorm:"not null;default:0"`
	CreatedAt    int64  `json:"created_at"    gorm:"not null"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session is a server-side record backing an authenticated cookie.
// Sessions are created on login with a fixed lifetime and removed on
// logout, on expiry, or when the owning user is deleted (cascade).
type Session struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string `json:"user_id"    gorm:"type:char(36);not null;index"`
	CreatedAt int64  `json:"created_at" gorm:"not null"`
	ExpiresAt int64  `json:"expires_at" gorm:"not null"`

	// User is the session owner. Sessions are cascade-deleted with the user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "user_sessions" }

// Expired reports whether the session has passed its expiry at nowMS.
func (s Session) Expired(nowMS int64) bool { return nowMS >= s.ExpiresAt }

// QueryEvent is one resolved DNS query, appended by the resolver once per
// query and never mutated or deleted through this API. SourceID is a
// monotonic insertion sequence used as the pagination tie-break for equal
// timestamps.
type QueryEvent struct {
	SourceID  int64     `json:"source_id"  gorm:"column:source_id;primaryKey;autoIncrement"`
	TS        int64     `json:"ts"         gorm:"column:ts_ms;not null;index:idx_query_ts"`
	Transport Transport `json:"transport"  gorm:"not null"`
	Client    string    `json:"client"     gorm:"type:varchar(64)"`
	QName     string    `json:"qname"      gorm:"column:qname;type:varchar(255);not null"`
	QType     int       `json:"qtype"      gorm:"column:qtype;not null"`
	RCode     int       `json:"rcode"      gorm:"column:rcode;not null"`
	Blocked   bool      `json:"blocked"    gorm:"not null"`
	CacheHit  bool      `json:"cache_hit"  gorm:"not null"`
	DurMS     int64     `json:"duration"   gorm:"column:dur_ms;not null"`
}

// TableName returns the database table name for QueryEvent.
func (QueryEvent) TableName() string { return "dns_query_log" }

// ErrorEvent is one failed resolution attempt. QName and QType are
// optional: a request that failed before parsing has neither.
type ErrorEvent struct {
	SourceID  int64     `json:"source_id"  gorm:"column:source_id;primaryKey;autoIncrement"`
	TS        int64     `json:"ts"         gorm:"column:ts_ms;not null;index:idx_error_ts"`
	Transport Transport `json:"transport"  gorm:"not null"`
	Client    string    `json:"client"     gorm:"type:varchar(64)"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	ErrorType int       `json:"error_type" gorm:"column:type;not null"`
	DurMS     int64     `json:"duration"   gorm:"column:dur_ms;not null"`
	QName     *string   `json:"qname,omitempty" gorm:"column:qname;type:varchar(255)"`
	QType     *int      `json:"qtype,omitempty" gorm:"column:qtype"`
}

// TableName returns the database table name for ErrorEvent.
func (ErrorEvent) TableName() string { return "dns_error_log" }

// BlocklistEntry is a domain for which resolution is refused. Domain is
// the normalized (lowercase ASCII, no trailing dot) form and acts as the
// primary key.
type BlocklistEntry struct {
	Domain    string `json:"domain"     gorm:"type:varchar(255);primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"not null"`
}

// TableName returns the database table name for BlocklistEntry.
func (BlocklistEntry) TableName() string { return "blocklist" }

// ConfigDocument is the single versioned configuration blob. Exactly one
// row exists (ID is fixed to 1 and enforced by a CHECK constraint);
// updates go through a compare-and-swap on Version.
type ConfigDocument struct {
	ID        int    `json:"-"          gorm:"primaryKey;check:id = 1"`
	Version   int64  `json:"version"    gorm:"not null"`
	UpdatedAt int64  `json:"updated_at" gorm:"not null"`
	Data      string `json:"data"       gorm:"type:text;not null"`
}

// TableName returns the database table name for ConfigDocument.
func (ConfigDocument) TableName() string { return "config" }

// LiveCounters is the volatile, process-lifetime aggregate over all
// recorded events. It is never persisted; LiveSince is the process start
// in ms and is the baseline for uptime display.
type LiveCounters struct {
	Total         uint64 `json:"total"`
	Blocked       uint64 `json:"blocked"`
	Cached        uint64 `json:"cached"`
	Errors        uint64 `json:"errors"`
	SumDurationMS uint64 `json:"sum_duration"`
	LiveSince     int64  `json:"live_since"`
}
