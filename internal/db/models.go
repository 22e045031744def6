package db

import (
	"time"
)

// Gender is the binary gender stored on a profile.
type Gender int

const (
	GenderFemale Gender = 0
	GenderMale   Gender = 1
)

// Preference encodes who a profile wants to be shown.
type Preference int

const (
	PrefOpposite Preference = 0
	PrefSame     Preference = 1
	PrefBoth     Preference = 2
)

// User table. Credentials (Email, PasswordHash) must never be copied into
// candidate or public-profile outputs; the repository layer strips them.
//
// Completed is derived: true only once gender, sexual preference, biography,
// location and at least one image all exist. It is recomputed by
// UserRepository.RefreshCompleted on behalf of the profile-update collaborator
// and read-only everywhere else.
type User struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	Username         string `gorm:"uniqueIndex;size:64;not null"`
	Email            string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash     string `gorm:"size:255;not null"`
	Firstname        string `gorm:"size:64"`
	Surname          string `gorm:"size:64"`
	Verified         bool   `gorm:"default:false"`
	Age              int
	Gender           Gender     `gorm:"not null;default:0"`
	SexualPreference Preference `gorm:"not null;default:0"`
	Biography        string     `gorm:"size:1024"`
	Latitude         float64
	Longitude        float64
	Fame             int       `gorm:"default:0;index"`
	Completed        bool      `gorm:"default:false;index"`
	LastConnection   time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// UserTag is one tag on one profile; set semantics come from the composite PK.
// Tag values are constrained to the fixed vocabulary in the tags package.
type UserTag struct {
	UserID    uint64    `gorm:"primaryKey"`
	Tag       string    `gorm:"primaryKey;size:32"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// UserImage maps a profile to an opaque image identifier. The blob itself
// lives in the external image store; this core only hands the UUID around.
type UserImage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index;not null"`
	UUID      string    `gorm:"uniqueIndex;size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// View is the directional "has seen" edge. Composite PK makes repeat views
// of the same target a no-op.
type View struct {
	ViewerID  uint64    `gorm:"primaryKey"`
	ViewedID  uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Like is the directional like edge.
//
// Composite PK: (LikerID, LikedID) — one row per ordered pair.
//
// Indexes:
//   - idx_liked_created_liker(liked_id, created_at DESC)
//     Optimizes "who liked me" listings with cursor pagination.
type Like struct {
	LikerID   uint64    `gorm:"primaryKey"`
	LikedID   uint64    `gorm:"primaryKey;index:idx_liked_created_liker,priority:1"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_liked_created_liker,priority:2,sort:desc"`
}

// Block is the directional block edge. Either direction hides both users
// from each other and disables chat both ways.
type Block struct {
	BlockerID uint64    `gorm:"primaryKey"`
	BlockedID uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Connection is the derived mutual-like edge, stored normalized with
// UserAID < UserBID so one row covers both directions. Rows are only ever
// written inside the Like create/remove transactions in GraphRepository.
type Connection struct {
	UserAID   uint64    `gorm:"primaryKey"`
	UserBID   uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatMessage is one message between a connected pair, append-only.
type ChatMessage struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID    uint64    `gorm:"not null;index:idx_chat_pair,priority:1"`
	RecipientID uint64    `gorm:"not null;index:idx_chat_pair,priority:2"`
	SentAt      time.Time `gorm:"not null;index"`
	Body        string    `gorm:"type:text;not null"`
}
