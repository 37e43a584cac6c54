package models

import (
	"time"
)

// User is the identity record. An account can log in only while IsActive
// is true and EmailVerifiedAt is set.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	Username     string `gorm:"size:50;uniqueIndex;not null"            json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null"           json:"email"`
	PasswordHash string `gorm:"size:255;not null"                       json:"-"`

	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50;not null" json:"last_name"`
	Age       int    `gorm:"not null"         json:"age"`
	Gender    string `gorm:"size:10"          json:"gender,omitempty"`

	ActivityLevel          string `gorm:"size:20;default:sedentary" json:"activity_level"`
	MedicalConditions      string `gorm:"type:text"                 json:"medical_conditions,omitempty"`
	WorkoutExperienceYears int    `gorm:"default:0"                 json:"workout_experience_years"`
	TimeConstraintsMinutes int    `gorm:"default:20"                json:"time_constraints_minutes"`
	PhoneNumber            string `gorm:"size:20"                   json:"phone_number,omitempty"`
	ProfilePicture         string `gorm:"size:255"                  json:"profile_picture,omitempty"`

	OnboardingCompleted   bool       `gorm:"default:false" json:"onboarding_completed"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at,omitempty"`

	IsActive        bool       `gorm:"default:true" json:"is_active"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`

	// Outstanding verification challenge. All four fields are cleared
	// together when the account transitions to verified.
	EmailVerificationToken         string     `gorm:"size:255" json:"-"`
	EmailVerificationCode          string     `gorm:"size:6"   json:"-"`
	EmailVerificationCodeExpiresAt *time.Time `json:"-"`
	EmailVerificationSentAt        *time.Time `json:"-"`

	LastLogin      *time.Time `json:"last_login,omitempty"`
	ActiveDays     int        `gorm:"default:0" json:"active_days"`
	LastActiveDate string     `gorm:"size:10"   json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is a named permission bundle (admin, premium, user, mentor, member).
type Role struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:role_id"       json:"role_id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null;column:role_name" json:"role_name"`
	Description string    `gorm:"size:255;column:role_description"              json:"role_description,omitempty"`
	IsActive    bool      `gorm:"default:true"                                  json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a fine-grained capability atom linked to roles.
type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:permission_id"       json:"permission_id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null;column:permission_name" json:"permission_name"`
	Description string    `gorm:"size:255;column:permission_description"              json:"permission_description,omitempty"`
	IsActive    bool      `gorm:"default:true"                                        json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRole is the Account-Role edge. A given (user, role) pair exists at
// most once; AssignedBy records the granting actor.
type UserRole struct {
	ID         uint      `gorm:"primaryKey;autoIncrement;column:user_role_id" json:"user_role_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_role"           json:"user_id"`
	RoleID     uint      `gorm:"not null;uniqueIndex:idx_user_role"           json:"role_id"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RolePermission is the Role-Permission edge, same uniqueness and
// provenance semantics as UserRole.
type RolePermission struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;column:role_permission_id" json:"role_permission_id"`
	RoleID       uint      `gorm:"not null;uniqueIndex:idx_role_permission"           json:"role_id"`
	PermissionID uint      `gorm:"not null;uniqueIndex:idx_role_permission"           json:"permission_id"`
	AssignedBy   uint      `json:"assigned_by"`
	AssignedAt   time.Time `json:"assigned_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccessToken is an opaque bearer credential. Only the sha256 digest of the
// random secret is stored; the plaintext leaves the service exactly once,
// at mint time.
type AccessToken struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID     uint       `gorm:"index;not null"               json:"user_id"`
	Name       string     `gorm:"size:100;not null"            json:"name"`
	Digest     string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Abilities  string     `gorm:"type:text;not null"           json:"abilities"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserPreference is a sparse key-value row for open-ended per-user options.
type UserPreference struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:preference_id"                     json:"preference_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_pref"                                json:"user_id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_user_pref;column:preference_key" json:"preference_key"`
	Value     string    `gorm:"type:text;column:preference_value"                                 json:"preference_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FitnessAssessment is one assessment result. The user's fitness level is
// always projected from the newest row, never stored on the user.
type FitnessAssessment struct {
	ID             uint      `gorm:"primaryKey;autoIncrement;column:assessment_id" json:"assessment_id"`
	UserID         uint      `gorm:"index;not null"   json:"user_id"`
	AssessmentType string    `gorm:"size:50;not null" json:"assessment_type"`
	FitnessLevel   string    `gorm:"size:20;not null" json:"fitness_level"`
	Score          float64   `json:"score"`
	Notes          string    `gorm:"type:text"        json:"notes,omitempty"`
	AssessedAt     time.Time `gorm:"index"            json:"assessed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
