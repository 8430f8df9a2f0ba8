package models

import "time"

// Tutor is a tutoring-center staff record. DisplayName and Email are
// materialised at load time from the owning user (left join); tutors
// without a matching user fall back to their raw identifier.
type Tutor struct {
	ID                    string    `json:"tutor_id"`
	UserID                string    `json:"user_id"`
	Bio                   string    `json:"bio,omitempty"`
	Specializations       []string  `json:"specializations"`
	MaxAppointmentsPerDay int       `json:"max_appointments_per_day"`
	IsAvailable           bool      `json:"is_available"`
	JoinedDate            time.Time `json:"joined_date"`

	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// User enriches tutors with display names; the analytics core never
// mutates users.
type User struct {
	ID       string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Course is a subject offering appointments can be booked against.
type Course struct {
	ID         string `json:"course_id"`
	Code       string `json:"course_code"`
	Name       string `json:"course_name"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active"`
}
