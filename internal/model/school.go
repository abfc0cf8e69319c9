package model

import "time"

// UserRole identifies which portal the client is signed into.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// Valid reports whether the role is one the server accepts.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Student is a roster entry as returned by the portal list endpoints.
type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	ClassID   string `json:"classId,omitempty"`
}

// FullName returns the student's display name.
func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}

// Teacher is a staff entry as returned by the portal list endpoints.
type Teacher struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Subjects []string `json:"subjects,omitempty"`
}

// Class is a class/group record with its enrolled members.
type Class struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Subject    string   `json:"subject"`
	TeacherIDs []string `json:"teacherIds,omitempty"`
	StudentIDs []string `json:"studentIds,omitempty"`
}

// Assignment is a work item assigned to a class.
type Assignment struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"classId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
}

// TestSummary is the listing shape of an online test; the live
// start/submit flow runs over the socket, not REST.
type TestSummary struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"startsAt"`
	Duration  int       `json:"durationMinutes"`
	Published bool      `json:"published"`
}
