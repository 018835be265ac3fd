package model

import "time"

// CourseEvent is published after a course mutation has been committed. Clients use it to
// decide when to refetch the course.
type CourseEvent struct {
	CourseID  string    `json:"courseId"`
	Operation string    `json:"operation"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}
