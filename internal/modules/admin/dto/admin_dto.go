package dto

import "github.com/google/uuid"

const (
	SearchTypeCourse = "course"
	SearchTypeUser   = "user"
)

type SearchQuery struct {
	Q string `form:"q" binding:"max=100"`
}

// SearchResult is one hit of the admin global search. Extra carries the
// instructor name for courses and the role for users.
type SearchResult struct {
	ID    uuid.UUID `json:"id"`
	Type  string    `json:"type"`
	Name  string    `json:"name"`
	Extra string    `json:"extra"`
}

type CourseListQuery struct {
	Status string `form:"status"`
}
