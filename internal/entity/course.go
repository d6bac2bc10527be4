package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "DRAFT"
	CoursePending   CourseStatus = "PENDING"
	CoursePublished CourseStatus = "PUBLISHED"
	CourseRejected  CourseStatus = "REJECTED"
)

func ParseCourseStatus(s string) (CourseStatus, bool) {
	switch st := CourseStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case CourseDraft, CoursePending, CoursePublished, CourseRejected:
		return st, true
	}
	return "", false
}

// courseTransitions lists every legal status move. PUBLISHED and REJECTED are terminal.
var courseTransitions = map[CourseStatus][]CourseStatus{
	CourseDraft:   {CoursePending},
	CoursePending: {CoursePublished, CourseRejected, CourseDraft},
}

func (s CourseStatus) CanTransitionTo(next CourseStatus) bool {
	for _, allowed := range courseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DeletableByInstructor reports whether the owning instructor may still delete the course.
func (s CourseStatus) DeletableByInstructor() bool {
	return s == CourseDraft || s == CoursePending
}

type Course struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Description   *string                     `gorm:"type:text" json:"description"`
	InstructorID  uuid.UUID                   `gorm:"type:uuid;not null;index" json:"instructorId"`
	Instructor    *User                       `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"instructor,omitempty"`
	CategoryID    *uuid.UUID                  `gorm:"type:uuid;index" json:"categoryId"`
	Category      *Category                   `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Status        CourseStatus                `gorm:"size:20;not null;default:DRAFT;index" json:"status"`
	Prerequisites datatypes.JSONSlice[string] `json:"prerequisites"`
	Lessons       []Lesson                    `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	if c.Status == "" {
		c.Status = CourseDraft
	}
	if c.Prerequisites == nil {
		c.Prerequisites = datatypes.JSONSlice[string]{}
	}
	return
}

// AddPrerequisite appends name unless an equal entry already exists.
// It reports whether the list changed.
func (c *Course) AddPrerequisite(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, existing := range c.Prerequisites {
		if existing == name {
			return false
		}
	}
	c.Prerequisites = append(c.Prerequisites, name)
	return true
}

// NormalizePrerequisites trims, drops blanks and removes duplicates while keeping order.
func NormalizePrerequisites(names []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

type Lesson struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Content       *string   `gorm:"type:text" json:"content"`
	VideoURL      *string   `gorm:"type:text" json:"videoUrl"`
	AttachmentURL *string   `gorm:"type:text" json:"attachmentUrl"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
