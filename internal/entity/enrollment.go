package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Enrollment struct {
	ID                 uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course,priority:1" json:"studentId"`
	Student            *User                          `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	CourseID           uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course,priority:2;index" json:"courseId"`
	Course             *Course                        `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Progress           int                            `gorm:"not null;default:0" json:"progress"`
	CompletedLessonIDs datatypes.JSONSlice[uuid.UUID] `json:"completedLessonIds"`
	CompletedAt        *time.Time                     `json:"completedAt"`
	CertificateURL     *string                        `gorm:"type:text" json:"certificateUrl"`
	CreatedAt          time.Time                      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time                      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	if e.CompletedLessonIDs == nil {
		e.CompletedLessonIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	return
}

// ComputeProgress returns round(100*completed/total) clamped to [0,100].
// A course without lessons counts as having one.
func ComputeProgress(completed, total int) int {
	if total < 1 {
		total = 1
	}
	p := int(math.Round(float64(completed) * 100 / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (e *Enrollment) HasCompletedLesson(lessonID uuid.UUID) bool {
	for _, id := range e.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson records lessonID and recomputes progress against the lessons
// the course currently has. Ids of lessons that no longer exist are not counted.
// completedAt is stamped the first time progress reaches 100 and cleared if it drops.
func (e *Enrollment) CompleteLesson(lessonID uuid.UUID, courseLessonIDs []uuid.UUID, now time.Time) {
	if !e.HasCompletedLesson(lessonID) {
		e.CompletedLessonIDs = append(e.CompletedLessonIDs, lessonID)
	}

	current := make(map[uuid.UUID]struct{}, len(courseLessonIDs))
	for _, id := range courseLessonIDs {
		current[id] = struct{}{}
	}
	done := 0
	for _, id := range e.CompletedLessonIDs {
		if _, ok := current[id]; ok {
			done++
		}
	}

	e.Progress = ComputeProgress(done, len(courseLessonIDs))
	if e.Progress >= 100 {
		if e.CompletedAt == nil {
			t := now
			e.CompletedAt = &t
		}
	} else {
		e.CompletedAt = nil
	}
}

func (e *Enrollment) IsComplete() bool {
	return e.Progress >= 100
}

// Progress is the course-level record a student or grader may attach a score to.
// Completion itself is derived from Enrollment.
type Progress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_course,priority:1" json:"studentId"`
	Student   *User     `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_course,priority:2;index" json:"courseId"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Score     *float64  `json:"score"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Progress) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
