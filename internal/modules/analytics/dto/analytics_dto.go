package dto

import (
	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type InstructorCourseCount struct {
	InstructorName string `json:"instructorName"`
	CourseCount    int64  `json:"courseCount"`
}

type CourseStudentCount struct {
	CourseTitle  string `json:"courseTitle"`
	StudentCount int64  `json:"studentCount"`
}

type StatusCount struct {
	Status entity.CourseStatus `json:"status"`
	Count  int64               `json:"count"`
}

type DashboardResponse struct {
	TotalCourses             int64                   `json:"totalCourses"`
	TotalStudents            int64                   `json:"totalStudents"`
	TotalInstructors         int64                   `json:"totalInstructors"`
	CoursesPerInstructor     []InstructorCourseCount `json:"coursesPerInstructor"`
	StudentsPerCourse        []CourseStudentCount    `json:"studentsPerCourse"`
	CourseStatusDistribution []StatusCount           `json:"courseStatusDistribution"`
}

type TotalStudentsResponse struct {
	CourseID      uuid.UUID `json:"courseId"`
	TotalStudents int64     `json:"totalStudents"`
}

type CompletionRateResponse struct {
	CourseID       uuid.UUID `json:"courseId"`
	CompletionRate float64   `json:"completionRate"`
}

type CourseProgressResponse struct {
	CourseID       uuid.UUID           `json:"courseId"`
	Title          string              `json:"title"`
	Status         entity.CourseStatus `json:"status"`
	TotalStudents  int64               `json:"totalStudents"`
	CompletionRate float64             `json:"completionRate"`
	LessonsCount   int64               `json:"lessonsCount"`
	Instructor     string              `json:"instructor,omitempty"`
}
