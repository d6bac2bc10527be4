package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

const coursesIndex = "courses"

// CourseIndexer keeps the search index of published courses in sync.
type CourseIndexer interface {
	IndexCourse(ctx context.Context, course *entity.Course) error
	RemoveCourse(ctx context.Context, id uuid.UUID) error
	SearchCourses(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
	Reindex(ctx context.Context, courses []entity.Course) error
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *logger.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *logger.Logger) CourseIndexer {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"status", "category_id", "instructor_id"}
	if _, err := s.client.Index(coursesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update courses filterable attributes", "error", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(coursesIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update courses sortable attributes", "error", err)
	}

	s.log.Info("meilisearch indexes initialized")
}

type courseDoc struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Lessons       []string `json:"lessons"`
	Prerequisites []string `json:"prerequisites"`
	Status        string   `json:"status"`
	InstructorID  string   `json:"instructor_id"`
	Instructor    string   `json:"instructor"`
	CategoryID    string   `json:"category_id"`
	Category      string   `json:"category"`
	CreatedAt     int64    `json:"created_at"`
}

// cleanText strips markup from lesson content so only words reach the index.
func cleanText(p *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	clean := html.UnescapeString(p.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func newCourseDoc(p *bluemonday.Policy, c *entity.Course) courseDoc {
	doc := courseDoc{
		ID:            c.ID.String(),
		Title:         c.Title,
		Lessons:       make([]string, 0, len(c.Lessons)),
		Prerequisites: append([]string{}, c.Prerequisites...),
		Status:        string(c.Status),
		InstructorID:  c.InstructorID.String(),
		CreatedAt:     c.CreatedAt.Unix(),
	}
	if c.Description != nil {
		doc.Description = cleanText(p, *c.Description)
	}
	for _, l := range c.Lessons {
		doc.Lessons = append(doc.Lessons, l.Title)
	}
	if c.Instructor != nil {
		doc.Instructor = c.Instructor.DisplayName()
	}
	if c.CategoryID != nil {
		doc.CategoryID = c.CategoryID.String()
	}
	if c.Category != nil {
		doc.Category = c.Category.Name
	}
	return doc
}

// IndexCourse adds a published course, or removes it when it is in any other status.
func (s *meiliSearchService) IndexCourse(ctx context.Context, course *entity.Course) error {
	if course.Status != entity.CoursePublished {
		return s.RemoveCourse(ctx, course.ID)
	}

	doc := newCourseDoc(s.sanitizer, course)
	task, err := s.client.Index(coursesIndex).AddDocuments([]courseDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed course", "course_id", course.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) RemoveCourse(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(coursesIndex).DeleteDocument(id.String())
	return err
}

type searchHits struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
}

func (s *meiliSearchService) SearchCourses(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 20
	}

	raw, err := s.client.Index(coursesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Filter:               fmt.Sprintf("status = %s", entity.CoursePublished),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var res searchHits
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Reindex replaces the index content with the given courses.
func (s *meiliSearchService) Reindex(ctx context.Context, courses []entity.Course) error {
	if _, err := s.client.Index(coursesIndex).DeleteAllDocuments(); err != nil {
		return err
	}

	docs := make([]courseDoc, 0, len(courses))
	for i := range courses {
		if courses[i].Status == entity.CoursePublished {
			docs = append(docs, newCourseDoc(s.sanitizer, &courses[i]))
		}
	}
	if len(docs) == 0 {
		return nil
	}

	if _, err := s.client.Index(coursesIndex).AddDocuments(docs, strPtr("id")); err != nil {
		return err
	}
	s.log.Info("reindexed courses", "count", len(docs))
	return nil
}

func strPtr(s string) *string {
	return &s
}
