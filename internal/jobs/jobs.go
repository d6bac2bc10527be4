package jobs

import (
	"context"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	attachment "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/service"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	search "github.com/prajaktamali15/e-learning-platform/internal/modules/search/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

const (
	ReindexJobName      = "search-reindex"
	MediaCleanupJobName = "media-cleanup"
)

// ReindexJob rebuilds the search index from the published catalog so that
// missed index updates do not linger.
type ReindexJob struct {
	schedule string
	courses  courseRepo.CourseRepository
	indexer  search.CourseIndexer
	log      *logger.Logger
}

func NewReindexJob(schedule string, courses courseRepo.CourseRepository, indexer search.CourseIndexer, log *logger.Logger) *ReindexJob {
	return &ReindexJob{schedule: schedule, courses: courses, indexer: indexer, log: log}
}

func (j *ReindexJob) Name() string     { return ReindexJobName }
func (j *ReindexJob) Schedule() string { return j.schedule }

func (j *ReindexJob) Run(ctx context.Context) error {
	status := entity.CoursePublished
	courses, err := j.courses.FindAll(ctx, courseRepo.CourseFilter{Status: &status})
	if err != nil {
		return err
	}
	if err := j.indexer.Reindex(ctx, courses); err != nil {
		return err
	}
	j.log.Info("search index rebuilt", "courses", len(courses))
	return nil
}

// MediaCleanupJob deletes lesson uploads that no lesson ever claimed.
type MediaCleanupJob struct {
	schedule string
	media    attachment.AttachmentService
	log      *logger.Logger
}

func NewMediaCleanupJob(schedule string, media attachment.AttachmentService, log *logger.Logger) *MediaCleanupJob {
	return &MediaCleanupJob{schedule: schedule, media: media, log: log}
}

func (j *MediaCleanupJob) Name() string     { return MediaCleanupJobName }
func (j *MediaCleanupJob) Schedule() string { return j.schedule }

func (j *MediaCleanupJob) Run(ctx context.Context) error {
	removed, err := j.media.CleanupOrphanAttachments(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info("orphan lesson media removed", "count", removed)
	}
	return nil
}
