package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

func TestCreateCourse_UniqueSlugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	instructor := e.user(t)

	first, err := e.contentSvc.CreateCourse(ctx, instructor.ID, "  Go in Practice ")
	require.NoError(t, err)
	second, err := e.contentSvc.CreateCourse(ctx, instructor.ID, "Go in Practice")
	require.NoError(t, err)

	assert.Equal(t, "Go in Practice", first.Title)
	assert.Equal(t, "go-in-practice", first.Slug)
	assert.Equal(t, "go-in-practice-2", second.Slug)
	assert.False(t, first.IsPublished)

	_, err = e.contentSvc.CreateCourse(ctx, instructor.ID, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = e.contentSvc.CreateCourse(ctx, uuid.New(), "Orphan")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateModuleAndArticle_Positions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.draftCourse(t, e.user(t))

	m1, err := e.contentSvc.CreateModule(ctx, course.ID, "One")
	require.NoError(t, err)
	m2, err := e.contentSvc.CreateModule(ctx, course.ID, "Two")
	require.NoError(t, err)
	assert.Equal(t, 1, m1.Position)
	assert.Equal(t, 2, m2.Position)

	a1, err := e.contentSvc.CreateArticle(ctx, m2.ID, "First")
	require.NoError(t, err)
	assert.Equal(t, 1, a1.Position)

	_, err = e.contentSvc.CreateModule(ctx, uuid.New(), "Nowhere")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = e.contentSvc.CreateArticle(ctx, uuid.New(), "Nowhere")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = e.contentSvc.CreateArticle(ctx, m1.ID, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReorderModules_ThroughService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.draftCourse(t, e.user(t))
	m1, _ := e.contentSvc.CreateModule(ctx, course.ID, "One")
	m2, _ := e.contentSvc.CreateModule(ctx, course.ID, "Two")

	err := e.contentSvc.ReorderModules(ctx, course.ID, []repository.PositionUpdate{
		{ID: m1.ID, Position: 1},
		{ID: m2.ID, Position: 1},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidReorder))

	require.NoError(t, e.contentSvc.ReorderModules(ctx, course.ID, []repository.PositionUpdate{
		{ID: m1.ID, Position: 2},
		{ID: m2.ID, Position: 1},
	}))

	tree, err := e.contentSvc.GetCourseForEdit(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Modules, 2)
	assert.Equal(t, m2.ID, tree.Modules[0].ID)
	assert.Equal(t, m1.ID, tree.Modules[1].ID)
}

func TestReorderArticles_ThroughService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.draftCourse(t, e.user(t))
	m, _ := e.contentSvc.CreateModule(ctx, course.ID, "One")
	a1 := e.article(t, m.ID, "A1", false)
	a2 := e.article(t, m.ID, "A2", false)

	err := e.contentSvc.ReorderArticles(ctx, m.ID, []repository.PositionUpdate{{ID: a1.ID, Position: 2}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidReorder))

	require.NoError(t, e.contentSvc.ReorderArticles(ctx, m.ID, []repository.PositionUpdate{
		{ID: a1.ID, Position: 2},
		{ID: a2.ID, Position: 1},
	}))
	module, err := e.content.GetModule(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, a2.ID, module.Articles[0].ID)
}

func TestUpdateArticle_ClearingContentUnpublishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course, _, a := e.publishedCourse(t, e.user(t))

	updated, err := e.contentSvc.UpdateArticle(ctx, a.ID, repository.ArticlePatch{Content: strPtr("")})
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)

	stored, err := e.content.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublished)
	assert.False(t, e.isCoursePublished(t, course.ID))
}

func TestUpdateArticle_KeepsPublishedWhenStillComplete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course, _, a := e.publishedCourse(t, e.user(t))

	free := true
	updated, err := e.contentSvc.UpdateArticle(ctx, a.ID, repository.ArticlePatch{
		Title:  strPtr("Hello, again"),
		IsFree: &free,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.True(t, updated.IsFree)
	assert.Equal(t, "Hello, again", updated.Title)
	assert.True(t, e.isCoursePublished(t, course.ID))

	_, err = e.contentSvc.UpdateArticle(ctx, a.ID, repository.ArticlePatch{Title: strPtr(" ")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateCourse_RemovingRequiredFieldUnpublishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course, _, _ := e.publishedCourse(t, e.user(t))

	updated, err := e.contentSvc.UpdateCourse(ctx, course.ID, repository.CoursePatch{Title: strPtr("Go, Properly")})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	updated, err = e.contentSvc.UpdateCourse(ctx, course.ID, repository.CoursePatch{Description: strPtr("")})
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
	assert.False(t, e.isCoursePublished(t, course.ID))
}

func TestSetCoverImage_ReplacesPrevious(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.draftCourse(t, e.user(t))

	second, err := e.contentSvc.SetCoverImage(ctx, course.ID, AttachmentInput{Name: "new.png", URL: "https://cdn.example.com/new.png"})
	require.NoError(t, err)

	stored, err := e.courses.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CoverImageID)
	assert.Equal(t, second.ID, *stored.CoverImageID)

	var covers int64
	require.NoError(t, e.db.Model(&models.Attachment{}).
		Where("course_id = ? AND is_cover_image = ?", course.ID, true).
		Count(&covers).Error)
	assert.Equal(t, int64(1), covers)

	_, err = e.contentSvc.SetCoverImage(ctx, course.ID, AttachmentInput{Name: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetPublishedCourse_FiltersDrafts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course, m, published := e.publishedCourse(t, e.user(t))
	e.article(t, m.ID, "Draft", false)

	tree, err := e.contentSvc.GetPublishedCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Modules, 1)
	require.Len(t, tree.Modules[0].Articles, 1)
	assert.Equal(t, published.ID, tree.Modules[0].Articles[0].ID)

	draft := e.draftCourse(t, e.user(t))
	_, err = e.contentSvc.GetPublishedCourse(ctx, draft.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListCourses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	instructor := e.user(t)
	live, _, _ := e.publishedCourse(t, instructor)
	e.draftCourse(t, instructor)

	public, err := e.contentSvc.ListPublishedCourses(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, live.ID, public[0].ID)

	mine, err := e.contentSvc.ListInstructorCourses(ctx, instructor.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeleteCourse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course, _, _ := e.publishedCourse(t, e.user(t))
	learner := e.user(t)

	_, err := e.enrollment.UpsertEnrollment(ctx, learner.ID, course.ID, false)
	require.NoError(t, err)
	err = e.contentSvc.DeleteCourse(ctx, course.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	other, _, a := e.publishedCourse(t, e.user(t))
	_, err = e.progress.Upsert(ctx, learner.ID, a.ID, true)
	require.NoError(t, err)
	require.NoError(t, e.contentSvc.DeleteCourse(ctx, other.ID))

	_, err = e.courses.GetCourse(ctx, other.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	var rows int64
	require.NoError(t, e.db.Model(&models.UserProgress{}).Where("article_id = ?", a.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}
