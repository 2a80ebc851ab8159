package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/handler"
	"github.com/wtppaul/course-marketplace/internal/middleware"
)

type Handlers struct {
	Course     *handler.CourseHandler
	Content    *handler.ContentHandler
	Progress   *handler.ProgressHandler
	Enrollment *handler.EnrollmentHandler
	Payment    *handler.PaymentHandler
}

// SetupRoutes mounts the internal API behind the shared-secret middleware,
// plus the public webhook and health check.
func SetupRoutes(router *gin.Engine, h Handlers, internalSecret string) {
	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(internalSecret))
	{
		courses := internal.Group("/courses")
		{
			courses.POST("", h.Course.CreateCourse)
			courses.GET("/public", h.Course.GetPublishedCourses)
			courses.GET("/:id", h.Course.GetCourseByID)
			courses.GET("/:id/published", h.Course.GetPublishedCourse)
			courses.PATCH("/:id", h.Course.UpdateCourse)
			courses.DELETE("/:id", h.Course.DeleteCourse)
			courses.POST("/:id/publish", h.Course.PublishCourse)
			courses.POST("/:id/unpublish", h.Course.UnpublishCourse)
			courses.PUT("/:id/cover", h.Course.SetCoverImage)

			courses.POST("/:id/modules", h.Content.CreateModule)
			courses.PUT("/:id/modules/reorder", h.Content.ReorderModules)

			courses.GET("/:id/progress", h.Progress.GetCourseProgress)

			courses.POST("/:id/requests", h.Enrollment.CreateRequest)
			courses.GET("/:id/requests", h.Enrollment.ListCourseRequests)
			courses.GET("/:id/requests/current", h.Enrollment.CurrentRequest)

			courses.POST("/:id/payments", h.Payment.CreatePayment)
		}

		modules := internal.Group("/modules")
		{
			modules.PATCH("/:id", h.Content.UpdateModule)
			modules.DELETE("/:id", h.Content.DeleteModule)
			modules.POST("/:id/articles", h.Content.CreateArticle)
			modules.PUT("/:id/articles/reorder", h.Content.ReorderArticles)
		}

		articles := internal.Group("/articles")
		{
			articles.GET("/:id", h.Content.ReadArticle)
			articles.PATCH("/:id", h.Content.UpdateArticle)
			articles.DELETE("/:id", h.Content.DeleteArticle)
			articles.POST("/:id/publish", h.Content.PublishArticle)
			articles.POST("/:id/unpublish", h.Content.UnpublishArticle)
			articles.PUT("/:id/progress", h.Progress.MarkArticleProgress)
		}

		requests := internal.Group("/requests")
		{
			requests.POST("/:id/accept", h.Enrollment.AcceptRequest)
			requests.POST("/:id/reject", h.Enrollment.RejectRequest)
		}

		me := internal.Group("/me")
		{
			me.GET("/enrollments", h.Enrollment.ListMyEnrollments)
			me.GET("/progress", h.Progress.ListMyProgress)
			me.GET("/payments", h.Payment.ListMyPayments)
			me.PUT("/payout-account", h.Payment.SetPayoutAccount)
		}

		teachers := internal.Group("/teachers")
		{
			teachers.GET("/:teacherId/courses", h.Course.GetCoursesByTeacherID)
		}
	}

	// Authenticated by the gateway signature, not the internal secret.
	router.POST("/webhooks/payments", h.Payment.PaymentWebhook)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "course-marketplace"})
	})
}
