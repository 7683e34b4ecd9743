package app

import (
	"khattha_backend/docs"
	"khattha_backend/internal/config"
	"khattha_backend/internal/middleware"
	"khattha_backend/internal/model"
	"khattha_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员路由
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.GET("/dashboard", c.dashboard.StudentStats)

	// 科目与课程
	rg.GET("/subjects", c.subject.ListMine)
	rg.GET("/subjects/:id", c.subject.Get)
	rg.GET("/subjects/:id/access", c.subject.CheckAccess)
	rg.GET("/subjects/:id/lessons", c.lesson.ListBySubject)
	rg.GET("/subjects/:id/daily-quiz", c.quiz.GetDaily)
	rg.GET("/subjects/:id/progress", c.progress.ListBySubject)
	rg.GET("/lessons/:id", c.lesson.Get)
	rg.POST("/lessons/:id/progress", c.progress.MarkLesson)

	// 测验与考试
	rg.GET("/quizzes/:id", c.quiz.GetForStudent)
	rg.POST("/quizzes/:id/submit", c.quiz.Submit)
	rg.GET("/quizzes/:id/my-answers", c.quiz.MyAnswers)
	rg.GET("/exams", c.quiz.ListExams)

	// 智能助教
	rg.POST("/tutor/ask", c.tutor.Ask)
	rg.POST("/tutor/ask-stream", c.tutor.AskStream)
	rg.GET("/tutor/history", c.tutor.History)

	// 折扣与通知
	rg.GET("/discounts", c.discount.ListActive)
	rg.GET("/notifications", c.notification.ListMine)
	rg.POST("/notifications/:id/read", c.notification.MarkRead)

	// 上传
	rg.POST("/uploads/answer-image", c.upload.UploadAnswerImage)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/dashboard", c.dashboard.AdminStats)

		// 科目管理
		admin.POST("/subjects", c.subject.Create)
		admin.GET("/subjects", c.subject.ListAll)
		admin.PUT("/subjects/:id", c.subject.Update)
		admin.DELETE("/subjects/:id", c.subject.Delete)
		admin.POST("/subjects/:id/curriculum", c.subject.UploadCurriculum)
		admin.GET("/subjects/:id/quizzes", c.quiz.ListBySubject)

		// 课程管理
		admin.POST("/lessons", c.lesson.Create)
		admin.PUT("/lessons/:id", c.lesson.Update)
		admin.DELETE("/lessons/:id", c.lesson.Delete)

		// 测验管理
		admin.POST("/quizzes", c.quiz.Create)
		admin.GET("/quizzes/:id", c.quiz.GetFull)
		admin.DELETE("/quizzes/:id", c.quiz.Delete)
		admin.POST("/quizzes/:id/model-answer", c.quiz.AttachModelAnswer)

		// 批改与发布
		admin.GET("/quizzes/:id/submissions", c.grading.ListSubmissions)
		admin.GET("/quizzes/:id/submissions/:studentId", c.grading.GetSubmissionDetail)
		admin.POST("/answers/:answerId/grade", c.grading.GradeAnswer)
		admin.POST("/quizzes/:id/publish", c.grading.PublishResults)

		// 授权管理
		admin.POST("/permissions", c.subject.GrantAccess)
		admin.GET("/permissions", c.subject.ListPermissions)
		admin.DELETE("/permissions", c.subject.RevokeAccess)

		// 折扣管理
		admin.POST("/discounts", c.discount.Create)
		admin.GET("/discounts", c.discount.ListAll)
		admin.PUT("/discounts/:id", c.discount.Update)
		admin.DELETE("/discounts/:id", c.discount.Delete)

		// 用户管理
		admin.GET("/users", c.auth.ListUsers)
		admin.DELETE("/users/:id", c.auth.DeleteUser)

		// 通知管理
		admin.POST("/notifications", c.notification.Send)
	}
}
