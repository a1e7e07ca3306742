package routes

import (
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.RoleMiddleware(db, cfg, "admin")
	staffMiddleware := middleware.RoleMiddleware(db, cfg, "admin", "instructor")

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Put("/api/user/password", authMiddleware, userController.ChangePassword)

	// School routes
	schoolsController := controllers.NewSchoolsController(db, cfg)
	app.Get("/api/schools", authMiddleware, schoolsController.ListSchools)
	app.Get("/api/schools/:id", authMiddleware, schoolsController.GetSchool)
	app.Post("/api/admin/schools", authMiddleware, adminMiddleware, schoolsController.CreateSchool)
	app.Put("/api/admin/schools/:id", authMiddleware, adminMiddleware, schoolsController.UpdateSchool)

	// Progress write routes
	progressController := controllers.NewProgressController(db, cfg)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Post("/lesson", progressController.RecordProgress)
	progress.Post("/complete", progressController.RecordCompletion)
	progress.Post("/quiz", progressController.RecordQuizScore)

	// Analytics read routes
	analyticsController := controllers.NewAnalyticsController(db, cfg)
	app.Get("/api/analytics/daily", authMiddleware, analyticsController.GetStudentDaily)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetUserCourses)
	courses.Get("/available", coursesController.GetAvailableCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Get("/:id/summary", analyticsController.GetCourseSummary)
	courses.Get("/:id/lessons/progress", analyticsController.GetLessonProgress)
	courses.Get("/:id/daily", analyticsController.GetDailyProgress)
	courses.Get("/:id/percent", analyticsController.GetOverallPercent)
	courses.Get("/:id/analytics/daily", staffMiddleware, analyticsController.GetClassDaily)

	// Quizzes routes
	quizzesController := controllers.NewQuizzesController(db, cfg)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/:id", quizzesController.GetQuizDetails)
	quizzes.Post("/:id/submit", quizzesController.SubmitQuiz)
	quizzes.Get("/:id/result", quizzesController.GetQuizResult)

	// Payments routes
	paymentsController := controllers.NewPaymentsController(db, cfg)
	app.Get("/api/payments", authMiddleware, paymentsController.GetMyPayments)
	app.Post("/api/admin/payments", authMiddleware, adminMiddleware, paymentsController.CreatePayment)
	app.Put("/api/admin/payments/:id/paid", authMiddleware, adminMiddleware, paymentsController.MarkPaid)
	app.Put("/api/admin/payments/:id/refund", authMiddleware, adminMiddleware, paymentsController.Refund)

	// Bookings routes
	bookingsController := controllers.NewBookingsController(db, cfg)
	bookings := app.Group("/api/bookings", authMiddleware)
	bookings.Post("/", bookingsController.CreateBooking)
	bookings.Get("/", bookingsController.GetMyBookings)
	bookings.Put("/:id/complete", staffMiddleware, bookingsController.CompleteBooking)
	bookings.Put("/:id/cancel", bookingsController.CancelBooking)

	// Notifications routes
	notificationsController := controllers.NewNotificationsController(db, cfg)
	app.Get("/api/notifications", authMiddleware, notificationsController.GetMyNotifications)
	app.Put("/api/notifications/:id/read", authMiddleware, notificationsController.MarkRead)
	app.Post("/api/admin/announcements", authMiddleware, adminMiddleware, notificationsController.SendAnnouncement)

	// Admin routes for courses
	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Post("/:id/lessons", coursesController.AddLesson)
	adminCourses.Put("/:id/lessons/:lessonId", coursesController.UpdateLesson)

	// Admin routes for quizzes
	adminQuizzes := app.Group("/api/admin/quizzes", authMiddleware, adminMiddleware)
	adminQuizzes.Post("/", quizzesController.CreateQuiz)
	adminQuizzes.Post("/:id/questions", quizzesController.AddQuestion)
}
