package routes

import (
	"dancestudio_go/controllers"
	"dancestudio_go/middleware"
	"dancestudio_go/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	studioController := &controllers.StudioController{}
	studentController := &controllers.StudentController{}
	groupController := controllers.NewGroupController()
	sessionController := controllers.NewSessionController()
	passController := controllers.NewPassController()
	paymentController := controllers.NewPaymentController()
	billingController := controllers.NewBillingController()
	holidayController := &controllers.HolidayController{}
	notificationController := &controllers.NotificationController{}
	logController := controllers.NewLogController()
	reportController := controllers.NewReportController()
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))

	// API group
	api := app.Group("/api")

	// Health (no auth, used by load balancers)
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Profile routes (authenticated users)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// User management routes
	users := protected.Group("/users")
	users.Get("/", middleware.RequireOwnerOrAdmin(), userController.GetUsers)
	users.Get("/:id", middleware.RequireOwnerOrAdmin(), userController.GetUser)
	users.Post("/", middleware.RequireOwnerOrAdmin(), authController.Register)
	users.Put("/:id", middleware.RequireOwnerOrAdmin(), userController.UpdateUser)
	users.Delete("/:id", middleware.RequireOwnerOrAdmin(), userController.DeactivateUser)

	// Studio management routes
	studios := protected.Group("/studios")
	studios.Get("/", middleware.RequireInstructorOrAbove(), studioController.GetStudios)
	studios.Get("/:id", middleware.RequireInstructorOrAbove(), studioController.GetStudio)
	studios.Post("/", middleware.RequireRole("owner"), studioController.CreateStudio)
	studios.Put("/:id", middleware.RequireRole("owner"), studioController.UpdateStudio)
	studios.Delete("/:id", middleware.RequireRole("owner"), studioController.DeactivateStudio)

	// Student management routes
	students := protected.Group("/students")
	students.Get("/", middleware.RequireInstructorOrAbove(), studentController.GetStudents)
	students.Get("/:id", middleware.RequireInstructorOrAbove(), studentController.GetStudent)
	students.Post("/", middleware.RequireOwnerOrAdmin(), studentController.CreateStudent)
	students.Put("/:id", middleware.RequireOwnerOrAdmin(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireOwnerOrAdmin(), studentController.DeactivateStudent)
	students.Get("/:student_id/passes", middleware.RequireInstructorOrAbove(), passController.GetStudentPasses)
	students.Get("/:student_id/payments", middleware.RequireOwnerOrAdmin(), paymentController.GetStudentPayments)

	// Group management routes
	groups := protected.Group("/groups")
	groups.Get("/", middleware.RequireInstructorOrAbove(), groupController.GetGroups)
	groups.Get("/:id", middleware.RequireInstructorOrAbove(), groupController.GetGroup)
	groups.Post("/", middleware.RequireOwnerOrAdmin(), groupController.CreateGroup)
	groups.Put("/:id", middleware.RequireOwnerOrAdmin(), groupController.UpdateGroup)
	groups.Delete("/:id", middleware.RequireOwnerOrAdmin(), groupController.DeactivateGroup)
	groups.Post("/:id/members", middleware.RequireOwnerOrAdmin(), groupController.AddMember)
	groups.Delete("/:id/members/:student_id", middleware.RequireOwnerOrAdmin(), groupController.RemoveMember)
	groups.Get("/:group_id/sessions", middleware.RequireInstructorOrAbove(), sessionController.GetGroupSessions)

	// Session and attendance routes (instructors take attendance)
	sessions := protected.Group("/sessions", middleware.RequireInstructorOrAbove())
	sessions.Post("/ensure", sessionController.EnsureSession)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Get("/:id/attendance", sessionController.GetAttendance)
	sessions.Post("/:id/attendance", sessionController.ToggleAttendance)

	// Pass management routes (billing is owner/admin territory)
	passes := protected.Group("/passes", middleware.RequireOwnerOrAdmin())
	passes.Post("/", passController.CreatePass)
	passes.Post("/:id/renew", passController.RenewPass)
	passes.Delete("/:id", passController.DeactivatePass)
	passes.Get("/orphaned-renewals", passController.GetOrphanedRenewals)

	// Payment routes
	payments := protected.Group("/payments", middleware.RequireOwnerOrAdmin())
	payments.Get("/", paymentController.GetPayments)
	payments.Post("/", paymentController.CreatePayment)

	// Billing views
	billing := protected.Group("/billing", middleware.RequireOwnerOrAdmin())
	billing.Get("/status", billingController.GetStudentsWithPassStatus)
	billing.Get("/daily-unpaid", billingController.GetDailyUnpaid)
	billing.Get("/overdue", billingController.GetOverdueStudents)
	billing.Get("/unpaid-passes", billingController.GetUnpaidPasses)
	billing.Get("/revenue", billingController.GetMonthlyRevenue)

	// Holiday calendar
	holidays := protected.Group("/holidays")
	holidays.Get("/", middleware.RequireInstructorOrAbove(), holidayController.GetHolidays)
	holidays.Post("/", middleware.RequireOwnerOrAdmin(), holidayController.CreateHoliday)
	holidays.Delete("/:id", middleware.RequireOwnerOrAdmin(), holidayController.DeleteHoliday)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Patch("/mark-all-read", notificationController.MarkAllAsRead)

	// Report routes (Admin/Owner only)
	reports := protected.Group("/reports", middleware.RequireOwnerOrAdmin())
	reports.Post("/revenue", reportController.GenerateRevenueReport)
	reports.Get("/unpaid-passes", reportController.DownloadUnpaidPassesReport)
	reports.Get("/archives", reportController.GetReportArchives)

	// Log management routes (Admin/Owner only)
	logs := protected.Group("/logs", middleware.RequireOwnerOrAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/recent", logController.GetRecentLogs)
	logs.Get("/stats", logController.GetLogStats)
	logs.Post("/maintenance", logController.TriggerLogMaintenance)
}
