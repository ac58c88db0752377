package routes

import (
	"time"

	"github.com/bosco250/myUrutiSaluni-sub016/config"
	"github.com/bosco250/myUrutiSaluni-sub016/controllers"
	"github.com/bosco250/myUrutiSaluni-sub016/services"
	"github.com/bosco250/myUrutiSaluni-sub016/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())
	r.Use(utils.RateLimitMiddleware(utils.NewRateLimiter(300, 50, 5*time.Minute)))

	// Wire the waitlist engine over the shared DB handle
	notifications := services.NewNotificationService(config.DB)
	appointments := services.NewAppointmentService(config.DB)
	waitlist := services.NewWaitlistService(
		services.NewGormEntryStore(config.DB),
		appointments,
		notifications,
	)

	waitlistController := controllers.NewWaitlistController(waitlist)
	appointmentController := controllers.NewAppointmentController(appointments)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers", utils.RequireRole(utils.RoleSalonEmployee))
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Service catalog routes
		catalog := api.Group("/services", utils.RequireRole(utils.RoleSalonOwner))
		{
			catalog.POST("", controllers.CreateService)
			catalog.GET("", controllers.GetServices)
			catalog.GET("/:id", controllers.GetService)
			catalog.PUT("/:id", controllers.UpdateService)
			catalog.DELETE("/:id", controllers.DeleteService)
		}

		// Waitlist routes
		waitlistGroup := api.Group("/waitlist", utils.RequireRole(utils.RoleSalonEmployee))
		{
			waitlistGroup.POST("", waitlistController.CreateEntry)
			waitlistGroup.GET("", waitlistController.GetEntries)
			waitlistGroup.GET("/next", waitlistController.NextEntry)
			waitlistGroup.POST("/sweep", utils.RequireRole(utils.RoleSalonOwner), waitlistController.SweepEntries)
			waitlistGroup.GET("/:id", waitlistController.GetEntry)
			waitlistGroup.PUT("/:id", waitlistController.UpdateEntry)
			waitlistGroup.DELETE("/:id", waitlistController.DeleteEntry)
			waitlistGroup.POST("/:id/contact", waitlistController.ContactEntry)
			waitlistGroup.POST("/:id/convert", waitlistController.ConvertEntry)
		}

		// Appointment routes
		appointmentsGroup := api.Group("/appointments", utils.RequireRole(utils.RoleSalonEmployee))
		{
			appointmentsGroup.GET("", appointmentController.GetAppointments)
			appointmentsGroup.GET("/:id", appointmentController.GetAppointment)
			appointmentsGroup.POST("/:id/cancel", appointmentController.CancelAppointment)
		}
	}

	return r
}
