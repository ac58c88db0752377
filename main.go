package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bosco250/myUrutiSaluni-sub016/config"
	"github.com/bosco250/myUrutiSaluni-sub016/models"
	"github.com/bosco250/myUrutiSaluni-sub016/routes"
	"github.com/bosco250/myUrutiSaluni-sub016/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.Customer{},
		&models.Service{},
		&models.WaitlistEntry{},
		&models.Appointment{},
		&models.NotificationLog{},
	)
}

func main() {

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()

	// Periodic expiration sweep over the waitlist
	waitlist := services.NewWaitlistService(
		services.NewGormEntryStore(config.DB),
		services.NewAppointmentService(config.DB),
		services.NewNotificationService(config.DB),
	)
	services.StartSweepScheduler(waitlist)

	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
