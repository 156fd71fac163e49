package main

import (
	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/controllers"
	"github.com/yunseo-dev/glowbook/routes"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

func main() {
	if err := utils.InitLogger(); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Failed to load config: %v", err)
		panic(err)
	}

	config.InitDB()
	utils.LogInfo("Database connected and migrated")

	if err := controllers.EnsureDefaultAdmin(config.DB); err != nil {
		utils.LogError("Failed to seed default admin: %v", err)
		panic(err)
	}

	if client := config.NewRedisClient(); client != nil {
		controllers.SetResetTokenStore(utils.NewResetTokenStore(client, cfg.ResetTokenTTL))
		utils.LogInfo("Redis connected, password reset enabled")
	} else {
		utils.LogError("Redis unreachable, password reset disabled")
	}

	scheduler := services.NewBirthdayScheduler(
		config.DB,
		services.NewCouponService(config.DB),
		cfg.BirthdaySweepHour,
	)
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter()

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	utils.LogInfo("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.LogError("Server stopped: %v", err)
		panic(err)
	}
}
