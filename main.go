package main

import (
	"time"

	"newswire/config"
	"newswire/models"
	"newswire/routes"
	"newswire/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.News{}, &models.Comment{})

	r := routes.SetupRouter(db)

	if cfg.UpvoteResetMinutes > 0 {
		utils.StartUpvoteReset(db, time.Duration(cfg.UpvoteResetMinutes)*time.Minute)
	}

	utils.Sugar.Infof("starting server on port %s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
