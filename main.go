package main

import (
	"fmt"
	"time"

	"agencydesk/creator-api/api"
	"agencydesk/creator-api/config"
	"agencydesk/creator-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	if config.MigrateOnly() {
		zap.L().Info("Migrations done, exiting")
		return
	}

	ttl := time.Duration(viper.GetInt("upload.pending_ttl_minutes")) * time.Minute
	service.UploadCleanup(time.Minute, ttl, a.DB)

	zap.L().Info("Server starting", zap.Int("port", viper.GetInt("host.port")))

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
