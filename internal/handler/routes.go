package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the trigger and alert endpoints. Every route sits behind
// the cron secret gate.
func RegisterRoutes(r gin.IRouter, cron *CronHandler, alerts *AlertHandler, cronSecret string) {
	api := r.Group("/api", RequireCronSecret(cronSecret))
	{
		api.GET("/cron/check-deadlines", cron.HandleCheckDeadlines)
		api.POST("/cron/check-deadlines", cron.HandleCheckDeadlines)

		api.GET("/alerts/check", alerts.HandleCheck)
		api.POST("/alerts/check", alerts.HandleCheck)
		api.GET("/alerts/test", alerts.HandleTest)
		api.POST("/alerts/test", alerts.HandleTest)
		api.GET("/alerts/recent", alerts.HandleRecent)
	}
}
