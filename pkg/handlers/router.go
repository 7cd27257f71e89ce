package handlers

import (
	"net/http"

	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

// NewRouter builds the gin engine shared by the server binary and the serverless entry point
func NewRouter(h *Handler) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster Engine API",
			"version": apiVersion,
		})
	})

	r.POST("/auth/login", h.Login)

	authed := r.Group("/")
	authed.Use(h.AuthMiddleware())
	authed.GET("/scheduling/strategies", h.ListStrategies)

	admin := authed.Group("/")
	admin.Use(RequireRole(database.RoleAdmin))
	{
		admin.POST("/scheduling/auto-populate", h.AutoPopulate)
		admin.POST("/scheduling/compare", h.CompareStrategies)
		admin.POST("/scheduling/generate", h.GenerateJSON)
		admin.POST("/scheduling/validate", h.ValidateInput)

		admin.POST("/schedules", h.CreateSchedule)
		admin.GET("/schedules", h.ListSchedules)
		admin.GET("/schedules/:id", h.GetSchedule)
		admin.PUT("/schedules/:id", h.RenameSchedule)
		admin.DELETE("/schedules/:id", h.DeleteSchedule)
		admin.GET("/schedules/:id/runs", h.ListRuns)
		admin.GET("/schedules/:id/export.csv", h.ExportCSV)

		admin.POST("/shifts", h.CreateShift)
		admin.GET("/shifts/report", h.ShiftReport)

		admin.POST("/admin/users", h.CreateUser)
		admin.PUT("/admin/preferences/:staffID", h.UpdateStaffPreferences)
	}

	staff := authed.Group("/")
	staff.Use(RequireRole(database.RoleStaff))
	{
		staff.POST("/shifts/:id/clock-in", h.ClockIn)
		staff.POST("/shifts/:id/clock-out", h.ClockOut)
		staff.GET("/me/roster", h.MyRoster)
		staff.GET("/me/preferences", h.MyPreferences)
		staff.PUT("/me/preferences", h.UpdateMyPreferences)
	}

	return r
}
