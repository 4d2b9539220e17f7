package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"github.com/Apolo151/tourist-village-app-sub004/internal/app/dto"
	bookingapp "github.com/Apolo151/tourist-village-app-sub004/internal/app/services/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

type OccupancyHandler struct {
	Engine *bookingapp.OccupancyEngine
}

func (h OccupancyHandler) Rate(c *gin.Context) {
	start, err := daterange.ParseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be a valid date"})
		return
	}
	end, err := daterange.ParseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be a valid date"})
		return
	}
	villageID, ok := villageScope(c)
	if !ok {
		return
	}
	report, err := h.Engine.Rate(c.Request.Context(), start, end, villageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOccupancyReport(report))
}

func (h OccupancyHandler) Current(c *gin.Context) {
	villageID, ok := villageScope(c)
	if !ok {
		return
	}
	count, err := h.Engine.CurrentlyOccupiedCount(c.Request.Context(), villageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupied_apartments": count})
}

func villageScope(c *gin.Context) (village.ID, bool) {
	raw := c.Query("village_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "village_id must be a positive integer"})
		return 0, false
	}
	return village.ID(id), true
}

var _ OccupancyHTTP = OccupancyHandler{}
