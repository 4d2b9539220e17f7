package ginserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/Apolo151/tourist-village-app-sub004/internal/app/dto"
	bookingapp "github.com/Apolo151/tourist-village-app-sub004/internal/app/services/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/shared/daterange"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/user"
	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/village"
)

type BookingHandler struct {
	Service   *bookingapp.Service
	Engine    *bookingapp.OccupancyEngine
	Assembler dto.Assembler
}

type createBookingRequest struct {
	ApartmentID    int64  `json:"apartment_id"`
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	UserType       string `json:"user_type"`
	NumberOfPeople int    `json:"number_of_people"`
	ArrivalDate    string `json:"arrival_date"`
	LeavingDate    string `json:"leaving_date"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
	PersonName     string `json:"person_name"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := bookingapp.CreateParams{
		ApartmentID:    apartment.ID(req.ApartmentID),
		UserID:         user.ID(req.UserID),
		UserName:       req.UserName,
		UserType:       req.UserType,
		NumberOfPeople: req.NumberOfPeople,
		ArrivalDate:    req.ArrivalDate,
		LeavingDate:    req.LeavingDate,
		Status:         req.Status,
		Notes:          req.Notes,
		PersonName:     req.PersonName,
	}
	created, err := h.Service.Create(c.Request.Context(), params, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Assembler.Booking(c.Request.Context(), created))
}

type updateBookingRequest struct {
	ApartmentID    *int64  `json:"apartment_id"`
	UserID         *int64  `json:"user_id"`
	UserType       *string `json:"user_type"`
	NumberOfPeople *int    `json:"number_of_people"`
	ArrivalDate    *string `json:"arrival_date"`
	LeavingDate    *string `json:"leaving_date"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
	PersonName     *string `json:"person_name"`
}

func (h BookingHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := bookingapp.UpdateParams{
		UserType:       req.UserType,
		NumberOfPeople: req.NumberOfPeople,
		ArrivalDate:    req.ArrivalDate,
		LeavingDate:    req.LeavingDate,
		Status:         req.Status,
		Notes:          req.Notes,
		PersonName:     req.PersonName,
	}
	if req.ApartmentID != nil {
		aid := apartment.ID(*req.ApartmentID)
		params.ApartmentID = &aid
	}
	if req.UserID != nil {
		uid := user.ID(*req.UserID)
		params.UserID = &uid
	}
	updated, err := h.Service.Update(c.Request.Context(), domainbooking.ID(id), params, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Assembler.Booking(c.Request.Context(), updated))
}

func (h BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.Service.GetByID(c.Request.Context(), domainbooking.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Assembler.Booking(c.Request.Context(), b))
}

func (h BookingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainbooking.ID(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts := bookingapp.ListOptions{
		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.Query("sort_order"), "desc"),
	}
	if raw := c.Query("page"); raw != "" {
		if opts.Page, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if opts.Limit, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
	}
	result, err := h.Service.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookingPage{
		Bookings:   h.Assembler.Bookings(c.Request.Context(), result.Bookings),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

func (h BookingHandler) Export(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.Service.Export(c.Request.Context(), filter,
		c.Query("sort_by"), strings.EqualFold(c.Query("sort_order"), "desc"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": h.Assembler.Bookings(c.Request.Context(), items),
		"total":    len(items),
	})
}

func (h BookingHandler) Stats(c *gin.Context) {
	stats, err := h.Engine.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapStats(stats))
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.Service.CheckIn)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.Service.CheckOut)
}

func (h BookingHandler) transition(c *gin.Context, op func(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := op(c.Request.Context(), domainbooking.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Assembler.Booking(c.Request.Context(), b))
}

func (h BookingHandler) ByApartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.Service.GetByApartment(c.Request.Context(), apartment.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": h.Assembler.Bookings(c.Request.Context(), items)})
}

func (h BookingHandler) ByUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.Service.GetByUser(c.Request.Context(), user.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": h.Assembler.Bookings(c.Request.Context(), items)})
}

func (h BookingHandler) CurrentForApartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.Service.GetCurrentForApartment(c.Request.Context(), apartment.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Assembler.Booking(c.Request.Context(), b))
}

// actorID identifies the staff member performing the write. Zero when the
// header is absent or malformed; audit columns then record an anonymous actor.
func actorID(c *gin.Context) user.ID {
	raw := strings.TrimSpace(c.GetHeader("X-Actor-ID"))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return user.ID(id)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func parseFilter(c *gin.Context) (domainbooking.Filter, error) {
	var f domainbooking.Filter
	var err error
	if raw := c.Query("apartment_id"); raw != "" {
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return f, convErr
		}
		f.ApartmentID = apartment.ID(id)
	}
	if raw := c.Query("user_id"); raw != "" {
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return f, convErr
		}
		f.UserID = user.ID(id)
	}
	if raw := c.Query("village_id"); raw != "" {
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return f, convErr
		}
		f.VillageID = village.ID(id)
	}
	// A village scope header restricts admins to their assigned village. It
	// is combined with the query filter, never overridden by it.
	if raw := strings.TrimSpace(c.GetHeader("X-Village-Scope")); raw != "" {
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return f, convErr
		}
		if f.VillageID != 0 && f.VillageID != village.ID(id) {
			// Out-of-scope request matches nothing.
			f.VillageID = -1
		} else {
			f.VillageID = village.ID(id)
		}
	}
	if raw := c.Query("phase"); raw != "" {
		if f.Phase, err = strconv.Atoi(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("user_type"); raw != "" {
		if f.UserType, err = domainbooking.ParseUserType(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("status"); raw != "" {
		if f.Status, err = domainbooking.ParseStatus(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("arrival_from"); raw != "" {
		if f.ArrivalFrom, err = daterange.ParseDate(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("arrival_to"); raw != "" {
		if f.ArrivalTo, err = daterange.ParseDate(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("leaving_from"); raw != "" {
		if f.LeavingFrom, err = daterange.ParseDate(raw); err != nil {
			return f, err
		}
	}
	if raw := c.Query("leaving_to"); raw != "" {
		if f.LeavingTo, err = daterange.ParseDate(raw); err != nil {
			return f, err
		}
	}
	f.Search = c.Query("search")
	return f, nil
}

var _ BookingHTTP = BookingHandler{}
