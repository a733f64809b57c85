package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/in"
)

type BookingController struct {
	useCase in.BookingUseCase
	cfg     *config.Config
}

func NewBookingController(useCase in.BookingUseCase, cfg *config.Config) *BookingController {
	return &BookingController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *BookingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/bootstrap", c.bootstrap)
		api.GET("/availability", c.availability)
		api.GET("/config", c.siteConfig)

		api.POST("/drafts", c.startDraft)
		api.GET("/drafts/:draftId", c.getDraft)
		api.PUT("/drafts/:draftId/day", c.chooseDay)
		api.PUT("/drafts/:draftId/slot", c.chooseSlot)
		api.PUT("/drafts/:draftId/contact", c.enterContact)
		api.POST("/drafts/:draftId/confirm", c.confirm)
	}
}

type ChooseDayRequest struct {
	Date string `json:"date" binding:"required"`
}

type ChooseSlotRequest struct {
	Slot     *int   `json:"slot" binding:"required"`
	Meridiem string `json:"meridiem" binding:"required,oneof=AM PM"`
}

func (c *BookingController) bootstrap(ctx *gin.Context) {
	schedule, siteCfg, err := c.useCase.Bootstrap(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"config":       siteCfg,
		"availability": availabilityView(schedule),
	})
}

func (c *BookingController) availability(ctx *gin.Context) {
	schedule, err := c.useCase.Availability(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, availabilityView(schedule))
}

func (c *BookingController) siteConfig(ctx *gin.Context) {
	siteCfg, err := c.useCase.SiteConfig(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, siteCfg)
}

func (c *BookingController) startDraft(ctx *gin.Context) {
	draft := c.useCase.StartDraft(ctx.Request.Context())
	ctx.JSON(http.StatusCreated, draftView(draft))
}

func (c *BookingController) getDraft(ctx *gin.Context) {
	draftID, ok := parseDraftID(ctx)
	if !ok {
		return
	}

	draft, err := c.useCase.Draft(ctx.Request.Context(), draftID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, draftView(draft))
}

func (c *BookingController) chooseDay(ctx *gin.Context) {
	draftID, ok := parseDraftID(ctx)
	if !ok {
		return
	}

	var req ChooseDayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := json_types.ParseCalendarDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	draft, err := c.useCase.ChooseDay(ctx.Request.Context(), draftID, day)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, draftView(draft))
}

func (c *BookingController) chooseSlot(ctx *gin.Context) {
	draftID, ok := parseDraftID(ctx)
	if !ok {
		return
	}

	var req ChooseSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := c.useCase.ChooseSlot(
		ctx.Request.Context(),
		draftID,
		domain.SlotIndex(*req.Slot),
		domain.Meridiem(req.Meridiem),
	)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, draftView(draft))
}

func (c *BookingController) enterContact(ctx *gin.Context) {
	draftID, ok := parseDraftID(ctx)
	if !ok {
		return
	}

	var contact domain.ContactInfo
	if err := ctx.ShouldBindJSON(&contact); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := c.useCase.EnterContact(ctx.Request.Context(), draftID, contact)
	if isValidationError(err) {
		// Validation problems travel with the draft so the client can show
		// inline per-field messaging.
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"draft": draftView(draft),
		})
		return
	}
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, draftView(draft))
}

func (c *BookingController) confirm(ctx *gin.Context) {
	draftID, ok := parseDraftID(ctx)
	if !ok {
		return
	}

	record, err := c.useCase.Confirm(ctx.Request.Context(), draftID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"booking": record,
		"details": domain.ConfirmationDetails(*record),
	})
}

func parseDraftID(ctx *gin.Context) (uuid.UUID, bool) {
	draftID, err := uuid.Parse(ctx.Param("draftId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID format"})
		return uuid.UUID{}, false
	}
	return draftID, true
}

func draftView(draft *domain.DraftBooking) gin.H {
	view := gin.H{
		"id":         draft.ID,
		"state":      draft.State,
		"meridiem":   draft.Meridiem,
		"contact":    draft.Contact,
		"emailValid": draft.EmailValid,
		"phoneValid": draft.PhoneValid,
		"sentence":   domain.ConfirmationSentence(draft),
	}
	if draft.Date != nil {
		view["date"] = draft.Date.String()
	}
	if draft.Slot != nil {
		view["slot"] = int(*draft.Slot)
	}
	if draft.State == domain.StateConfirming {
		if record, err := domain.AssembleBooking(draft); err == nil {
			view["details"] = domain.ConfirmationDetails(record)
		}
	}
	return view
}

func availabilityView(schedule domain.Schedule) gin.H {
	days := make(map[string]gin.H, len(schedule.Days))
	for date, entry := range schedule.Days {
		days[date.String()] = gin.H{
			"selectable":  schedule.DaySelectable(date),
			"fullyBooked": entry.FullyBooked,
			"slots":       entry.Slots,
		}
	}

	slots := make([]gin.H, 0, domain.SlotsPerDay)
	for _, slot := range domain.AllSlots() {
		slots = append(slots, gin.H{
			"index":    int(slot),
			"start":    slot.StartClock(),
			"end":      slot.EndClock(),
			"meridiem": slot.Meridiem(),
			"label":    slot.Label(),
		})
	}

	return gin.H{
		"today": schedule.Today.String(),
		"days":  days,
		"slots": slots,
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrIncompleteFields) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrInvalidPhone)
}

func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isValidationError(err):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDayUnavailable),
		errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrWizardState):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFetchFailed),
		errors.Is(err, domain.ErrSubmitFailed),
		errors.Is(err, domain.ErrDeleteFailed):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
