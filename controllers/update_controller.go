package controller

import (
	"log"
	"time"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdateController struct {
	DB          *gorm.DB
	Logger      *log.Logger
	CurrentUser CurrentUserFn
}

func NewUpdateController(db *gorm.DB, logger *log.Logger) *UpdateController {
	return &UpdateController{
		DB:          db,
		Logger:      logger,
		CurrentUser: FirstMemberID,
	}
}

// UpdateView enriches an update with author/deliverable display fields and
// reaction tallies.
type UpdateView struct {
	models.Update
	AuthorName       string         `json:"author_name"`
	DeliverableTitle string         `json:"deliverable_title,omitempty"`
	TimeAgo          string         `json:"time_ago"`
	Reactions        map[string]int `json:"reactions"`
}

func buildUpdateViews(updates []models.Update, members []models.TeamMember, deliverables []models.Deliverable, reactions []models.UpdateReaction, now time.Time) []UpdateView {
	memberNames := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}
	deliverableTitles := make(map[uuid.UUID]string, len(deliverables))
	for _, d := range deliverables {
		deliverableTitles[d.ID] = d.Title
	}
	reactionsByUpdate := make(map[uuid.UUID]map[string]int)
	for _, r := range reactions {
		if reactionsByUpdate[r.UpdateID] == nil {
			reactionsByUpdate[r.UpdateID] = make(map[string]int)
		}
		reactionsByUpdate[r.UpdateID][r.ReactionType]++
	}

	views := make([]UpdateView, 0, len(updates))
	for _, u := range updates {
		view := UpdateView{
			Update:     u,
			AuthorName: "Unknown",
			TimeAgo:    utils.FormatTimeAgo(u.CreatedAt, now),
			Reactions:  reactionsByUpdate[u.ID],
		}
		if view.Reactions == nil {
			view.Reactions = map[string]int{}
		}
		if u.AuthorID != nil {
			if name, ok := memberNames[*u.AuthorID]; ok {
				view.AuthorName = name
			}
		}
		if u.DeliverableID != nil {
			view.DeliverableTitle = deliverableTitles[*u.DeliverableID]
		}
		views = append(views, view)
	}
	return views
}

// GetUpdates returns the team feed, newest first.
func (uc *UpdateController) GetUpdates(c *fiber.Ctx) error {
	var updates []models.Update
	if err := uc.DB.Order("created_at DESC").Find(&updates).Error; err != nil {
		uc.Logger.Printf("Failed to fetch updates: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch updates", err)
	}

	var members []models.TeamMember
	if err := uc.DB.Find(&members).Error; err != nil {
		uc.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch updates", err)
	}

	var deliverables []models.Deliverable
	if err := uc.DB.Find(&deliverables).Error; err != nil {
		uc.Logger.Printf("Failed to fetch deliverables: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch updates", err)
	}

	var reactions []models.UpdateReaction
	if err := uc.DB.Find(&reactions).Error; err != nil {
		uc.Logger.Printf("Failed to fetch reactions: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch updates", err)
	}

	return c.JSON(utils.SuccessResponse(buildUpdateViews(updates, members, deliverables, reactions, time.Now())))
}

type CreateUpdateRequest struct {
	Content       string  `json:"content" validate:"required,min=1,max=5000"`
	DeliverableID *string `json:"deliverable_id" validate:"omitempty,uuid4"`
	IsHelpRequest bool    `json:"is_help_request"`
}

// CreateUpdate posts a new update to the team feed.
func (uc *UpdateController) CreateUpdate(c *fiber.Ctx) error {
	var req CreateUpdateRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	authorID, err := uc.CurrentUser(uc.DB)
	if err != nil {
		uc.Logger.Printf("Failed to resolve current user: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to post update", err)
	}

	update := models.Update{
		Content:       utils.SanitizeText(req.Content),
		AuthorID:      &authorID,
		IsHelpRequest: req.IsHelpRequest,
	}
	if req.DeliverableID != nil && *req.DeliverableID != "" {
		deliverableID, parseErr := uuid.Parse(*req.DeliverableID)
		if parseErr != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", parseErr)
		}
		var count int64
		if err := uc.DB.Model(&models.Deliverable{}).Where("id = ?", deliverableID).Count(&count).Error; err != nil {
			uc.Logger.Printf("Failed to check deliverable: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to post update", err)
		}
		if count == 0 {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", nil)
		}
		update.DeliverableID = &deliverableID
	}

	if err := uc.DB.Create(&update).Error; err != nil {
		uc.Logger.Printf("Failed to create update: %v", err)
		captureError(err, "update_create", nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to post update", err)
	}

	utils.LogEvent("update_created", map[string]interface{}{
		"update_id":       update.ID.String(),
		"is_help_request": update.IsHelpRequest,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(update))
}

type ToggleReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,oneof=thumbs_up celebrate support"`
}

// ToggleReaction adds the member's reaction of the given type, or removes it
// if it already exists.
func (uc *UpdateController) ToggleReaction(c *fiber.Ctx) error {
	updateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid update ID", err)
	}

	var req ToggleReactionRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}

	memberID, err := uc.CurrentUser(uc.DB)
	if err != nil {
		uc.Logger.Printf("Failed to resolve current user: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to toggle reaction", err)
	}

	var count int64
	if err := uc.DB.Model(&models.Update{}).Where("id = ?", updateID).Count(&count).Error; err != nil {
		uc.Logger.Printf("Failed to check update: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to toggle reaction", err)
	}
	if count == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Update not found", nil)
	}

	var existing models.UpdateReaction
	err = uc.DB.Where("update_id = ? AND member_id = ? AND reaction_type = ?", updateID, memberID, req.ReactionType).
		First(&existing).Error
	switch {
	case err == nil:
		if err := uc.DB.Delete(&existing).Error; err != nil {
			uc.Logger.Printf("Failed to remove reaction: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to toggle reaction", err)
		}
		return c.JSON(utils.SuccessResponse(fiber.Map{"reacted": false}))
	case err == gorm.ErrRecordNotFound:
		reaction := models.UpdateReaction{
			UpdateID:     updateID,
			MemberID:     memberID,
			ReactionType: req.ReactionType,
		}
		if err := uc.DB.Create(&reaction).Error; err != nil {
			// Concurrent toggle of the same reaction; the unique index wins
			if isUniqueViolation(err) {
				return c.JSON(utils.SuccessResponse(fiber.Map{"reacted": true}))
			}
			uc.Logger.Printf("Failed to create reaction: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to toggle reaction", err)
		}
		return c.JSON(utils.SuccessResponse(fiber.Map{"reacted": true}))
	default:
		uc.Logger.Printf("Failed to check reaction: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to toggle reaction", err)
	}
}
