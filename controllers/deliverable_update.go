package controller

import (
	"time"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UpdateDeliverableRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	OwnerID     *string `json:"owner_id" validate:"omitempty,uuid4"`
	Deadline    *string `json:"deadline" validate:"omitempty,dateonly"`
	Progress    *int    `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Status      *string `json:"status" validate:"omitempty,oneof=upcoming in-progress at-risk completed"`
}

// UpdateDeliverable applies a partial field update. Setting status here
// directly bypasses the progress/status consistency rule; UpdateProgress is
// the path that keeps them in sync.
func (dc *DeliverableController) UpdateDeliverable(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", err)
	}

	var input UpdateDeliverableRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var deliverable models.Deliverable
	if err := dc.DB.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", nil)
	}

	updates := make(map[string]interface{})
	if input.Title != nil {
		updates["title"] = utils.SanitizeText(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = utils.SanitizeText(*input.Description)
	}
	if input.OwnerID != nil {
		if *input.OwnerID == "" {
			updates["owner_id"] = nil
		} else {
			ownerID, err := uuid.Parse(*input.OwnerID)
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid owner ID", err)
			}
			updates["owner_id"] = ownerID
		}
	}
	if input.Deadline != nil {
		if *input.Deadline == "" {
			updates["deadline"] = nil
		} else {
			deadline, err := utils.ParseDateOnly(*input.Deadline)
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Deadline must be in YYYY-MM-DD format", err)
			}
			updates["deadline"] = deadline
		}
	}
	if input.Progress != nil {
		updates["progress"] = *input.Progress
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", nil)
	}

	if err := dc.DB.Model(&deliverable).Updates(updates).Error; err != nil {
		dc.Logger.Printf("Failed to update deliverable %s: %v", deliverableID, err)
		captureError(err, "deliverable_update", map[string]string{"deliverable_id": deliverableID.String()})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update deliverable", err)
	}

	return dc.respondWithView(c, deliverable.ID)
}

type UpdateProgressRequest struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// UpdateProgress sets progress and derives the matching status from the
// deadline. This is the only mutation path that keeps progress and status
// consistent.
func (dc *DeliverableController) UpdateProgress(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", err)
	}

	var input UpdateProgressRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var deliverable models.Deliverable
	if err := dc.DB.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", nil)
	}

	status := models.DeriveStatus(input.Progress, deliverable.Deadline, time.Now())
	if err := dc.DB.Model(&deliverable).Updates(map[string]interface{}{
		"progress": input.Progress,
		"status":   status,
	}).Error; err != nil {
		dc.Logger.Printf("Failed to update progress for %s: %v", deliverableID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update deliverable", err)
	}

	return dc.respondWithView(c, deliverable.ID)
}

// respondWithView re-reads a deliverable and returns its enriched view.
func (dc *DeliverableController) respondWithView(c *fiber.Ctx, deliverableID uuid.UUID) error {
	var deliverable models.Deliverable
	if err := dc.DB.First(&deliverable, "id = ?", deliverableID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload deliverable", err)
	}

	var members []models.TeamMember
	if err := dc.DB.Order("name").Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}

	var edges []models.DeliverableDependency
	if err := dc.DB.Where("deliverable_id = ?", deliverableID).Find(&edges).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch dependencies", err)
	}

	views := buildDeliverableViews([]models.Deliverable{deliverable}, edges, members)
	return c.JSON(utils.SuccessResponse(views[0]))
}

// DeleteDeliverable hard-deletes immediately. Unlike agreements there is no
// undo window here; dependency edges cascade.
func (dc *DeliverableController) DeleteDeliverable(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", err)
	}

	result := dc.DB.Delete(&models.Deliverable{}, "id = ?", deliverableID)
	if result.Error != nil {
		dc.Logger.Printf("Failed to delete deliverable %s: %v", deliverableID, result.Error)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete deliverable", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deliverable_id": deliverableID}))
}
