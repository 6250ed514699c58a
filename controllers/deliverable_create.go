package controller

import (
	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateDeliverableRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	OwnerID       *string  `json:"owner_id" validate:"omitempty,uuid4"`
	Deadline      *string  `json:"deadline" validate:"omitempty,dateonly"`
	DependencyIDs []string `json:"dependency_ids" validate:"omitempty,dive,uuid4"`
}

// parseUUIDs parses a batch of string ids, failing on the first invalid one.
func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// attachDependencies runs the edge-batch insert; on failure it removes the
// just-created deliverable so no half-created row is left behind. The
// returned err is the edge failure and rollbackErr reports whether the
// compensating delete itself also failed. The operation has failed whenever
// err is non-nil, regardless of the rollback's outcome.
func attachDependencies(insertEdges, removeDeliverable func() error) (err, rollbackErr error) {
	if err = insertEdges(); err == nil {
		return nil, nil
	}
	return err, removeDeliverable()
}

// CreateDeliverable inserts a deliverable and its requested dependency edges.
// There is no multi-statement transaction across the two inserts by design:
// if the edge batch fails, the deliverable is removed again with a
// compensating delete, and the operation reports failure either way.
func (dc *DeliverableController) CreateDeliverable(c *fiber.Ctx) error {
	var input CreateDeliverableRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	// Everything parseable must be parsed before the first insert; a bad id
	// discovered after the deliverable row exists would need compensation
	dependencyIDs, err := parseUUIDs(input.DependencyIDs)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid dependency ID", err)
	}

	deliverable := models.Deliverable{
		Title:       utils.SanitizeText(input.Title),
		Description: utils.SanitizeText(input.Description),
		Progress:    0,
		Status:      models.DeliverableStatusUpcoming,
	}
	if input.OwnerID != nil {
		ownerID, err := uuid.Parse(*input.OwnerID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid owner ID", err)
		}
		deliverable.OwnerID = &ownerID
	}
	if input.Deadline != nil {
		deadline, err := utils.ParseDateOnly(*input.Deadline)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Deadline must be in YYYY-MM-DD format", err)
		}
		deliverable.Deadline = &deadline
	}

	if err := dc.DB.Create(&deliverable).Error; err != nil {
		dc.Logger.Printf("Failed to create deliverable: %v", err)
		captureError(err, "deliverable_create", nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create deliverable", err)
	}

	if len(dependencyIDs) > 0 {
		edges := make([]models.DeliverableDependency, 0, len(dependencyIDs))
		for _, depID := range dependencyIDs {
			edges = append(edges, models.DeliverableDependency{
				DeliverableID: deliverable.ID,
				DependsOnID:   depID,
			})
		}

		edgeErr, rollbackErr := attachDependencies(
			func() error { return dc.DB.Create(&edges).Error },
			func() error { return dc.DB.Delete(&models.Deliverable{}, "id = ?", deliverable.ID).Error },
		)
		if edgeErr != nil {
			dc.Logger.Printf("Failed to insert dependencies: %v", edgeErr)
			if rollbackErr != nil {
				// The deliverable row is left behind; the operation still
				// reports failure
				dc.Logger.Printf("Failed to roll back deliverable after dependency failure: %v", rollbackErr)
				captureError(rollbackErr, "deliverable_create_rollback", map[string]string{"deliverable_id": deliverable.ID.String()})
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError,
				"Deliverable could not be saved because adding its dependencies failed. Please try again.", nil)
		}
	}

	var members []models.TeamMember
	if err := dc.DB.Order("name").Find(&members).Error; err != nil {
		dc.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}

	memberNames := make(map[uuid.UUID]string)
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}

	view := DeliverableView{
		Deliverable:   deliverable,
		OwnerName:     ownerDisplayName(deliverable.OwnerID, memberNames),
		DependencyIDs: dependencyIDs,
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(view))
}
