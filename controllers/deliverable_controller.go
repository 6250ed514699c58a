package controller

import (
	"log"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliverableController struct {
	DB          *gorm.DB
	Logger      *log.Logger
	CurrentUser CurrentUserFn
}

func NewDeliverableController(db *gorm.DB, logger *log.Logger) *DeliverableController {
	return &DeliverableController{
		DB:          db,
		Logger:      logger,
		CurrentUser: FirstMemberID,
	}
}

// DeliverableView is a deliverable enriched with its owner's display name
// and the ids of the deliverables it depends on.
type DeliverableView struct {
	models.Deliverable
	OwnerName     string      `json:"owner_name"`
	DependencyIDs []uuid.UUID `json:"dependency_ids"`
}

// buildDeliverableViews groups dependency edges into adjacency lists and
// joins owners against the member roster. Owner ids that do not resolve
// display as "Unknown"; a nil owner displays as "Unassigned".
func buildDeliverableViews(deliverables []models.Deliverable, edges []models.DeliverableDependency, members []models.TeamMember) []DeliverableView {
	depsByDeliverable := make(map[uuid.UUID][]uuid.UUID)
	for _, edge := range edges {
		depsByDeliverable[edge.DeliverableID] = append(depsByDeliverable[edge.DeliverableID], edge.DependsOnID)
	}

	memberNames := make(map[uuid.UUID]string)
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}

	views := make([]DeliverableView, 0, len(deliverables))
	for _, d := range deliverables {
		view := DeliverableView{
			Deliverable:   d,
			OwnerName:     ownerDisplayName(d.OwnerID, memberNames),
			DependencyIDs: depsByDeliverable[d.ID],
		}
		if view.DependencyIDs == nil {
			view.DependencyIDs = []uuid.UUID{}
		}
		views = append(views, view)
	}
	return views
}

func ownerDisplayName(ownerID *uuid.UUID, memberNames map[uuid.UUID]string) string {
	if ownerID == nil {
		return "Unassigned"
	}
	if name, ok := memberNames[*ownerID]; ok {
		return name
	}
	return "Unknown"
}

// GetDeliverables returns all deliverables enriched with owner names and
// dependency lists, newest first.
func (dc *DeliverableController) GetDeliverables(c *fiber.Ctx) error {
	var members []models.TeamMember
	if err := dc.DB.Order("name").Find(&members).Error; err != nil {
		dc.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}

	var deliverables []models.Deliverable
	if err := dc.DB.Order("created_at DESC").Find(&deliverables).Error; err != nil {
		dc.Logger.Printf("Failed to fetch deliverables: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch deliverables", err)
	}

	var edges []models.DeliverableDependency
	if err := dc.DB.Find(&edges).Error; err != nil {
		dc.Logger.Printf("Failed to fetch dependencies: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch dependencies", err)
	}

	return c.JSON(utils.SuccessResponse(buildDeliverableViews(deliverables, edges, members)))
}
