package controller

import (
	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AddDependencyRequest struct {
	DependsOnID string `json:"depends_on_id" validate:"required,uuid4"`
}

// wouldCreateCycle walks the dependency graph to see whether the proposed
// edge deliverableID→dependsOnID closes a cycle, i.e. whether deliverableID
// is already reachable from dependsOnID.
func wouldCreateCycle(edges []models.DeliverableDependency, deliverableID, dependsOnID uuid.UUID) bool {
	adjacency := make(map[uuid.UUID][]uuid.UUID)
	for _, edge := range edges {
		adjacency[edge.DeliverableID] = append(adjacency[edge.DeliverableID], edge.DependsOnID)
	}

	visited := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{dependsOnID}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == deliverableID {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		stack = append(stack, adjacency[node]...)
	}
	return false
}

// AddDependency inserts a directed "depends on" edge. Self-edges are rejected
// before any database work; cycles are rejected by the reachability walk
// here, with the database trigger as the authoritative backstop.
func (dc *DeliverableController) AddDependency(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", err)
	}

	var input AddDependencyRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	dependsOnID, err := uuid.Parse(input.DependsOnID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid dependency ID", err)
	}

	if deliverableID == dependsOnID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A deliverable cannot depend on itself", nil)
	}

	// Both endpoints must exist before an edge can join them
	var known []models.Deliverable
	if err := dc.DB.Select("id").Where("id IN ?", []uuid.UUID{deliverableID, dependsOnID}).Find(&known).Error; err != nil {
		dc.Logger.Printf("Failed to look up deliverables: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add dependency", err)
	}
	found := make(map[uuid.UUID]bool, len(known))
	for _, d := range known {
		found[d.ID] = true
	}
	if !found[deliverableID] {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", nil)
	}
	if !found[dependsOnID] {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Dependency deliverable not found", nil)
	}

	var edges []models.DeliverableDependency
	if err := dc.DB.Find(&edges).Error; err != nil {
		dc.Logger.Printf("Failed to fetch dependency edges: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add dependency", err)
	}
	if wouldCreateCycle(edges, deliverableID, dependsOnID) {
		return utils.ErrorResponse(c, fiber.StatusConflict, "This would create a circular dependency", nil)
	}

	edge := models.DeliverableDependency{
		DeliverableID: deliverableID,
		DependsOnID:   dependsOnID,
	}
	if err := dc.DB.Create(&edge).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "This dependency already exists", nil)
		}
		if isCycleRejection(err) {
			// The trigger caught a cycle the stale in-memory walk missed
			return utils.ErrorResponse(c, fiber.StatusConflict, "This would create a circular dependency", nil)
		}
		dc.Logger.Printf("Failed to insert dependency edge: %v", err)
		captureError(err, "dependency_add", map[string]string{"deliverable_id": deliverableID.String()})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add dependency", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(edge))
}

// RemoveDependency deletes the single matching edge.
func (dc *DeliverableController) RemoveDependency(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deliverable ID", err)
	}
	dependsOnID, err := uuid.Parse(c.Params("dependsOnId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid dependency ID", err)
	}

	result := dc.DB.Where("deliverable_id = ? AND depends_on_id = ?", deliverableID, dependsOnID).
		Delete(&models.DeliverableDependency{})
	if result.Error != nil {
		dc.Logger.Printf("Failed to remove dependency: %v", result.Error)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove dependency", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Dependency not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"deliverable_id": deliverableID,
		"depends_on_id":  dependsOnID,
	}))
}
