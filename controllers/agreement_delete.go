package controller

import (
	"log"

	"commit/models"
	"commit/utils"
	"commit/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HardDeleteAgreement builds the commit callback the UndoManager fires when
// an undo window expires or a deletion is dismissed. Signatures cascade.
func HardDeleteAgreement(db *gorm.DB, logger *log.Logger) worker.CommitFn {
	return func(agreementID uuid.UUID) error {
		if err := db.Delete(&models.Agreement{}, "id = ?", agreementID).Error; err != nil {
			captureError(err, "agreement_hard_delete", map[string]string{"agreement_id": agreementID.String()})
			return err
		}
		logger.Printf("Agreement %s permanently deleted", agreementID)
		return nil
	}
}

// DeleteAgreement stages an optimistic deletion: the agreement disappears
// from the visible list immediately but no backend delete happens until the
// undo window elapses or the deletion is dismissed.
func (ac *AgreementController) DeleteAgreement(c *fiber.Ctx) error {
	agreementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agreement ID", err)
	}

	for _, staged := range ac.Undo.PendingAgreementIDs() {
		if staged == agreementID {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Agreement not found", nil)
		}
	}

	var agreement models.Agreement
	if err := ac.DB.First(&agreement, "id = ?", agreementID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Agreement not found", nil)
	}

	// Original position in the visible newest-first list, so an undo can
	// restore it in place rather than appending
	index, err := ac.visibleIndex(agreement)
	if err != nil {
		ac.Logger.Printf("Failed to compute agreement position: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete agreement", err)
	}

	snapshot, err := ac.enrichOne(agreement)
	if err != nil {
		ac.Logger.Printf("Failed to snapshot agreement: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete agreement", err)
	}

	pd := ac.Undo.Stage(agreementID, snapshot, index)
	if pd == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Server is shutting down", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"deletion_id":    pd.ID,
		"deleted":        snapshot,
		"index":          index,
		"undo_window_ms": ac.Undo.Window().Milliseconds(),
	}))
}

// UndoDeletion restores a staged deletion. The loser of the race against the
// countdown finds the entry gone and gets a 404.
func (ac *AgreementController) UndoDeletion(c *fiber.Ctx) error {
	deletionID, err := uuid.Parse(c.Params("deletionId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deletion ID", err)
	}

	pd, ok := ac.Undo.Undo(deletionID)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deletion already completed or undone", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"restored": pd.Snapshot,
		"index":    pd.Index,
	}))
}

// DismissDeletion commits a staged deletion immediately.
func (ac *AgreementController) DismissDeletion(c *fiber.Ctx) error {
	deletionID, err := uuid.Parse(c.Params("deletionId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deletion ID", err)
	}

	_, ok, err := ac.Undo.Dismiss(deletionID)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deletion already completed or undone", nil)
	}
	if err != nil {
		ac.Logger.Printf("Failed to commit dismissed deletion %s: %v", deletionID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete agreement", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"deletion_id": deletionID}))
}

// GetPendingDeletions returns the staged deletions in creation order with
// their remaining countdown, recomputed from elapsed time.
func (ac *AgreementController) GetPendingDeletions(c *fiber.Ctx) error {
	type pendingView struct {
		DeletionID  uuid.UUID   `json:"deletion_id"`
		AgreementID uuid.UUID   `json:"agreement_id"`
		Snapshot    interface{} `json:"snapshot"`
		Index       int         `json:"index"`
		RemainingMS int64       `json:"remaining_ms"`
	}

	pending := ac.Undo.Pending()
	views := make([]pendingView, 0, len(pending))
	for _, pd := range pending {
		remaining, ok := ac.Undo.Remaining(pd.ID)
		if !ok {
			continue // resolved between the two calls
		}
		views = append(views, pendingView{
			DeletionID:  pd.ID,
			AgreementID: pd.AgreementID,
			Snapshot:    pd.Snapshot,
			Index:       pd.Index,
			RemainingMS: remaining.Milliseconds(),
		})
	}

	return c.JSON(utils.SuccessResponse(views))
}

// PermanentlyDeleteAgreement bypasses the undo window. Used by callers that
// have already confirmed the deletion out of band.
func (ac *AgreementController) PermanentlyDeleteAgreement(c *fiber.Ctx) error {
	agreementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agreement ID", err)
	}

	if err := ac.DB.Delete(&models.Agreement{}, "id = ?", agreementID).Error; err != nil {
		ac.Logger.Printf("Failed to delete agreement %s: %v", agreementID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete agreement", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"agreement_id": agreementID}))
}

// visibleIndex returns the agreement's position in the visible newest-first
// list.
func (ac *AgreementController) visibleIndex(agreement models.Agreement) (int, error) {
	query := ac.DB.Model(&models.Agreement{}).Where("created_at > ?", agreement.CreatedAt)
	if staged := ac.Undo.PendingAgreementIDs(); len(staged) > 0 {
		query = query.Where("id NOT IN ?", staged)
	}

	var newer int64
	if err := query.Count(&newer).Error; err != nil {
		return 0, err
	}
	return int(newer), nil
}

// enrichOne builds the view for a single agreement, used for deletion
// snapshots.
func (ac *AgreementController) enrichOne(agreement models.Agreement) (AgreementView, error) {
	var members []models.TeamMember
	if err := ac.DB.Order("name").Find(&members).Error; err != nil {
		return AgreementView{}, err
	}

	var signatures []models.AgreementSignature
	if err := ac.DB.Where("agreement_id = ?", agreement.ID).Find(&signatures).Error; err != nil {
		return AgreementView{}, err
	}

	views := buildAgreementViews([]models.Agreement{agreement}, signatures, members)
	return views[0], nil
}
