package controller

import (
	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateAgreementRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// CreateAgreement inserts a new agreement with status pending, created by the
// current user.
func (ac *AgreementController) CreateAgreement(c *fiber.Ctx) error {
	var input CreateAgreementRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	currentUserID, err := ac.CurrentUser(ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusPreconditionFailed, "No team members exist yet", err)
	}

	agreement := models.Agreement{
		Title:       utils.SanitizeText(input.Title),
		Description: utils.SanitizeText(input.Description),
		Status:      models.AgreementStatusPending,
		CreatedBy:   &currentUserID,
	}
	if err := ac.DB.Create(&agreement).Error; err != nil {
		ac.Logger.Printf("Failed to create agreement: %v", err)
		captureError(err, "agreement_create", nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create agreement", err)
	}

	var totalMembers int64
	ac.DB.Model(&models.TeamMember{}).Count(&totalMembers)

	var creator models.TeamMember
	creatorName := "You"
	if err := ac.DB.First(&creator, "id = ?", currentUserID).Error; err == nil {
		creatorName = creator.Name
	}

	view := AgreementView{
		Agreement:    agreement,
		SignedBy:     0,
		TotalMembers: int(totalMembers),
		CreatorName:  creatorName,
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(view))
}
