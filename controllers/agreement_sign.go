package controller

import (
	"time"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignatureDisplay is one roster entry for an agreement's signature panel.
// The list always has one entry per team member; unsigned members appear
// with Signed=false.
type SignatureDisplay struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Signed    bool      `json:"signed"`
	Timestamp *string   `json:"timestamp"`
	MemberID  uuid.UUID `json:"member_id"`
}

func buildSignatureRoster(members []models.TeamMember, signatures []models.AgreementSignature, now time.Time) []SignatureDisplay {
	byMember := make(map[uuid.UUID]models.AgreementSignature)
	for _, sig := range signatures {
		byMember[sig.MemberID] = sig
	}

	roster := make([]SignatureDisplay, 0, len(members))
	for _, member := range members {
		entry := SignatureDisplay{
			ID:       member.ID,
			Name:     member.Name,
			MemberID: member.ID,
		}
		if sig, ok := byMember[member.ID]; ok {
			entry.ID = sig.ID
			entry.Signed = true
			entry.Timestamp = utils.Pointer(utils.FormatTimeAgo(sig.SignedAt, now))
		}
		roster = append(roster, entry)
	}
	return roster
}

// agreementActivated reports whether a signature count covers the roster. An
// empty roster never activates an agreement.
func agreementActivated(signedCount, totalMembers int64) bool {
	return totalMembers > 0 && signedCount >= totalMembers
}

// SignAgreement records the current user's signature. The existence check is
// advisory; the unique index on (agreement_id, member_id) is the real guard
// against concurrent duplicate signs. When the signature count reaches the
// roster size the agreement is activated; that secondary status write is
// best-effort and its failure does not fail the sign.
func (ac *AgreementController) SignAgreement(c *fiber.Ctx) error {
	agreementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agreement ID", err)
	}

	currentUserID, err := ac.CurrentUser(ac.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusPreconditionFailed, "No user logged in", err)
	}

	var agreement models.Agreement
	if err := ac.DB.First(&agreement, "id = ?", agreementID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Agreement not found", nil)
	}

	// Advisory pre-check; must run before the insert
	var existing int64
	if err := ac.DB.Model(&models.AgreementSignature{}).
		Where("agreement_id = ? AND member_id = ?", agreementID, currentUserID).
		Count(&existing).Error; err != nil {
		ac.Logger.Printf("Failed to check signature status: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check signature status", err)
	}
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "You have already signed this agreement", nil)
	}

	signature := models.AgreementSignature{
		AgreementID: agreementID,
		MemberID:    currentUserID,
	}
	if err := ac.DB.Create(&signature).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "You have already signed this agreement", nil)
		}
		ac.Logger.Printf("Failed to insert signature: %v", err)
		captureError(err, "agreement_sign", map[string]string{"agreement_id": agreementID.String()})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to sign agreement", err)
	}

	var signedCount int64
	if err := ac.DB.Model(&models.AgreementSignature{}).
		Where("agreement_id = ?", agreementID).
		Count(&signedCount).Error; err != nil {
		ac.Logger.Printf("Failed to count signatures for %s: %v", agreementID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Signature saved but its status could not be confirmed", err)
	}

	var totalMembers int64
	if err := ac.DB.Model(&models.TeamMember{}).Count(&totalMembers).Error; err != nil {
		ac.Logger.Printf("Failed to count team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Signature saved but its status could not be confirmed", err)
	}

	status := agreement.Status
	if agreementActivated(signedCount, totalMembers) {
		if err := ac.DB.Model(&models.Agreement{}).
			Where("id = ?", agreementID).
			Update("status", models.AgreementStatusActive).Error; err != nil {
			// The signature exists; only the status flag lags
			ac.Logger.Printf("Failed to update agreement status: %v", err)
		} else {
			status = models.AgreementStatusActive
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"agreement_id":  agreementID,
		"signed_by":     signedCount,
		"total_members": totalMembers,
		"status":        status,
	}))
}

// GetSignatures returns the full member roster joined against this
// agreement's signatures.
func (ac *AgreementController) GetSignatures(c *fiber.Ctx) error {
	agreementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agreement ID", err)
	}

	var members []models.TeamMember
	if err := ac.DB.Order("name").Find(&members).Error; err != nil {
		ac.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}

	var signatures []models.AgreementSignature
	if err := ac.DB.Where("agreement_id = ?", agreementID).Find(&signatures).Error; err != nil {
		ac.Logger.Printf("Failed to fetch signatures: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch signatures", err)
	}

	return c.JSON(utils.SuccessResponse(buildSignatureRoster(members, signatures, time.Now())))
}

// HasUserSigned reports whether the current user has signed the agreement.
func (ac *AgreementController) HasUserSigned(c *fiber.Ctx) error {
	agreementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid agreement ID", err)
	}

	currentUserID, err := ac.CurrentUser(ac.DB)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(utils.SuccessResponse(fiber.Map{"signed": false}))
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve current user", err)
	}

	var count int64
	if err := ac.DB.Model(&models.AgreementSignature{}).
		Where("agreement_id = ? AND member_id = ?", agreementID, currentUserID).
		Count(&count).Error; err != nil {
		ac.Logger.Printf("Failed to check signature status: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check signature status", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"signed": count > 0}))
}
