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

type AgreementController struct {
	DB          *gorm.DB
	Logger      *log.Logger
	Undo        *worker.UndoManager
	CurrentUser CurrentUserFn
}

func NewAgreementController(db *gorm.DB, logger *log.Logger, undo *worker.UndoManager) *AgreementController {
	return &AgreementController{
		DB:          db,
		Logger:      logger,
		Undo:        undo,
		CurrentUser: FirstMemberID,
	}
}

// AgreementView is an agreement enriched with its signature count, the live
// roster size it is measured against, and the creator's display name.
type AgreementView struct {
	models.Agreement
	SignedBy     int    `json:"signed_by"`
	TotalMembers int    `json:"total_members"`
	CreatorName  string `json:"creator_name"`
}

// buildAgreementViews joins agreements against signature counts and the
// member roster. TotalMembers is the current roster size for every agreement
// regardless of when it was created; see DESIGN.md for why this is kept.
func buildAgreementViews(agreements []models.Agreement, signatures []models.AgreementSignature, members []models.TeamMember) []AgreementView {
	sigCounts := make(map[uuid.UUID]int)
	for _, sig := range signatures {
		sigCounts[sig.AgreementID]++
	}

	memberNames := make(map[uuid.UUID]string)
	for _, m := range members {
		memberNames[m.ID] = m.Name
	}

	views := make([]AgreementView, 0, len(agreements))
	for _, a := range agreements {
		creatorName := "Unknown"
		if a.CreatedBy != nil {
			if name, ok := memberNames[*a.CreatedBy]; ok {
				creatorName = name
			}
		}
		views = append(views, AgreementView{
			Agreement:    a,
			SignedBy:     sigCounts[a.ID],
			TotalMembers: len(members),
			CreatorName:  creatorName,
		})
	}
	return views
}

// GetAgreements returns the visible agreements newest first, enriched with
// signature counts. Agreements staged for deletion are excluded until their
// undo window resolves.
func (ac *AgreementController) GetAgreements(c *fiber.Ctx) error {
	var members []models.TeamMember
	if err := ac.DB.Order("name").Find(&members).Error; err != nil {
		ac.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}

	query := ac.DB.Order("created_at DESC")
	if staged := ac.Undo.PendingAgreementIDs(); len(staged) > 0 {
		query = query.Where("id NOT IN ?", staged)
	}

	var agreements []models.Agreement
	if err := query.Find(&agreements).Error; err != nil {
		ac.Logger.Printf("Failed to fetch agreements: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch agreements", err)
	}

	// All signature rows are loaded to build counts in one pass
	var signatures []models.AgreementSignature
	if err := ac.DB.Find(&signatures).Error; err != nil {
		ac.Logger.Printf("Failed to fetch signatures: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch signatures", err)
	}

	return c.JSON(utils.SuccessResponse(buildAgreementViews(agreements, signatures, members)))
}
