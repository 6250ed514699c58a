package controller

import (
	"log"

	"commit/models"
	"commit/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrentUserFn resolves the acting member for a request. There is no
// authentication yet; swap the resolver for a session-derived one without
// touching the controllers.
type CurrentUserFn func(db *gorm.DB) (uuid.UUID, error)

// FirstMemberID is the placeholder resolver: the earliest-created team
// member acts as the current user. BLOCKER: replace with real
// authentication before any multi-user deployment.
func FirstMemberID(db *gorm.DB) (uuid.UUID, error) {
	var member models.TeamMember
	if err := db.Order("created_at ASC").First(&member).Error; err != nil {
		return uuid.Nil, err
	}
	return member.ID, nil
}

type MemberController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMemberController(db *gorm.DB, logger *log.Logger) *MemberController {
	return &MemberController{
		DB:     db,
		Logger: logger,
	}
}

// GetMembers returns the full roster ordered by name.
func (mc *MemberController) GetMembers(c *fiber.Ctx) error {
	var members []models.TeamMember
	if err := mc.DB.Order("name").Find(&members).Error; err != nil {
		mc.Logger.Printf("Failed to fetch team members: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team members", err)
	}
	return c.JSON(utils.SuccessResponse(members))
}

type CreateMemberRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,max=254,memberemail"`
	Role      string `json:"role" validate:"omitempty,oneof=lead member"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=2048"`
}

// CreateMember adds a member to the roster.
func (mc *MemberController) CreateMember(c *fiber.Ctx) error {
	var input CreateMemberRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	role := input.Role
	if role == "" {
		role = "member"
	}

	member := models.TeamMember{
		Name:      utils.SanitizeText(input.Name),
		Email:     input.Email,
		Role:      role,
		AvatarURL: input.AvatarURL,
	}
	if err := mc.DB.Create(&member).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "A member with this email already exists", nil)
		}
		mc.Logger.Printf("Failed to create member: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}
