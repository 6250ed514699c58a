package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"commit/config"
	"commit/models"
	"commit/utils"
)

// Seeds the database with a realistic demo team: members, agreements with
// partial signature coverage, deliverables with dependencies, and a few weeks
// of update activity. Wipes existing data first.
func main() {
	logger := log.New(os.Stdout, "SEED: ", log.LstdFlags)

	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Now()

	// Clear existing data, children first
	tables := []interface{}{
		&models.UpdateReaction{},
		&models.Update{},
		&models.DeliverableDependency{},
		&models.Deliverable{},
		&models.AgreementSignature{},
		&models.Agreement{},
		&models.TeamMember{},
	}
	for _, table := range tables {
		if err := config.DB.Where("1 = 1").Delete(table).Error; err != nil {
			logger.Fatalf("Failed to clear table %T: %v", table, err)
		}
	}
	logger.Println("Cleared existing data")

	// Team members
	memberSeeds := []struct {
		Name, Email, Role string
	}{
		{"Kai Tanaka", "kai@example.com", "lead"},
		{"Priya Sharma", "priya@example.com", "member"},
		{"Marcus Webb", "marcus@example.com", "member"},
		{"Elena Petrova", "elena@example.com", "member"},
		{"Jordan Lee", "jordan@example.com", "member"},
		{"Amara Okafor", "amara@example.com", "member"},
		{"Tom Eriksen", "tom@example.com", "member"},
		{"Sofia Reyes", "sofia@example.com", "member"},
	}
	members := make([]models.TeamMember, 0, len(memberSeeds))
	for _, seed := range memberSeeds {
		member := models.TeamMember{
			Name:  seed.Name,
			Email: seed.Email,
			Role:  seed.Role,
		}
		if err := config.DB.Create(&member).Error; err != nil {
			logger.Fatalf("Failed to create member %s: %v", seed.Name, err)
		}
		members = append(members, member)
	}
	logger.Printf("Created %d team members", len(members))

	// Agreements. Active ones get denser signature coverage than pending ones.
	agreementSeeds := []struct {
		Title, Description, Status string
		SignRate                   float64
	}{
		{"Code review within 24 hours", "Every pull request gets a first review within one working day.", models.AgreementStatusActive, 1.0},
		{"No meetings on Wednesdays", "Wednesdays are reserved for focused work.", models.AgreementStatusActive, 1.0},
		{"Standups async by 10am", "Post your standup update in the feed before 10am instead of a call.", models.AgreementStatusPending, 0.6},
		{"Flag blockers within a day", "If you are blocked for more than a day, raise a help request.", models.AgreementStatusPending, 0.4},
		{"Definition of done includes tests", "A deliverable is not complete without tests covering its behavior.", models.AgreementStatusArchived, 0.9},
	}
	agreementCount := 0
	signatureCount := 0
	for i, seed := range agreementSeeds {
		creator := members[i%len(members)].ID
		agreement := models.Agreement{
			Title:       seed.Title,
			Description: seed.Description,
			Status:      seed.Status,
			CreatedBy:   &creator,
			CreatedAt:   now.AddDate(0, 0, -rng.Intn(70)-7),
		}
		if err := config.DB.Create(&agreement).Error; err != nil {
			logger.Fatalf("Failed to create agreement %q: %v", seed.Title, err)
		}
		agreementCount++

		for _, member := range members {
			if rng.Float64() >= seed.SignRate {
				continue
			}
			signature := models.AgreementSignature{
				AgreementID: agreement.ID,
				MemberID:    member.ID,
				SignedAt:    agreement.CreatedAt.Add(time.Duration(rng.Intn(96)) * time.Hour),
			}
			if err := config.DB.Create(&signature).Error; err != nil {
				logger.Fatalf("Failed to create signature: %v", err)
			}
			signatureCount++
		}
	}
	logger.Printf("Created %d agreements with %d signatures", agreementCount, signatureCount)

	// Deliverables with status-consistent progress
	deliverables := make([]models.Deliverable, 0, 30)
	for i := 0; i < 30; i++ {
		owner := &members[rng.Intn(len(members))].ID
		if rng.Float64() < 0.1 {
			owner = nil // a few unassigned
		}

		var progress int
		var deadline *time.Time
		switch rng.Intn(4) {
		case 0: // completed
			progress = 100
			deadline = utils.Pointer(now.AddDate(0, 0, rng.Intn(30)-15))
		case 1: // upcoming
			progress = 0
			deadline = utils.Pointer(now.AddDate(0, 0, rng.Intn(40)+10))
		case 2: // at risk: due soon with low progress
			progress = 10 + rng.Intn(60)
			deadline = utils.Pointer(now.AddDate(0, 0, rng.Intn(3)))
		default: // in progress
			progress = 10 + rng.Intn(80)
			deadline = utils.Pointer(now.AddDate(0, 0, rng.Intn(40)+14))
		}

		deliverable := models.Deliverable{
			Title:       fmt.Sprintf("Deliverable %02d", i+1),
			Description: "Seeded work item for demo purposes.",
			OwnerID:     owner,
			Deadline:    deadline,
			Progress:    progress,
			Status:      models.DeriveStatus(progress, deadline, now),
			CreatedAt:   now.AddDate(0, 0, -rng.Intn(80)),
		}
		if err := config.DB.Create(&deliverable).Error; err != nil {
			logger.Fatalf("Failed to create deliverable: %v", err)
		}
		deliverables = append(deliverables, deliverable)
	}
	logger.Printf("Created %d deliverables", len(deliverables))

	// Dependency edges. Only edges from a later deliverable to an earlier one,
	// which keeps the graph acyclic by construction.
	edgeCount := 0
	for i := 2; i < len(deliverables); i++ {
		if rng.Float64() >= 0.4 {
			continue
		}
		edge := models.DeliverableDependency{
			DeliverableID: deliverables[i].ID,
			DependsOnID:   deliverables[rng.Intn(i)].ID,
		}
		if err := config.DB.Create(&edge).Error; err != nil {
			logger.Fatalf("Failed to create dependency edge: %v", err)
		}
		edgeCount++
	}
	logger.Printf("Created %d dependency edges", edgeCount)

	// Updates, biased toward the last two weeks so the activity graph has a
	// visible recent hump
	updateTexts := []string{
		"Pushed the latest changes, ready for review.",
		"Blocked on the API contract, could use a second pair of eyes.",
		"Wrapped up testing, everything green.",
		"Refactored the data layer, no behavior change.",
		"Synced with design, scope is now clear.",
		"Deployed to staging, please poke at it.",
	}
	updates := make([]models.Update, 0, 150)
	for i := 0; i < 150; i++ {
		var age int
		if rng.Float64() < 0.6 {
			age = rng.Intn(14)
		} else {
			age = rng.Intn(84)
		}
		author := members[rng.Intn(len(members))].ID
		update := models.Update{
			Content:       updateTexts[rng.Intn(len(updateTexts))],
			AuthorID:      &author,
			IsHelpRequest: rng.Float64() < 0.1,
			CreatedAt:     now.AddDate(0, 0, -age).Add(-time.Duration(rng.Intn(600)) * time.Minute),
		}
		if rng.Float64() < 0.5 {
			update.DeliverableID = &deliverables[rng.Intn(len(deliverables))].ID
		}
		if err := config.DB.Create(&update).Error; err != nil {
			logger.Fatalf("Failed to create update: %v", err)
		}
		updates = append(updates, update)
	}
	logger.Printf("Created %d updates", len(updates))

	// Reactions. One per member per update per type at most, enforced by the
	// unique index; the construction below never collides.
	reactionTypes := []string{"thumbs_up", "celebrate", "support"}
	reactionCount := 0
	for _, update := range updates {
		for _, member := range members {
			if rng.Float64() >= 0.08 {
				continue
			}
			reaction := models.UpdateReaction{
				UpdateID:     update.ID,
				MemberID:     member.ID,
				ReactionType: reactionTypes[rng.Intn(len(reactionTypes))],
			}
			if err := config.DB.Create(&reaction).Error; err != nil {
				logger.Fatalf("Failed to create reaction: %v", err)
			}
			reactionCount++
		}
	}
	logger.Printf("Created %d reactions", reactionCount)

	logger.Println("✅ Seed complete")
}
