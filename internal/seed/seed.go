// Package seed provides bootstrap and demo-data seeding utilities.
package seed

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wtero/internal/config"
	"wtero/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options configuration for the demo-data seeder
type Options struct {
	NumReviews  int
	NumProducts int
	ShouldClean bool
}

// EnsureDefaultAdmin creates the configured admin account if it does not
// exist yet. Safe to run on every startup.
func EnsureDefaultAdmin(db *gorm.DB, cfg *config.Config) error {
	var existing models.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up default admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Username: cfg.AdminUsername,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	log.Printf("Seeded default admin account %q", cfg.AdminUsername)
	return nil
}

var productCategories = []string{
	"Web App", "Mobile App", "API", "Dashboard", "E-Commerce", "Landing Page",
}

var technologyPool = []string{
	"Go", "Python", "TypeScript", "React", "Vue", "Svelte", "PostgreSQL",
	"MongoDB", "Redis", "Docker", "Kubernetes", "Tailwind", "GraphQL",
}

// Seed populates the database with demo reviews and products.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d reviews and %d products...", opts.NumReviews, opts.NumProducts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	for i := 0; i < opts.NumReviews; i++ {
		review := models.Review{
			Name:    gofakeit.Name(),
			Company: gofakeit.Company(),
			Role:    gofakeit.JobTitle(),
			Rating:  gofakeit.Number(1, 5),
			Text:    gofakeit.Sentence(12),
			// Spread creation times so newest-first ordering is visible
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
		if err := db.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to seed review: %w", err)
		}
	}

	for i := 0; i < opts.NumProducts; i++ {
		techs := make([]string, 0, 3)
		for len(techs) < 3 {
			t := technologyPool[gofakeit.Number(0, len(technologyPool)-1)]
			if !contains(techs, t) {
				techs = append(techs, t)
			}
		}

		product := models.Product{
			Title:        fmt.Sprintf("%s %s %d", gofakeit.AdjectiveDescriptive(), gofakeit.NounAbstract(), i),
			Category:     productCategories[gofakeit.Number(0, len(productCategories)-1)],
			Description:  gofakeit.Paragraph(1, 3, 10, " "),
			Technologies: datatypes.NewJSONSlice(techs),
			GithubLink:   fmt.Sprintf("https://github.com/wtero/%s", gofakeit.Username()),
			ComingSoon:   gofakeit.Bool(),
			CreatedAt:    time.Now().Add(-time.Duration(i) * time.Hour),
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product: %w", err)
		}
	}

	log.Println("Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	if err := db.Where("1 = 1").Delete(&models.Review{}).Error; err != nil {
		return err
	}
	return db.Where("1 = 1").Delete(&models.Product{}).Error
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
