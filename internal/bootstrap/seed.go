package bootstrap

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Course{},
		&entity.Lesson{},
		&entity.Enrollment{},
		&entity.Progress{},
		&entity.Attachment{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the first ADMIN account when email and password are
// configured and no user with that email exists yet.
func SeedAdminUser(db *gorm.DB, email, password string, log *logger.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Debug("admin seed skipped, SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role != entity.RoleAdmin {
			log.Warn("seed admin email belongs to a non-admin account", "email", email, "role", existing.Role)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", "email", email)
	return nil
}
