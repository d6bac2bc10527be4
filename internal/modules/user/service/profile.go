package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/user/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/user/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
	"github.com/prajaktamali15/e-learning-platform/pkg/storage"
)

const profilePhotoFolder = "profile-pictures"

var allowedPhotoExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type ProfileService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error
	UpdateProfilePhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
}

type profileService struct {
	repo          repository.UserRepository
	files         storage.FileStorage
	maxPhotoBytes int64
	log           *logger.Logger
}

func NewProfileService(repo repository.UserRepository, files storage.FileStorage, maxPhotoBytes int64, log *logger.Logger) ProfileService {
	return &profileService{
		repo:          repo,
		files:         files,
		maxPhotoBytes: maxPhotoBytes,
		log:           log,
	}
}

func (s *profileService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	return s.GetUser(ctx, userID)
}

func (s *profileService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *profileService) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	var filter entity.Role
	if role != "" {
		parsed, ok := entity.ParseRole(role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q: %w", role, apperror.ErrBadRequest)
		}
		filter = parsed
	}

	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, fmt.Errorf("email already in use: %w", apperror.ErrConflict)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return nil, fmt.Errorf("current password is required to set a new password: %w", apperror.ErrBadRequest)
		}
		if err := s.setPassword(user, input.CurrentPassword, input.NewPassword); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already in use: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.setPassword(user, input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	return s.repo.Update(ctx, user)
}

func (s *profileService) setPassword(user *entity.User, current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

func (s *profileService) UpdateProfilePhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*dto.UserResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("photo is required: %w", apperror.ErrBadRequest)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if !allowedPhotoExt[ext] || (contentType != "" && !strings.HasPrefix(contentType, "image/")) {
		return nil, fmt.Errorf("only image files are allowed: %w", apperror.ErrBadRequest)
	}
	if s.maxPhotoBytes > 0 && file.Size > s.maxPhotoBytes {
		return nil, apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("photo exceeds %d MB", s.maxPhotoBytes>>20), apperror.ErrBadRequest)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileName := fmt.Sprintf("%s_%s%s", userID, uuid.New(), ext)
	url, err := s.files.Upload(ctx, f, profilePhotoFolder, fileName)
	if err != nil {
		return nil, err
	}

	previous := user.ProfilePhotoURL
	user.ProfilePhotoURL = &url
	if err := s.repo.Update(ctx, user); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, err
	}

	if previous != nil && *previous != "" {
		if err := s.files.Delete(ctx, *previous); err != nil {
			s.log.Warn("failed to delete previous profile photo", "user_id", userID, "url", *previous, "error", err)
		}
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *profileService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return fmt.Errorf("admins cannot delete their own account: %w", apperror.ErrBadRequest)
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}
