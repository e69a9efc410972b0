package role

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invalidator drops cached ACL documents after permissions change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	db    *gorm.DB
	cache Invalidator
	log   zerolog.Logger
}

func NewService(db *gorm.DB, cache Invalidator, log zerolog.Logger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

type UpdateRoleInput struct {
	Description *string            `json:"description,omitempty"`
	Permissions models.ACLFragment `json:"permissions"`
}

type GrantInput struct {
	CategoryID     uint `json:"category_id"`
	CategoryRoleID uint `json:"category_role_id"`
}

func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("role")
	}
	if err != nil {
		return nil, fmt.Errorf("load role %d: %w", id, err)
	}
	return &role, nil
}

// UpdateRole replaces the role's global permissions and invalidates every
// cached document.
func (s *Service) UpdateRole(ctx context.Context, id uint, in UpdateRoleInput) (*models.Role, error) {
	if err := validateFragment(in.Permissions, acl.IsGlobalKey); err != nil {
		return nil, err
	}

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		role.Description = *in.Description
	}
	if in.Permissions != nil {
		role.Permissions = datatypes.NewJSONType(in.Permissions)
	}
	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, fmt.Errorf("save role %d: %w", id, err)
	}

	s.invalidate(ctx)
	return role, nil
}

func (s *Service) ListCategoryRoles(ctx context.Context) ([]models.CategoryRole, error) {
	var roles []models.CategoryRole
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list category roles: %w", err)
	}
	return roles, nil
}

// Grant sets which category role applies to the role in a category.
func (s *Service) Grant(ctx context.Context, roleID uint, in GrantInput) (*models.RoleCategoryACL, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return nil, err
	}
	if err := db.First(&models.Category{}, in.CategoryID).Error; err != nil {
		return nil, apperr.Invalid("category_id", "Category doesn't exist.")
	}
	if err := db.First(&models.CategoryRole{}, in.CategoryRoleID).Error; err != nil {
		return nil, apperr.Invalid("category_role_id", "Category role doesn't exist.")
	}

	var link models.RoleCategoryACL
	err := db.Where(models.RoleCategoryACL{RoleID: roleID, CategoryID: in.CategoryID}).
		Assign(models.RoleCategoryACL{CategoryRoleID: in.CategoryRoleID}).
		FirstOrCreate(&link).Error
	if err != nil {
		return nil, fmt.Errorf("grant role %d in category %d: %w", roleID, in.CategoryID, err)
	}

	s.invalidate(ctx)
	return &link, nil
}

func (s *Service) AssignRoleToUser(ctx context.Context, userID, roleID uint) error {
	db := s.db.WithContext(ctx)
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.SpecialRole != "" {
		return apperr.Invalid("role_id", "Special roles can't be assigned to users.")
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return apperr.Invalid("user_id", "User doesn't exist.")
	}
	if err := db.Model(&user).Association("Roles").Append(role); err != nil {
		return fmt.Errorf("assign role %d to user %d: %w", roleID, userID, err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate acl cache")
	}
}

func validateFragment(fragment models.ACLFragment, known func(string) bool) error {
	var unknown []string
	for key, level := range fragment {
		if !known(key) {
			unknown = append(unknown, key)
			continue
		}
		if level < 0 {
			return apperr.Invalid("permissions", fmt.Sprintf("Permission %q can't be negative.", key))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperr.Invalid("permissions", fmt.Sprintf("Unknown permissions: %v.", unknown))
	}
	return nil
}
