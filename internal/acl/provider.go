package acl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kyz7/limitless/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Provider loads role data and returns documents, going through the cache
// when one is configured. Cache failures are logged and a fresh document is
// built instead.
type Provider struct {
	db    *gorm.DB
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewProvider accepts a nil cache, in which case every call builds.
func NewProvider(db *gorm.DB, cache Cache, ttl time.Duration, log zerolog.Logger) *Provider {
	return &Provider{db: db, cache: cache, ttl: ttl, log: log}
}

// ForUser returns the document of an authenticated user. The user's roles
// are loaded when not preloaded.
func (p *Provider) ForUser(ctx context.Context, user *models.User) (*UserACL, error) {
	roles := user.Roles
	if len(roles) == 0 {
		if err := p.db.WithContext(ctx).Model(user).Association("Roles").Find(&roles); err != nil {
			return nil, fmt.Errorf("load user roles: %w", err)
		}
	}

	var authenticated models.Role
	err := p.db.WithContext(ctx).Where("special_role = ?", models.SpecialRoleAuthenticated).First(&authenticated).Error
	switch {
	case err == nil:
		if !containsRole(roles, authenticated.ID) {
			roles = append(roles, authenticated)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load authenticated role: %w", err)
	}

	doc, err := p.forRoles(ctx, roles, true)
	if err != nil {
		return nil, err
	}
	return doc.ForIdentity(user.ID, true), nil
}

// ForAnonymous returns the document of a guest.
func (p *Provider) ForAnonymous(ctx context.Context) (*UserACL, error) {
	var roles []models.Role
	if err := p.db.WithContext(ctx).Where("special_role = ?", models.SpecialRoleAnonymous).Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("load anonymous role: %w", err)
	}

	doc, err := p.forRoles(ctx, roles, false)
	if err != nil {
		return nil, err
	}
	return doc.ForIdentity(0, false), nil
}

// Invalidate drops every cached document.
func (p *Provider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	version, err := p.cache.Bump(ctx)
	if err != nil {
		return err
	}
	p.log.Info().Str("version", version).Msg("acl cache invalidated")
	return nil
}

func (p *Provider) forRoles(ctx context.Context, roles []models.Role, authenticated bool) (*UserACL, error) {
	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	var key, version string
	if p.cache != nil {
		var err error
		version, err = p.cache.Version(ctx)
		if err != nil {
			p.log.Warn().Err(err).Msg("acl cache unavailable")
		} else {
			key = CacheKey(version, authenticated, ids)
			doc, err := p.cache.Get(ctx, key)
			if err == nil {
				return doc, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				p.log.Warn().Err(err).Str("key", key).Msg("acl cache read failed")
			}
		}
	}

	doc, err := p.build(ctx, roles, ids, authenticated)
	if err != nil {
		return nil, err
	}
	doc.CacheVersion = version

	if key != "" {
		if err := p.cache.Set(ctx, key, doc, p.ttl); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("acl cache write failed")
		}
	}
	return doc, nil
}

func (p *Provider) build(ctx context.Context, roles []models.Role, ids []uint, authenticated bool) (*UserACL, error) {
	db := p.db.WithContext(ctx)

	var categories []models.Category
	if err := db.Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	categoryRoles := map[uint][]models.CategoryRole{}
	if len(ids) > 0 {
		var links []models.RoleCategoryACL
		if err := db.Preload("CategoryRole").Where("role_id IN ?", ids).Find(&links).Error; err != nil {
			return nil, fmt.Errorf("load category roles: %w", err)
		}
		for _, l := range links {
			if l.CategoryRole != nil {
				categoryRoles[l.CategoryID] = append(categoryRoles[l.CategoryID], *l.CategoryRole)
			}
		}
	}

	return Build(BuildInput{
		Authenticated: authenticated,
		Roles:         roles,
		CategoryRoles: categoryRoles,
		Categories:    categories,
	}), nil
}

func containsRole(roles []models.Role, id uint) bool {
	for _, r := range roles {
		if r.ID == id {
			return true
		}
	}
	return false
}
