// Package moderation implements the state transitions moderators apply to
// papers, the private paper participant lifecycle, and the composite merge,
// split and move workflows. Every public operation runs in one transaction.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/clock"
	"github.com/Kyz7/limitless/internal/config"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Actor is the user behind a request together with their ACL document.
type Actor struct {
	User *models.User
	ACL  *acl.UserACL
}

// ACLSource resolves the document of users other than the actor, such as
// invited participants.
type ACLSource interface {
	ForUser(ctx context.Context, user *models.User) (*acl.UserACL, error)
}

// Notifier is told about participants added to private papers after the
// transaction adding them commits.
type Notifier interface {
	ParticipantAdded(ctx context.Context, actor *models.User, paper *models.Paper, user *models.User)
}

type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) ParticipantAdded(_ context.Context, actor *models.User, paper *models.Paper, user *models.User) {
	n.log.Info().
		Uint("paper_id", paper.ID).
		Uint("actor_id", actor.ID).
		Uint("user_id", user.ID).
		Msg("participant added to private paper")
}

type Service struct {
	db       *gorm.DB
	acls     ACLSource
	limits   config.Limits
	clock    clock.Clock
	notifier Notifier
	log      zerolog.Logger
}

func NewService(db *gorm.DB, acls ACLSource, limits config.Limits, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		acls:     acls,
		limits:   limits,
		clock:    clock.Real(),
		notifier: logNotifier{log: log},
		log:      log,
	}
}

func (s *Service) WithClock(c clock.Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) Limits() config.Limits {
	return s.limits
}

// op carries what a single transactional operation needs.
type op struct {
	tx    *gorm.DB
	now   time.Time
	actor *models.User
	log   zerolog.Logger
}

// run executes fn in a transaction. The paper passed to an action is
// mutated in place even when the transaction rolls back.
func (s *Service) run(ctx context.Context, actor *models.User, fn func(o *op) (bool, error)) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = fn(&op{tx: tx, now: s.clock.Now(), actor: actor, log: s.log})
		return err
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (s *Service) atomic(ctx context.Context, actor *models.User, fn func(o *op) error) error {
	_, err := s.run(ctx, actor, func(o *op) (bool, error) {
		return true, fn(o)
	})
	return err
}

// Paper loads a paper with its category and poll, and checks that user may
// see it. Invisible papers are reported as not found.
func (s *Service) Paper(ctx context.Context, user *acl.UserACL, id uint) (*models.Paper, error) {
	return loadVisiblePaper(s.db.WithContext(ctx), user, id)
}

func loadVisiblePaper(tx *gorm.DB, user *acl.UserACL, id uint) (*models.Paper, error) {
	var paper models.Paper
	err := tx.Preload("Category").Preload("Poll").First(&paper, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("paper")
	}
	if err != nil {
		return nil, fmt.Errorf("load paper %d: %w", id, err)
	}

	if paper.IsPrivate() {
		if err := LoadParticipants(tx, &paper); err != nil {
			return nil, err
		}
		err = permissions.AllowSeePrivatePaper(user, &paper)
	} else {
		err = permissions.AllowSeePaper(user, &paper)
	}
	if err != nil {
		return nil, apperr.NotFound("paper")
	}

	permissions.AddACLToPaper(user, &paper)
	return &paper, nil
}

func loadCategory(tx *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	err := tx.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("category")
	}
	if err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}
	return &category, nil
}

// Category loads a category the user may see.
func (s *Service) Category(ctx context.Context, user *acl.UserACL, id uint) (*models.Category, error) {
	if !user.HasCategory(id) {
		return nil, apperr.NotFound("category")
	}
	return loadCategory(s.db.WithContext(ctx), id)
}

func loadFirstPost(tx *gorm.DB, paper *models.Paper) (*models.Post, error) {
	if paper.FirstPostID == nil {
		return nil, nil
	}
	var post models.Post
	if err := tx.First(&post, *paper.FirstPostID).Error; err != nil {
		return nil, fmt.Errorf("load first post of paper %d: %w", paper.ID, err)
	}
	post.Paper = paper
	return &post, nil
}

func ensureCategory(tx *gorm.DB, paper *models.Paper) error {
	if paper.Category != nil && paper.Category.ID == paper.CategoryID {
		return nil
	}
	category, err := loadCategory(tx, paper.CategoryID)
	if err != nil {
		return err
	}
	paper.Category = category
	return nil
}
