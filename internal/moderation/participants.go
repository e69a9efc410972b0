package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"gorm.io/gorm"
)

// LoadParticipants fills paper.ParticipantsList, owner first.
func LoadParticipants(tx *gorm.DB, paper *models.Paper) error {
	var participants []models.PaperParticipant
	err := tx.Preload("User").
		Where("paper_id = ?", paper.ID).
		Order("is_owner DESC, id").
		Find(&participants).Error
	if err != nil {
		return fmt.Errorf("load participants of paper %d: %w", paper.ID, err)
	}
	paper.ParticipantsList = participants
	return nil
}

func setOwner(tx *gorm.DB, paper *models.Paper, user *models.User) error {
	err := tx.Model(&models.PaperParticipant{}).
		Where("paper_id = ? AND is_owner = ?", paper.ID, true).
		Update("is_owner", false).Error
	if err != nil {
		return fmt.Errorf("clear owner of paper %d: %w", paper.ID, err)
	}
	if err := tx.Where("paper_id = ? AND user_id = ?", paper.ID, user.ID).Delete(&models.PaperParticipant{}).Error; err != nil {
		return fmt.Errorf("remove participant %d: %w", user.ID, err)
	}
	owner := models.PaperParticipant{PaperID: paper.ID, UserID: user.ID, IsOwner: true}
	if err := tx.Create(&owner).Error; err != nil {
		return fmt.Errorf("set owner of paper %d: %w", paper.ID, err)
	}
	return nil
}

func addParticipants(tx *gorm.DB, paper *models.Paper, users ...*models.User) error {
	for _, user := range users {
		participant := models.PaperParticipant{PaperID: paper.ID, UserID: user.ID}
		if err := tx.Create(&participant).Error; err != nil {
			return fmt.Errorf("add participant %d to paper %d: %w", user.ID, paper.ID, err)
		}
	}
	return nil
}

// StartPrivatePaper makes owner the owner of a freshly created private
// paper and adds the invited users, without recording events.
func (s *Service) StartPrivatePaper(ctx context.Context, paper *models.Paper, owner *models.User, users ...*models.User) error {
	err := s.atomic(ctx, owner, func(o *op) error {
		if err := setOwner(o.tx, paper, owner); err != nil {
			return err
		}
		if err := addParticipants(o.tx, paper, users...); err != nil {
			return err
		}
		return LoadParticipants(o.tx, paper)
	})
	if err != nil {
		return err
	}
	for _, user := range users {
		s.notifier.ParticipantAdded(ctx, owner, paper, user)
	}
	return nil
}

// InviteParticipant adds the user named username to the private paper
// after checking both the actor's and the invitee's permissions.
func (s *Service) InviteParticipant(ctx context.Context, actor Actor, paper *models.Paper, username string) (*models.User, error) {
	if err := permissions.AllowAddParticipants(actor.ACL, paper); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Blocking").Preload("Following").
		Where("slug = ?", username).Or("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Invalid("username", "No user with this name exists.")
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	if paper.ParticipantFor(user.ID) != nil {
		return nil, apperr.Invalid("username", "This user is already a participant.")
	}

	userACL, err := s.acls.ForUser(ctx, &user)
	if err != nil {
		return nil, err
	}
	if err := permissions.AllowAddParticipant(actor.ACL, &user, userACL); err != nil {
		return nil, err
	}

	if err := s.AddParticipant(ctx, actor.User, paper, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AddParticipant adds user to paper and records who entered it.
func (s *Service) AddParticipant(ctx context.Context, actor *models.User, paper *models.Paper, user *models.User) error {
	err := s.atomic(ctx, actor, func(o *op) error {
		if err := addParticipants(o.tx, paper, user); err != nil {
			return err
		}
		eventType, payload := EventAddedParticipant, userContext(user)
		if actor.ID == user.ID {
			eventType, payload = EventEnteredPaper, nil
		}
		if err := o.recordEvent(paper, eventType, payload); err != nil {
			return err
		}
		return LoadParticipants(o.tx, paper)
	})
	if err != nil {
		return err
	}
	s.notifier.ParticipantAdded(ctx, actor, paper, user)
	return nil
}

// ChangeOwner hands paper over to user, who must already participate.
func (s *Service) ChangeOwner(ctx context.Context, actor Actor, paper *models.Paper, userID uint) error {
	if err := permissions.AllowChangeOwner(actor.ACL, paper); err != nil {
		return err
	}
	participant := paper.ParticipantFor(userID)
	if participant == nil || participant.User == nil {
		return apperr.Invalid("owner", "Participant doesn't exist.")
	}
	if participant.IsOwner {
		return apperr.Invalid("owner", "This user already is paper owner.")
	}
	newOwner := participant.User

	return s.atomic(ctx, actor.User, func(o *op) error {
		eventType := EventTookOver
		if paper.IsOwner(actor.User.ID) {
			eventType = EventChangedOwner
		}
		if err := setOwner(o.tx, paper, newOwner); err != nil {
			return err
		}
		if err := o.recordEvent(paper, eventType, userContext(newOwner)); err != nil {
			return err
		}
		return LoadParticipants(o.tx, paper)
	})
}

// RemoveParticipant takes user out of paper. The paper is deleted when
// nobody is left, and closed when its owner leaves or is removed. It
// reports whether the paper was deleted.
func (s *Service) RemoveParticipant(ctx context.Context, actor Actor, paper *models.Paper, userID uint) (bool, error) {
	participant := paper.ParticipantFor(userID)
	if participant == nil || participant.User == nil {
		return false, apperr.Invalid("user", "Participant doesn't exist.")
	}
	user := participant.User
	if err := permissions.AllowRemoveParticipant(actor.ACL, paper, user); err != nil {
		return false, err
	}

	return s.run(ctx, actor.User, func(o *op) (bool, error) {
		if len(paper.ParticipantsList) == 1 {
			if _, err := o.delete(paper); err != nil {
				return false, err
			}
			return true, nil
		}

		wasOwner := participant.IsOwner
		if err := o.tx.Delete(&models.PaperParticipant{}, participant.ID).Error; err != nil {
			return false, fmt.Errorf("remove participant %d: %w", user.ID, err)
		}
		err := o.tx.Where("paper_id = ? AND user_id = ?", paper.ID, user.ID).
			Delete(&models.Subscription{}).Error
		if err != nil {
			return false, fmt.Errorf("remove subscription of user %d: %w", user.ID, err)
		}

		leaving := actor.User.ID == user.ID
		var eventType string
		var payload map[string]any
		switch {
		case wasOwner && leaving:
			eventType = EventOwnerLeft
		case wasOwner:
			eventType = EventRemovedOwner
			payload = userContext(user)
		case leaving:
			eventType = EventParticipantLeft
		default:
			eventType = EventRemovedParticipant
			payload = userContext(user)
		}
		if wasOwner {
			paper.IsClosed = true
		}

		if err := o.recordEvent(paper, eventType, payload); err != nil {
			return false, err
		}
		return false, LoadParticipants(o.tx, paper)
	})
}
