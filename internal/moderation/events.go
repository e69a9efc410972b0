package moderation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kyz7/limitless/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EventChangedTitle       = "changed_title"
	EventPinnedGlobally     = "pinned_globally"
	EventPinnedLocally      = "pinned_locally"
	EventUnpinned           = "unpinned"
	EventMoved              = "moved"
	EventMerged             = "merged"
	EventApproved           = "approved"
	EventOpened             = "opened"
	EventClosed             = "closed"
	EventUnhid              = "unhid"
	EventHid                = "hid"
	EventChangedOwner       = "changed_owner"
	EventTookOver           = "tookover"
	EventEnteredPaper       = "entered_paper"
	EventAddedParticipant   = "added_participant"
	EventOwnerLeft          = "owner_left"
	EventRemovedOwner       = "removed_owner"
	EventParticipantLeft    = "participant_left"
	EventRemovedParticipant = "removed_participant"
)

// RecordEvent appends an event post to paper and makes it the paper's last
// post. With commit set the paper and its category are saved; otherwise
// the caller persists them.
func RecordEvent(tx *gorm.DB, now time.Time, actor *models.User, paper *models.Paper, eventType string, payload map[string]any, commit bool) (*models.Post, error) {
	var eventContext datatypes.JSON
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s event context: %w", eventType, err)
		}
		eventContext = raw
	}

	actorID := actor.ID
	event := &models.Post{
		CategoryID:   paper.CategoryID,
		PaperID:      paper.ID,
		PosterID:     &actorID,
		PosterName:   actor.Username,
		PosterSlug:   actor.Slug,
		OriginalText: "-",
		ParsedText:   "-",
		PostedOn:     now,
		UpdatedOn:    &now,
		IsEvent:      true,
		EventType:    eventType,
		EventContext: eventContext,
	}
	if err := tx.Omit(clause.Associations).Create(event).Error; err != nil {
		return nil, fmt.Errorf("create %s event: %w", eventType, err)
	}

	paper.HasEvents = true
	paper.SetLastPost(event)
	if commit {
		if err := tx.Omit(clause.Associations).Save(paper).Error; err != nil {
			return nil, fmt.Errorf("save paper %d: %w", paper.ID, err)
		}
	}

	if paper.IsHidden || paper.IsUnapproved {
		return event, nil
	}
	if err := ensureCategory(tx, paper); err != nil {
		return nil, err
	}
	paper.Category.SetLastPaper(paper)
	if commit {
		if err := tx.Omit(clause.Associations).Save(paper.Category).Error; err != nil {
			return nil, fmt.Errorf("save category %d: %w", paper.CategoryID, err)
		}
	}
	return event, nil
}

func (o *op) recordEvent(paper *models.Paper, eventType string, payload map[string]any) error {
	_, err := RecordEvent(o.tx, o.now, o.actor, paper, eventType, payload, true)
	if err != nil {
		return err
	}
	o.log.Debug().
		Uint("paper_id", paper.ID).
		Str("event_type", eventType).
		Uint("actor_id", o.actor.ID).
		Msg("paper event recorded")
	return nil
}

func userContext(user *models.User) map[string]any {
	return map[string]any{
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"slug":     user.Slug,
		},
	}
}
