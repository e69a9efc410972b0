package permissions

import (
	"testing"
	"time"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/clock"
	"github.com/Kyz7/limitless/internal/models"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	generalID  uint = 10
	otherID    uint = 20
	userID     uint = 7
	strangerID uint = 8
)

func uintPtr(v uint) *uint { return &v }

func member(levels acl.CategoryACL) *acl.UserACL {
	levels.CanSee, levels.CanBrowse = 1, 1
	return &acl.UserACL{
		UserID:                      userID,
		IsAuthenticated:             true,
		MaxPrivatePaperParticipants: 3,
		CanBeBlocked:                1,
		Categories:                  map[uint]acl.CategoryACL{generalID: levels},
	}
}

func guest(levels acl.CategoryACL) *acl.UserACL {
	levels.CanSee, levels.CanBrowse = 1, 1
	return &acl.UserACL{
		IsAnonymous: true,
		Categories:  map[uint]acl.CategoryACL{generalID: levels},
	}
}

func ownPaper() *models.Paper {
	return &models.Paper{
		ID:          1,
		CategoryID:  generalID,
		Category:    &models.Category{ID: generalID},
		StarterID:   uintPtr(userID),
		StartedOn:   epoch,
		FirstPostID: uintPtr(100),
	}
}

func strangersPaper() *models.Paper {
	p := ownPaper()
	p.StarterID = uintPtr(strangerID)
	return p
}

func reply(paper *models.Paper, poster uint) *models.Post {
	return &models.Post{
		ID:         101,
		CategoryID: paper.CategoryID,
		PaperID:    paper.ID,
		Paper:      paper,
		Category:   paper.Category,
		PosterID:   uintPtr(poster),
		PostedOn:   epoch,
	}
}

// freezeAt pins the guard clock to epoch+elapsed for the rest of the test.
func freezeAt(t *testing.T, elapsed time.Duration) *clock.Fake {
	fake := clock.NewFake(epoch.Add(elapsed))
	t.Cleanup(SetClock(fake))
	return fake
}
