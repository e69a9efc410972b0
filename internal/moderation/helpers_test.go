package moderation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/clock"
	"github.com/Kyz7/limitless/internal/config"
	"github.com/Kyz7/limitless/internal/logger"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/testutils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// stubACLs serves fixed documents for invited users. Unknown users may use
// private papers.
type stubACLs map[uint]*acl.UserACL

func (s stubACLs) ForUser(_ context.Context, user *models.User) (*acl.UserACL, error) {
	if doc, ok := s[user.ID]; ok {
		return doc, nil
	}
	return &acl.UserACL{UserID: user.ID, IsAuthenticated: true, CanUsePrivatePapers: 1}, nil
}

type addedParticipant struct {
	paperID, userID uint
}

type recordingNotifier struct {
	mu    sync.Mutex
	added []addedParticipant
}

func (n *recordingNotifier) ParticipantAdded(_ context.Context, _ *models.User, paper *models.Paper, user *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.added = append(n.added, addedParticipant{paperID: paper.ID, userID: user.ID})
}

func moderatorLevels() acl.CategoryACL {
	return acl.CategoryACL{
		CanSee:            1,
		CanBrowse:         1,
		CanSeeAllPapers:   1,
		CanStartPapers:    1,
		CanReplyPapers:    1,
		CanEditPapers:     2,
		CanEditPosts:      2,
		CanHidePapers:     2,
		CanHidePosts:      2,
		CanMovePosts:      1,
		CanMergePosts:     1,
		CanPinPapers:      2,
		CanClosePapers:    1,
		CanMovePapers:     1,
		CanMergePapers:    1,
		CanApproveContent: 1,
		CanHideEvents:     2,
	}
}

type fixture struct {
	db        *gorm.DB
	service   *Service
	clock     *clock.Fake
	notifier  *recordingNotifier
	acls      stubACLs
	general   *models.Category
	other     *models.Category
	private   *models.Category
	moderator *models.User
	actor     Actor
}

func newFixture(t *testing.T) *fixture {
	db := testutils.TestDB(t)
	f := &fixture{
		db:        db,
		clock:     clock.NewFake(epoch.Add(time.Hour)),
		notifier:  &recordingNotifier{},
		acls:      stubACLs{},
		general:   testutils.CreateCategory(t, db, "General", nil),
		other:     testutils.CreateCategory(t, db, "Other", nil),
		private:   testutils.CreatePrivateCategory(t, db),
		moderator: testutils.CreateUser(t, db, "moderator"),
	}
	f.actor = Actor{User: f.moderator, ACL: &acl.UserACL{
		UserID:                   f.moderator.ID,
		IsAuthenticated:          true,
		CanUsePrivatePapers:      1,
		CanModeratePrivatePapers: 1,
		Categories: map[uint]acl.CategoryACL{
			f.general.ID: moderatorLevels(),
			f.other.ID:   moderatorLevels(),
		},
	}}

	f.service = NewService(db, f.acls, config.DefaultLimits(), logger.Nop()).
		WithClock(f.clock).
		WithNotifier(f.notifier)
	return f
}

// member returns an actor without any moderation rights.
func (f *fixture) member(user *models.User) Actor {
	return Actor{User: user, ACL: &acl.UserACL{
		UserID:                      user.ID,
		IsAuthenticated:             true,
		CanUsePrivatePapers:         1,
		MaxPrivatePaperParticipants: 3,
		CanBeBlocked:                1,
	}}
}

// paper creates a paper with a first post by starter and count replies.
func (f *fixture) paper(t *testing.T, category *models.Category, starter *models.User, title string, replies int) *models.Paper {
	paper := testutils.CreatePaper(t, f.db, category, starter, title, epoch)
	for i := range replies {
		testutils.CreatePost(t, f.db, paper, starter, epoch.Add(time.Duration(i+1)*time.Minute))
	}
	return f.load(t, paper.ID)
}

// load returns the paper the way handlers see it.
func (f *fixture) load(t *testing.T, id uint) *models.Paper {
	paper, err := f.service.Paper(context.Background(), f.actor.ACL, id)
	require.NoError(t, err)
	return paper
}

func (f *fixture) reply(t *testing.T, paper *models.Paper, poster *models.User, minutes int) *models.Post {
	return testutils.CreatePost(t, f.db, paper, poster, epoch.Add(time.Duration(minutes)*time.Minute))
}

// markBestAnswer stores post as the best answer of its paper.
func (f *fixture) markBestAnswer(t *testing.T, paper *models.Paper, post *models.Post) {
	stored := testutils.ReloadPaper(t, f.db, paper.ID)
	stored.SetBestAnswer(f.moderator, post, epoch)
	require.NoError(t, f.db.Omit(clause.Associations).Save(stored).Error)
}

func (f *fixture) addPoll(t *testing.T, paper *models.Paper, question string) *models.Poll {
	poll := &models.Poll{
		CategoryID: paper.CategoryID,
		PaperID:    paper.ID,
		PostedOn:   epoch,
		Question:   question,
		Choices:    []byte(`[]`),
	}
	require.NoError(t, f.db.Create(poll).Error)
	require.NoError(t, f.db.Model(&models.Paper{}).Where("id = ?", paper.ID).Update("has_poll", true).Error)
	return poll
}

func (f *fixture) events(t *testing.T, paperID uint) []models.Post {
	var events []models.Post
	require.NoError(t, f.db.Where("paper_id = ? AND is_event = ?", paperID, true).Order("id").Find(&events).Error)
	return events
}

func (f *fixture) posts(t *testing.T, paperID uint) []models.Post {
	var posts []models.Post
	require.NoError(t, f.db.Where("paper_id = ? AND is_event = ?", paperID, false).Order("id").Find(&posts).Error)
	return posts
}

func (f *fixture) exists(t *testing.T, model any, id uint) bool {
	var count int64
	require.NoError(t, f.db.Model(model).Where("id = ?", id).Count(&count).Error)
	return count > 0
}

func (f *fixture) category(t *testing.T, id uint) *models.Category {
	var category models.Category
	require.NoError(t, f.db.First(&category, id).Error)
	return &category
}

func eventContext(t *testing.T, event models.Post) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(event.EventContext, &out))
	return out
}
