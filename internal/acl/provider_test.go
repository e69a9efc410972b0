package acl_test

import (
	"context"
	"testing"
	"time"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/clock"
	"github.com/Kyz7/limitless/internal/logger"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"github.com/Kyz7/limitless/internal/testutils"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - member document", func(t *testing.T) {
		db := testutils.TestDB(t)
		member := testutils.CreateRole(t, db, "member", "", models.ACLFragment{acl.KeyCanUsePrivatePapers: 1})
		testutils.CreateRole(t, db, "authenticated", models.SpecialRoleAuthenticated, models.ACLFragment{acl.KeyCanOmitFloodProtection: 1})
		general := testutils.CreateCategory(t, db, "General", nil)
		testutils.GrantCategory(t, db, member, general, models.ACLFragment{acl.KeyCanSee: 1, acl.KeyCanBrowse: 1, acl.KeyCanReplyPapers: 1})
		user := testutils.CreateUser(t, db, "alice", member)

		provider := acl.NewProvider(db, nil, time.Minute, logger.Nop())
		doc, err := provider.ForUser(ctx, &models.User{ID: user.ID})
		require.NoError(t, err)

		assert.Equal(t, user.ID, doc.UserID)
		assert.True(t, doc.IsAuthenticated)
		assert.Equal(t, 1, doc.CanUsePrivatePapers)
		assert.Equal(t, 1, doc.CanOmitFloodProtection)
		assert.Equal(t, 1, doc.Category(general.ID).CanReplyPapers)
	})

	t.Run("Success - anonymous document", func(t *testing.T) {
		db := testutils.TestDB(t)
		guest := testutils.CreateRole(t, db, "guest", models.SpecialRoleAnonymous, nil)
		general := testutils.CreateCategory(t, db, "General", nil)
		testutils.GrantCategory(t, db, guest, general, models.ACLFragment{acl.KeyCanSee: 1, acl.KeyCanBrowse: 1, acl.KeyCanReplyPapers: 1})

		provider := acl.NewProvider(db, nil, time.Minute, logger.Nop())
		doc, err := provider.ForAnonymous(ctx)
		require.NoError(t, err)

		assert.True(t, doc.IsAnonymous)
		assert.Zero(t, doc.UserID)
		assert.True(t, doc.HasCategory(general.ID))
		assert.Zero(t, doc.Category(general.ID).CanReplyPapers)
	})

	t.Run("Success - cached until invalidated", func(t *testing.T) {
		db := testutils.TestDB(t)
		s := miniredis.RunT(t)
		cache, err := acl.NewRedisCache("redis://" + s.Addr())
		require.NoError(t, err)

		member := testutils.CreateRole(t, db, "member", "", models.ACLFragment{acl.KeyCanUsePrivatePapers: 0})
		user := testutils.CreateUser(t, db, "bob", member)
		provider := acl.NewProvider(db, cache, time.Hour, logger.Nop())

		first, err := provider.ForUser(ctx, user)
		require.NoError(t, err)
		assert.Zero(t, first.CanUsePrivatePapers)
		assert.NotEmpty(t, first.CacheVersion)

		member.Permissions = testutils.Fragment(models.ACLFragment{acl.KeyCanUsePrivatePapers: 1})
		require.NoError(t, db.Save(member).Error)

		stale, err := provider.ForUser(ctx, &models.User{ID: user.ID})
		require.NoError(t, err)
		assert.Zero(t, stale.CanUsePrivatePapers)

		require.NoError(t, provider.Invalidate(ctx))

		fresh, err := provider.ForUser(ctx, &models.User{ID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, fresh.CanUsePrivatePapers)
		assert.NotEqual(t, first.CacheVersion, fresh.CacheVersion)
	})

	t.Run("Success - broken cache falls back", func(t *testing.T) {
		db := testutils.TestDB(t)
		s := miniredis.RunT(t)
		cache, err := acl.NewRedisCache("redis://" + s.Addr())
		require.NoError(t, err)
		member := testutils.CreateRole(t, db, "member", "", models.ACLFragment{acl.KeyCanUsePrivatePapers: 1})
		user := testutils.CreateUser(t, db, "carol", member)

		s.Close()

		provider := acl.NewProvider(db, cache, time.Hour, logger.Nop())
		doc, err := provider.ForUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.CanUsePrivatePapers)
	})

	t.Run("Success - guests and members without roles are cached apart", func(t *testing.T) {
		db := testutils.TestDB(t)
		s := miniredis.RunT(t)
		cache, err := acl.NewRedisCache("redis://" + s.Addr())
		require.NoError(t, err)
		user := testutils.CreateUser(t, db, "dave")
		provider := acl.NewProvider(db, cache, time.Hour, logger.Nop())

		guest, err := provider.ForAnonymous(ctx)
		require.NoError(t, err)
		assert.Zero(t, guest.MaxPrivatePaperParticipants)

		member, err := provider.ForUser(ctx, user)
		require.NoError(t, err)
		assert.True(t, member.IsAuthenticated)
		assert.Equal(t, 3, member.MaxPrivatePaperParticipants)
	})
}

func TestProviderEditTimeLimit(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	db := testutils.TestDB(t)
	member := testutils.CreateRole(t, db, "member", "", nil)
	general := testutils.CreateCategory(t, db, "General", nil)
	testutils.GrantCategory(t, db, member, general, models.ACLFragment{
		acl.KeyCanSee:           1,
		acl.KeyCanBrowse:        1,
		acl.KeyCanHideOwnPapers: 1,
		acl.KeyPaperEditTime:    30,
	})
	user := testutils.CreateUser(t, db, "erin", member)

	doc, err := acl.NewProvider(db, nil, time.Minute, logger.Nop()).ForUser(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 30, doc.Category(general.ID).PaperEditTime)

	paper := &models.Paper{CategoryID: general.ID, Category: general, StarterID: &user.ID, StartedOn: started}

	t.Run("Success - hide within the limit", func(t *testing.T) {
		t.Cleanup(permissions.SetClock(clock.NewFake(started.Add(29 * time.Minute))))
		assert.NoError(t, permissions.AllowHidePaper(doc, paper))
	})

	t.Run("Error - hide after the limit", func(t *testing.T) {
		t.Cleanup(permissions.SetClock(clock.NewFake(started.Add(31 * time.Minute))))
		err := permissions.AllowHidePaper(doc, paper)
		assert.True(t, apperr.HasReason(err, apperr.ReasonTimeLimit))
	})
}
