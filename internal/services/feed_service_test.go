// internal/services/feed_service_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deskhub/deskhub-backend/internal/models"
)

// feedSeedSeq keeps seeded creator emails unique when a test seeds the same
// style more than once into one database.
var feedSeedSeq atomic.Int64

func seedFeedTemplates(t *testing.T, db *gorm.DB, count int, style string) []uint {
	t.Helper()

	creator := createTestUser(t, db, fmt.Sprintf("creator_%s_%d", style, feedSeedSeq.Add(1)))
	ids := make([]uint, 0, count)
	for i := 0; i < count; i++ {
		tpl := createTestTemplate(t, db, creator.ID, fmt.Sprintf("Setup %d", i), style)
		ids = append(ids, tpl.ID)
	}
	return ids
}

func TestGetFeedWalkCoversEveryTemplateOnce(t *testing.T) {
	db := newTestDB(t)
	ids := seedFeedTemplates(t, db, 7, "minimal")
	service := NewFeedService(db, 10)

	var cursor *uint
	seen := []uint{}
	pages := 0
	for {
		page, err := service.GetFeed(cursor, "", 3)
		require.NoError(t, err)
		pages++

		for _, tpl := range page.Data {
			seen = append(seen, tpl.ID)
		}
		if !page.HasMore {
			// Drain one more page to prove the cursor is exhausted.
			if page.NextCursor != nil {
				tail, err := service.GetFeed(page.NextCursor, "", 3)
				require.NoError(t, err)
				assert.Empty(t, tail.Data)
			}
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, seen, len(ids))
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "feed must be strictly descending by id")
	}
	assert.Equal(t, 3, pages)
}

func TestGetFeedIgnoresInsertionsAtTheHead(t *testing.T) {
	db := newTestDB(t)
	ids := seedFeedTemplates(t, db, 4, "gaming")
	service := NewFeedService(db, 10)

	first, err := service.GetFeed(nil, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Data, 2)

	// New templates land above the cursor and must not disturb the walk.
	seedFeedTemplates(t, db, 3, "gaming")

	second, err := service.GetFeed(first.NextCursor, "", 2)
	require.NoError(t, err)
	require.Len(t, second.Data, 2)
	assert.Equal(t, ids[1], second.Data[0].ID)
	assert.Equal(t, ids[0], second.Data[1].ID)
}

func TestGetFeedShortPageSignalsExhaustion(t *testing.T) {
	db := newTestDB(t)
	seedFeedTemplates(t, db, 2, "cozy")
	service := NewFeedService(db, 10)

	page, err := service.GetFeed(nil, "", 5)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.False(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
}

func TestGetFeedEmptyPage(t *testing.T) {
	db := newTestDB(t)
	service := NewFeedService(db, 10)

	page, err := service.GetFeed(nil, "", 5)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.NextCursor)
	assert.False(t, page.HasMore)
}

func TestGetFeedStyleFilter(t *testing.T) {
	db := newTestDB(t)
	minimalIDs := seedFeedTemplates(t, db, 3, "minimal")
	seedFeedTemplates(t, db, 2, "gaming")
	service := NewFeedService(db, 10)

	page, err := service.GetFeed(nil, "minimal", 10)
	require.NoError(t, err)
	require.Len(t, page.Data, len(minimalIDs))
	for _, tpl := range page.Data {
		assert.Equal(t, "minimal", tpl.Style)
	}

	empty, err := service.GetFeed(nil, "steampunk", 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.False(t, empty.HasMore)
}

func TestGetFeedDanglingCursorResumesBelow(t *testing.T) {
	db := newTestDB(t)
	ids := seedFeedTemplates(t, db, 3, "minimal")
	service := NewFeedService(db, 10)

	// Cursor values need not reference a live row.
	dangling := ids[2] + 100
	page, err := service.GetFeed(&dangling, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)

	require.NoError(t, db.Delete(&models.Template{}, ids[1]).Error)
	cursor := ids[2]
	page, err = service.GetFeed(&cursor, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, ids[0], page.Data[0].ID)
}

func TestGetFeedRejectsNonPositiveLimit(t *testing.T) {
	db := newTestDB(t)
	service := NewFeedService(db, 10)

	_, err := service.GetFeed(nil, "", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = service.GetFeed(nil, "", -5)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestGetFeedPreloadsItemsAndProducts(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, "builder")
	category := createTestCategory(t, db, "desk")
	product := createTestProduct(t, db, "Oak Desk", category.ID, 1200, models.JSONB{"width": 140})
	tpl := createTestTemplate(t, db, creator.ID, "Oak Corner", "minimal")
	require.NoError(t, db.Create(&models.TemplateItem{
		TemplateID: tpl.ID,
		ProductID:  product.ID,
		PositionX:  10,
		PositionY:  20,
	}).Error)

	service := NewFeedService(db, 10)
	page, err := service.GetFeed(nil, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Len(t, page.Data[0].Items, 1)
	assert.Equal(t, "Oak Desk", page.Data[0].Items[0].Product.Name)
	assert.Equal(t, "desk", page.Data[0].Items[0].Product.Category.Name)
	assert.Equal(t, "builder", page.Data[0].Creator.Username)
}

func TestNewFeedServiceDefaultLimitFallback(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, 25, NewFeedService(db, 25).DefaultLimit())
	assert.Equal(t, 10, NewFeedService(db, 0).DefaultLimit())
}
