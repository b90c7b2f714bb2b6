package activity

import (
	"testing"
	"time"

	"digihub/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMergeFeed_WindowMatchesFullMerge(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var logs []model.ActivityLog
	var comments []model.Comment
	// newest first, interleaved with a few equal timestamps
	for i := 0; i < 12; i++ {
		logs = append(logs, model.ActivityLog{ID: 100 - i, CreatedAt: base.Add(time.Duration(100-3*i) * time.Minute)})
		comments = append(comments, model.Comment{ID: 200 - i, CreatedAt: base.Add(time.Duration(100-4*i) * time.Minute)})
	}
	full := MergeFeed(logs, comments, 0, len(logs)+len(comments))
	assert.Len(t, full, 24)

	const limit = 5
	for page := 1; page <= 5; page++ {
		offset := (page - 1) * limit
		n := offset + limit
		l, c := logs, comments
		if n < len(l) {
			l = l[:n]
		}
		if n < len(c) {
			c = c[:n]
		}
		got := MergeFeed(l, c, offset, limit)

		end := offset + limit
		if end > len(full) {
			end = len(full)
		}
		assert.Equal(t, full[offset:end], got, "page %d", page)
	}
}

func TestMergeFeed_TiesPutLogFirst(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := MergeFeed(
		[]model.ActivityLog{{ID: 1, CreatedAt: ts}},
		[]model.Comment{{ID: 1, CreatedAt: ts}},
		0, 10,
	)
	assert.Equal(t, model.FeedItemLog, got[0].Type)
	assert.Equal(t, model.FeedItemComment, got[1].Type)
}

func TestMergeFeed_OffsetPastEnd(t *testing.T) {
	got := MergeFeed(nil, []model.Comment{{ID: 1}}, 5, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
