package activity

import (
	"sort"

	"digihub/internal/model"
)

// MergeFeed tags logs and comments, orders them newest first and returns the
// window [offset, offset+limit). Each input must already be sorted newest first
// and hold at least offset+limit rows when that many exist, which is enough for
// the window of the merged stream to be exact.
func MergeFeed(logs []model.ActivityLog, comments []model.Comment, offset, limit int) []model.FeedItem {
	items := make([]model.FeedItem, 0, len(logs)+len(comments))
	for _, l := range logs {
		items = append(items, model.LogItem(l))
	}
	for _, c := range comments {
		items = append(items, model.CommentItem(c))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Type != b.Type {
			return a.Type == model.FeedItemLog
		}
		return a.ID > b.ID
	})

	if offset >= len(items) {
		return []model.FeedItem{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
