package formatter

import (
	"fmt"
	"sort"
	"strings"

	"digihub/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// RenderFeed prints one page of feed items followed by the pagination footer.
func RenderFeed(feed *model.Feed) string {
	var b strings.Builder
	if len(feed.Items) == 0 {
		if feed.Pagination.Page <= 1 {
			b.WriteString(StyleDim.Render("No activity yet.") + "\n")
		} else {
			b.WriteString(StyleDim.Render("No more activity.") + "\n")
		}
	}
	for _, it := range feed.Items {
		b.WriteString(renderItem(it))
	}
	p := feed.Pagination
	b.WriteString(StyleDim.Render(fmt.Sprintf("page %d/%d, %d items", p.Page, p.TotalPages, p.Total)) + "\n")
	return b.String()
}

func renderItem(it model.FeedItem) string {
	who := it.UserName
	if who == "" {
		who = "system"
	}
	head := StyleDim.Render(it.CreatedAt.Local().Format(timeLayout)) + " " + StyleBold.Render(who)

	switch it.Type {
	case model.FeedItemLog:
		line := fmt.Sprintf("%s %s %s", head, StyleYellow.Render(string(it.Action)), it.EntityName)
		for _, d := range describeDetails(it.Details) {
			line += "\n    " + StyleDim.Render(d)
		}
		return line + "\n"
	default:
		line := fmt.Sprintf("%s %s %s", head, StyleDim.Render(fmt.Sprintf("#%d", it.ID)), it.Content)
		if it.RepliesCount != nil && *it.RepliesCount > 0 {
			line += " " + StyleBlue.Render(fmt.Sprintf("(%d replies)", *it.RepliesCount))
		}
		return line + "\n"
	}
}

func describeDetails(d model.Details) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		field := strings.TrimSuffix(k, "_changed")
		out = append(out, fmt.Sprintf("%s: %v -> %v", field, show(d[k].From), show(d[k].To)))
	}
	return out
}

func show(v any) any {
	if v == nil {
		return "none"
	}
	return v
}

// RenderComments prints a reply thread, oldest first.
func RenderComments(comments []model.Comment) string {
	if len(comments) == 0 {
		return StyleDim.Render("No replies.") + "\n"
	}
	var b strings.Builder
	for _, c := range comments {
		fmt.Fprintf(&b, "%s %s %s %s\n",
			StyleDim.Render(c.CreatedAt.Local().Format(timeLayout)),
			StyleBold.Render(c.UserName),
			StyleDim.Render(fmt.Sprintf("#%d", c.ID)),
			c.Content,
		)
		if c.RepliesCount > 0 {
			b.WriteString("    " + StyleBlue.Render(fmt.Sprintf("(%d replies)", c.RepliesCount)) + "\n")
		}
	}
	return b.String()
}
