package portal

import (
	"context"
	"sort"
	"strings"

	"approval-portal/internal/application"
)

// ListCache holds the employee's full application list as last fetched.
// It is a disposable cache: every mutation is followed by a full reload,
// and a failed reload empties it rather than leaving a stale list
// displayed as current.
type ListCache struct {
	items []application.ApplicationResponse
}

// Load replaces the entire cached list with the fetch result. On error
// the cache is cleared and the error returned for a non-blocking notice.
func (c *ListCache) Load(ctx context.Context, fetch func(context.Context) ([]application.ApplicationResponse, error)) error {
	items, err := fetch(ctx)
	if err != nil {
		c.items = nil
		return err
	}
	c.items = items
	return nil
}

// Snapshot returns the cached list, newest first.
func (c *ListCache) Snapshot() []application.ApplicationResponse {
	out := make([]application.ApplicationResponse, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Find looks an application up by its number.
func (c *ListCache) Find(applnNo string) (application.ApplicationResponse, bool) {
	for _, app := range c.items {
		if app.ApplnNo == applnNo {
			return app, true
		}
	}
	return application.ApplicationResponse{}, false
}

// Search filters the snapshot by a case-insensitive substring over the
// number, name, and reason. An empty query returns the full snapshot.
func (c *ListCache) Search(query string) []application.ApplicationResponse {
	snapshot := c.Snapshot()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return snapshot
	}
	out := make([]application.ApplicationResponse, 0, len(snapshot))
	for _, app := range snapshot {
		haystack := strings.ToLower(app.ApplnNo + " " + app.Name + " " + app.Reason)
		if strings.Contains(haystack, query) {
			out = append(out, app)
		}
	}
	return out
}

// Len reports the cached size.
func (c *ListCache) Len() int {
	return len(c.items)
}
