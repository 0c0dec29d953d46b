package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/studyhall/stream/internal/domain"
)

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		step: time.Microsecond,
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// recordingSink collects emitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(_ context.Context, event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) named(name string) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type edgeKey struct {
	sourceID int64
	target   domain.Target
}

// memEdges is an in-memory RelationshipRepository.
type memEdges struct {
	mu      sync.Mutex
	nextID  int64
	edges   map[edgeKey]*domain.Relationship
	failing error
}

func newMemEdges() *memEdges {
	return &memEdges{edges: make(map[edgeKey]*domain.Relationship)}
}

func (m *memEdges) Upsert(_ context.Context, sourceID int64, target domain.Target, now time.Time) (domain.Relationship, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return domain.Relationship{}, false, m.failing
	}
	key := edgeKey{sourceID, target}
	if rel, ok := m.edges[key]; ok {
		if !rel.Deleted {
			return *rel, false, nil
		}
		rel.Deleted = false
		return *rel, true, nil
	}
	m.nextID++
	rel := &domain.Relationship{
		ID:        m.nextID,
		SourceID:  sourceID,
		Target:    target,
		CreatedOn: now,
	}
	m.edges[key] = rel
	return *rel, true, nil
}

func (m *memEdges) SoftDelete(_ context.Context, sourceID int64, target domain.Target) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.edges[edgeKey{sourceID, target}]
	if !ok || rel.Deleted {
		return false, nil
	}
	rel.Deleted = true
	return true, nil
}

func (m *memEdges) Get(_ context.Context, sourceID int64, target domain.Target) (domain.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.edges[edgeKey{sourceID, target}]
	if !ok {
		return domain.Relationship{}, domain.NotFoundError{Resource: "relationship"}
	}
	return *rel, nil
}

func (m *memEdges) Followers(_ context.Context, target domain.Target) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for key, rel := range m.edges {
		if key.target == target && !rel.Deleted {
			out = append(out, key.sourceID)
		}
	}
	return out, nil
}

func (m *memEdges) Following(_ context.Context, sourceID int64, kind *domain.ObjectKind) ([]domain.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Target
	for key, rel := range m.edges {
		if key.sourceID != sourceID || rel.Deleted {
			continue
		}
		if kind != nil && key.target.Kind != *kind {
			continue
		}
		out = append(out, key.target)
	}
	return out, nil
}

func (m *memEdges) IsFollowing(_ context.Context, sourceID int64, target domain.Target) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.edges[edgeKey{sourceID, target}]
	return ok && !rel.Deleted, nil
}

func (m *memEdges) CountFollowers(ctx context.Context, target domain.Target) (int64, error) {
	ids, _ := m.Followers(ctx, target)
	return int64(len(ids)), nil
}

func (m *memEdges) CountFollowing(ctx context.Context, sourceID int64, kind *domain.ObjectKind) (int64, error) {
	targets, _ := m.Following(ctx, sourceID, kind)
	return int64(len(targets)), nil
}

func (m *memEdges) PopularScopes(_ context.Context, limit int) ([]domain.ScopeRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int64)
	for key, rel := range m.edges {
		if key.target.Kind == domain.KindProject && !rel.Deleted {
			counts[key.target.ID]++
		}
	}
	var out []domain.ScopeRank
	for id, n := range counts {
		out = append(out, domain.ScopeRank{ScopeID: id, Count: n})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memActivities is an in-memory ActivityRepository. The feed queries
// serve canned results so feed tests control paging math directly.
type memActivities struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Activity

	feedItems []domain.Activity
	feedTotal int64
	feedErr   error
	ranks     []domain.ScopeRank
	rankCalls int
}

func newMemActivities() *memActivities {
	return &memActivities{rows: make(map[int64]*domain.Activity)}
}

func (m *memActivities) Create(_ context.Context, activity domain.Activity) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	activity.ID = m.nextID
	m.rows[activity.ID] = &activity
	return activity, nil
}

func (m *memActivities) Get(_ context.Context, id int64) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.Activity{}, domain.NotFoundError{Resource: "activity"}
	}
	return *row, nil
}

func (m *memActivities) SetDeleted(_ context.Context, id int64, deleted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "activity"}
	}
	row.Deleted = deleted
	return nil
}

func (m *memActivities) PublicFeed(context.Context, int) ([]domain.Activity, error) {
	if m.feedErr != nil {
		return nil, m.feedErr
	}
	return m.feedItems, nil
}

func (m *memActivities) DashboardFeed(_ context.Context, _ int64, _, _ []int64, _, _ int) ([]domain.Activity, int64, error) {
	if m.feedErr != nil {
		return nil, 0, m.feedErr
	}
	return m.feedItems, m.feedTotal, nil
}

func (m *memActivities) ActorFeed(_ context.Context, _ int64, _, _ int) ([]domain.Activity, int64, error) {
	if m.feedErr != nil {
		return nil, 0, m.feedErr
	}
	return m.feedItems, m.feedTotal, nil
}

func (m *memActivities) Replies(_ context.Context, rootID int64) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for _, row := range m.rows {
		if row.AbsReplyToID != nil && *row.AbsReplyToID == rootID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memActivities) ActiveScopes(context.Context, time.Time, int) ([]domain.ScopeRank, error) {
	m.rankCalls++
	return m.ranks, nil
}

// memComments is an in-memory CommentRepository.
type memComments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Comment
}

func newMemComments() *memComments {
	return &memComments{rows: make(map[int64]*domain.Comment)}
}

func (m *memComments) Create(_ context.Context, comment domain.Comment) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	m.rows[comment.ID] = &comment
	return comment, nil
}

func (m *memComments) Get(_ context.Context, id int64) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.Comment{}, domain.NotFoundError{Resource: "comment"}
	}
	return *row, nil
}

func (m *memComments) SetDeleted(_ context.Context, id int64, deleted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "comment"}
	}
	row.Deleted = deleted
	return nil
}

func (m *memComments) FirstLevel(_ context.Context, pageID int64, offset, limit int) ([]domain.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Comment
	for id := m.nextID; id >= 1; id-- {
		row, ok := m.rows[id]
		if ok && row.PageID == pageID && row.ReplyToID == nil {
			all = append(all, *row)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Comment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memComments) Replies(_ context.Context, rootID int64) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for id := int64(1); id <= m.nextID; id++ {
		row, ok := m.rows[id]
		if ok && row.AbsReplyToID != nil && *row.AbsReplyToID == rootID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memComments) Count(_ context.Context, pageID int64, firstLevelOnly bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.PageID != pageID {
			continue
		}
		if firstLevelOnly && row.ReplyToID != nil {
			continue
		}
		n++
	}
	return n, nil
}

// memCache is an in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *memCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// titleResolver resolves ids from a fixed title table.
type titleResolver struct {
	titles map[int64]string
	kind   domain.ObjectKind
	verbs  map[string]string
}

func (r *titleResolver) Resolve(_ context.Context, id int64) (domain.Resolution, error) {
	title, ok := r.titles[id]
	if !ok {
		return domain.Resolution{}, domain.TargetNotFoundError{
			Target: domain.Target{Kind: r.kind, ID: id},
		}
	}
	return domain.Resolution{Title: title}, nil
}

func (r *titleResolver) FriendlyVerb(verb string) (string, bool) {
	if r.verbs == nil {
		return "", false
	}
	label, ok := r.verbs[verb]
	return label, ok
}

type oracleFunc func(ctx context.Context, scopeID, actorID int64) (bool, error)

func (f oracleFunc) IsParticipant(ctx context.Context, scopeID, actorID int64) (bool, error) {
	return f(ctx, scopeID, actorID)
}
