package posts

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/shared"
)

type mockRepository struct {
	posts  map[int64]Post
	nextID int64

	// Error injection
	listError error
	getError  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{posts: make(map[int64]Post), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, q ListQuery) ([]Summary, int, error) {
	if m.listError != nil {
		return nil, 0, m.listError
	}
	matched := []Post{}
	for _, p := range m.posts {
		if q.AuthorID > 0 && p.AuthorID != q.AuthorID {
			continue
		}
		if q.PublishedOnly && !p.IsPublished {
			continue
		}
		if q.Filters.Search != "" {
			needle := strings.ToLower(q.Filters.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Content), needle) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := q.Filters.Offset()
	if start > total {
		start = total
	}
	end := start + q.Filters.Limit
	if end > total {
		end = total
	}

	items := []Summary{}
	for _, p := range matched[start:end] {
		items = append(items, Summary{ID: p.ID, Title: p.Title, AuthorName: p.AuthorName, CreatedAt: p.CreatedAt, IsPublished: p.IsPublished})
	}
	return items, total, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Post, error) {
	if m.getError != nil {
		return Post{}, m.getError
	}
	p, ok := m.posts[id]
	if !ok {
		return Post{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, post Post) (int64, error) {
	post.ID = m.nextID
	m.nextID++
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	m.posts[post.ID] = post
	return post.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, post Post) error {
	stored, ok := m.posts[post.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.IsPublished = post.IsPublished
	stored.UpdatedAt = time.Now().UTC()
	m.posts[post.ID] = stored
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

var _ Repository = (*mockRepository)(nil)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func seedPost(t *testing.T, svc *Service, ownerID int64, title string, published bool) Post {
	t.Helper()
	post, err := svc.Create(context.Background(), ownerID, CreateRequest{
		Title:       title,
		Content:     "content of " + title,
		IsPublished: published,
	})
	require.NoError(t, err)
	return post
}

func TestCreatePost(t *testing.T) {
	svc := NewService(newMockRepository())

	post := seedPost(t, svc, 1, "  First Post  ", false)
	assert.Equal(t, "First Post", post.Title)
	assert.Equal(t, int64(1), post.AuthorID)
	assert.False(t, post.IsPublished)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), 0, CreateRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestCreatePostValidation(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), 1, CreateRequest{Title: "   ", Content: ""})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "this field may not be blank", ve.Fields["title"])
	assert.Equal(t, "this field may not be blank", ve.Fields["content"])

	_, err = svc.Create(context.Background(), 1, CreateRequest{
		Title:   strings.Repeat("a", 201),
		Content: "body",
	})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["title"], "at most 200")
}

func TestListScopesToOwner(t *testing.T) {
	svc := NewService(newMockRepository())
	seedPost(t, svc, 1, "mine one", false)
	seedPost(t, svc, 1, "mine two", true)
	seedPost(t, svc, 2, "theirs", true)

	items, page, err := svc.List(context.Background(), 1, shared.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page.Total)
}

func TestListAnonymousGetsEmptyPage(t *testing.T) {
	svc := NewService(newMockRepository())
	seedPost(t, svc, 1, "hidden", true)

	items, page, err := svc.List(context.Background(), 0, shared.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.Page)
}

func TestMineRequiresAuth(t *testing.T) {
	svc := NewService(newMockRepository())

	_, _, err := svc.Mine(context.Background(), 0, shared.ListFilters{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestPublishedIsPublicAcrossAuthors(t *testing.T) {
	svc := NewService(newMockRepository())
	seedPost(t, svc, 1, "draft", false)
	seedPost(t, svc, 1, "live one", true)
	seedPost(t, svc, 2, "live two", true)

	items, page, err := svc.Published(context.Background(), shared.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page.Total)
}

func TestListSearch(t *testing.T) {
	svc := NewService(newMockRepository())
	seedPost(t, svc, 1, "travel diary", true)
	seedPost(t, svc, 1, "recipe book", true)

	items, _, err := svc.List(context.Background(), 1, shared.ListFilters{Search: "travel"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "travel diary", items[0].Title)
}

func TestListPagination(t *testing.T) {
	svc := NewService(newMockRepository())
	for i := 0; i < 25; i++ {
		seedPost(t, svc, 1, "post "+strings.Repeat("x", i+1), false)
	}

	items, page, err := svc.List(context.Background(), 1, shared.ListFilters{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestGetIsPublic(t *testing.T) {
	svc := NewService(newMockRepository())
	created := seedPost(t, svc, 1, "readable", false)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateMergesPartialPayload(t *testing.T) {
	svc := NewService(newMockRepository())
	created := seedPost(t, svc, 1, "original title", false)

	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateRequest{
		IsPublished: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "original title", updated.Title)
	assert.Equal(t, "content of original title", updated.Content)
	assert.True(t, updated.IsPublished)
}

func TestUpdateValidatesMergedRecord(t *testing.T) {
	svc := NewService(newMockRepository())
	created := seedPost(t, svc, 1, "original title", false)

	_, err := svc.Update(context.Background(), 1, created.ID, UpdateRequest{
		Title: strPtr("   "),
	})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "this field may not be blank", ve.Fields["title"])

	// The stored record is untouched.
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original title", got.Title)
}

func TestUpdateForbiddenForNonAuthor(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	created := seedPost(t, svc, 1, "original title", false)

	// Ownership is checked before validation: an invalid payload from a
	// non-author still yields forbidden, not field errors.
	_, err := svc.Update(context.Background(), 2, created.ID, UpdateRequest{Title: strPtr("")})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Update(context.Background(), 0, created.ID, UpdateRequest{Title: strPtr("new")})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original title", got.Title)
}

func TestDelete(t *testing.T) {
	svc := NewService(newMockRepository())
	created := seedPost(t, svc, 1, "short lived", false)

	assert.ErrorIs(t, svc.Delete(context.Background(), 2, created.ID), shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), 0, created.ID), shared.ErrUnauthorized)
	require.NoError(t, svc.Delete(context.Background(), 1, created.ID))

	_, err := svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, created.ID), shared.ErrNotFound)
}
