package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblog/models"
	"goblog/repositories"
)

// countingPosts wraps a real repository to observe write traffic.
type countingPosts struct {
	repositories.PostRepository
	updates int
}

func (c *countingPosts) Update(post *models.Post) error {
	c.updates++
	return c.PostRepository.Update(post)
}

func newPosts(t *testing.T) (PostService, *countingPosts, AccountService) {
	db := setupTestDB(t)
	counting := &countingPosts{PostRepository: repositories.NewPostRepository(db)}
	return NewPostService(counting), counting, NewAccountService(repositories.NewUserRepository(db))
}

func TestCreatePost(t *testing.T) {
	svc, _, accounts := newPosts(t)
	alice := register(t, accounts, "alice", "alice@example.com", "secret")

	t.Run("Success", func(t *testing.T) {
		post, err := svc.Create(alice.ID, "First post", "Hello there.")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, post.UserID)
		assert.False(t, post.DatePosted.IsZero())
	})

	t.Run("Title over the cap", func(t *testing.T) {
		_, err := svc.Create(alice.ID, strings.Repeat("x", models.TitleMaxLen+1), "body")
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})

	t.Run("Cap counts runes, not bytes", func(t *testing.T) {
		// 100 two-byte runes must pass; 101 must not.
		post, err := svc.Create(alice.ID, strings.Repeat("é", models.TitleMaxLen), "body")
		require.NoError(t, err)
		assert.Equal(t, models.TitleMaxLen, len([]rune(post.Title)))

		_, err = svc.Create(alice.ID, strings.Repeat("é", models.TitleMaxLen+1), "body")
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})
}

func TestGetPost(t *testing.T) {
	svc, _, _ := newPosts(t)
	_, err := svc.Get(12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePost(t *testing.T) {
	t.Run("Owner can update", func(t *testing.T) {
		svc, _, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		post, err := svc.Create(alice.ID, "Title", "Body")
		require.NoError(t, err)

		updated, err := svc.Update(post.ID, alice.ID, "New title", "New body")
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)

		got, err := svc.Get(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "New body", got.Content)
	})

	t.Run("Identical resubmission performs no write", func(t *testing.T) {
		svc, counting, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		post, err := svc.Create(alice.ID, "Title", "Body")
		require.NoError(t, err)

		_, err = svc.Update(post.ID, alice.ID, "Title", "Body")
		require.NoError(t, err)
		assert.Zero(t, counting.updates)
	})

	t.Run("Non-owner is rejected and post unchanged", func(t *testing.T) {
		svc, _, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		bob := register(t, accounts, "bob", "bob@example.com", "secret")
		post, err := svc.Create(alice.ID, "Title", "Body")
		require.NoError(t, err)

		_, err = svc.Update(post.ID, bob.ID, "Hijacked", "Gone")
		assert.ErrorIs(t, err, ErrForbidden)

		got, err := svc.Get(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Title", got.Title)
	})

	t.Run("Unknown post", func(t *testing.T) {
		svc, _, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		_, err := svc.Update(999, alice.ID, "Title", "Body")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("Owner can delete", func(t *testing.T) {
		svc, _, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		post, err := svc.Create(alice.ID, "Title", "Body")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(post.ID, alice.ID))

		_, err = svc.Get(post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Non-owner is rejected", func(t *testing.T) {
		svc, _, accounts := newPosts(t)
		alice := register(t, accounts, "alice", "alice@example.com", "secret")
		bob := register(t, accounts, "bob", "bob@example.com", "secret")
		post, err := svc.Create(alice.ID, "Title", "Body")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(post.ID, bob.ID), ErrForbidden)

		_, err = svc.Get(post.ID)
		assert.NoError(t, err)
	})
}

func TestListRecent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPostService(repositories.NewPostRepository(db))
	accounts := NewAccountService(repositories.NewUserRepository(db))
	alice := register(t, accounts, "alice", "alice@example.com", "secret")

	first, err := svc.Create(alice.ID, "Oldest", "a")
	require.NoError(t, err)
	second, err := svc.Create(alice.ID, "Newest", "b")
	require.NoError(t, err)
	// Pin the timestamps so ordering does not depend on clock resolution.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", first.ID).
		Update("date_posted", second.DatePosted.Add(-time.Hour)).Error)

	posts, err := svc.ListRecent()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Newest", posts[0].Title)
	assert.Equal(t, "Oldest", posts[1].Title)
	assert.Equal(t, "alice", posts[0].Author.Username, "author should be preloaded")
}
