package services

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"goblog/models"
	"goblog/repositories"
)

// The PostService interface defines post CRUD with owner-only mutation.
type PostService interface {
	Create(authorID uint, title, content string) (*models.Post, error)
	Get(id uint) (*models.Post, error)
	Update(id, requesterID uint, title, content string) (*models.Post, error)
	Delete(id, requesterID uint) error
	ListRecent() ([]models.Post, error)
	ListByAuthor(userID uint) ([]models.Post, error)
}

type postService struct {
	posts repositories.PostRepository
}

var _ PostService = (*postService)(nil)

// NewPostService creates a new PostService instance
func NewPostService(posts repositories.PostRepository) PostService {
	return &postService{posts: posts}
}

// Create persists a post owned by the given author. The title cap is
// enforced here as well as in the form binding; both count runes, not
// bytes, so multibyte titles are measured the same way.
func (s *postService) Create(authorID uint, title, content string) (*models.Post, error) {
	if utf8.RuneCountInString(title) > models.TitleMaxLen {
		return nil, ErrTitleTooLong
	}
	post := models.Post{
		Title:      title,
		Content:    content,
		DatePosted: time.Now(),
		UserID:     authorID,
	}
	if err := s.posts.Create(&post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return &post, nil
}

func (s *postService) Get(id uint) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// Update rewrites title and content when the requester owns the post.
// Identical resubmissions redirect without touching the database.
func (s *postService) Update(id, requesterID uint, title, content string) (*models.Post, error) {
	if utf8.RuneCountInString(title) > models.TitleMaxLen {
		return nil, ErrTitleTooLong
	}
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if post.UserID != requesterID {
		return nil, ErrForbidden
	}

	if post.Title != title || post.Content != content {
		post.Title = title
		post.Content = content
		if err := s.posts.Update(post); err != nil {
			return nil, fmt.Errorf("saving post updates: %w", err)
		}
	}
	return post, nil
}

// Delete removes the post when the requester owns it.
func (s *postService) Delete(id, requesterID uint) error {
	post, err := s.Get(id)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return ErrForbidden
	}
	if err := s.posts.Delete(post); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

func (s *postService) ListRecent() ([]models.Post, error) {
	return s.posts.FindAllRecent()
}

func (s *postService) ListByAuthor(userID uint) ([]models.Post, error) {
	return s.posts.FindByAuthor(userID)
}
