package repositories

import (
	"goblog/models"

	"gorm.io/gorm"
)

// PostRepository interface defines Post-related database operations
type PostRepository interface {
	Create(post *models.Post) error
	FindByID(id uint) (*models.Post, error)
	FindByAuthor(userID uint) ([]models.Post, error)
	FindAllRecent() ([]models.Post, error)
	Update(post *models.Post) error
	Delete(post *models.Post) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	result := r.db.Preload("Author").First(&post, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

// FindByAuthor returns the author's posts, most recent first.
func (r *postRepository) FindByAuthor(userID uint) ([]models.Post, error) {
	var posts []models.Post
	result := r.db.Preload("Author").
		Where("user_id = ?", userID).
		Order("date_posted desc").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

// FindAllRecent returns every post globally, most recent first (home feed).
func (r *postRepository) FindAllRecent() ([]models.Post, error) {
	var posts []models.Post
	result := r.db.Preload("Author").
		Order("date_posted desc").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (r *postRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) Delete(post *models.Post) error {
	return r.db.Delete(post).Error
}
