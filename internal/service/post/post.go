package post

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
	"github.com/nkiryanov/starterkit/internal/service/validate"
)

// Average reading speed used to estimate read time
const wordsPerMinute = 200

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

type ListFilter struct {
	Status string // default published
	Tag    string
	Page   int // starts from 1
	Limit  int
}

type NewPost struct {
	Title         string
	Content       string
	Excerpt       string
	Status        string // default draft
	Tags          []string
	FeaturedImage *string
}

type PostService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*PostService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &PostService{storage: storage}, nil
}

// List posts newest first with their authors
func (s *PostService) List(ctx context.Context, f ListFilter) (models.Page[models.Post], error) {
	f.Page, f.Limit = models.Paginate(f.Page, f.Limit)
	if f.Status == "" {
		f.Status = models.PostStatusPublished
	}

	posts, total, err := s.storage.Post().ListPosts(ctx, repository.ListPostsFilter{
		Status: f.Status,
		Tag:    strings.TrimSpace(f.Tag),
		Limit:  f.Limit,
		Offset: models.Offset(f.Page, f.Limit),
	})
	if err != nil {
		return models.Page[models.Post]{}, fmt.Errorf("can't list posts. Err: %w", err)
	}

	return models.Page[models.Post]{Items: posts, Page: f.Page, Limit: f.Limit, Total: total}, nil
}

// Create post by the author
// Returns *apperrors.ValidationError or apperrors.ErrPostSlugTaken if another post has the same title
func (s *PostService) Create(ctx context.Context, author models.User, np NewPost) (models.Post, error) {
	if err := validate.Post(np.Title, np.Content, np.Excerpt, np.Status, np.FeaturedImage).Err(); err != nil {
		return models.Post{}, err
	}

	status := np.Status
	if status == "" {
		status = models.PostStatusDraft
	}

	slug := Slug(np.Title)
	if slug == "" {
		return models.Post{}, validate.Field("title", "Title must contain letters or digits")
	}

	post, err := s.storage.Post().CreatePost(ctx, repository.CreatePostParams{
		AuthorID:      author.ID,
		Title:         strings.TrimSpace(np.Title),
		Content:       np.Content,
		Excerpt:       strings.TrimSpace(np.Excerpt),
		Status:        status,
		Tags:          cleanTags(np.Tags),
		FeaturedImage: np.FeaturedImage,
		Slug:          slug,
		ReadTime:      ReadTime(np.Content),
	})
	if err != nil {
		return post, fmt.Errorf("can't create post. Err: %w", err)
	}

	return post, nil
}

// Slug lowercases the title and joins its letter and digit runs with '-'
func Slug(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// ReadTime in minutes
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
