package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

type PostRepo struct {
	DB DBTX
}

const createPost = `-- name: CreatePost
INSERT INTO posts (id, author_id, title, content, excerpt, status, tags, featured_image, slug, read_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, author_id, title, content, excerpt, status, tags, featured_image, slug, read_time, views, created_at, updated_at
`

func (r *PostRepo) CreatePost(ctx context.Context, p repository.CreatePostParams) (models.Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	rows, _ := r.DB.Query(ctx, createPost,
		uuid.New(), p.AuthorID, p.Title, p.Content, p.Excerpt, p.Status, tags, p.FeaturedImage, p.Slug, p.ReadTime,
	)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
			return post, apperrors.ErrPostSlugTaken
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			return post, apperrors.ErrUserNotFound
		default:
			return post, fmt.Errorf("db error: %w", err)
		}
	}

	return post, nil
}

const countPosts = `-- name: CountPosts
SELECT COUNT(*) FROM posts p
WHERE p.status = $1 AND ($2 = '' OR $2 = ANY(p.tags))
`

const listPosts = `-- name: ListPosts
SELECT p.id, p.author_id, p.title, p.content, p.excerpt, p.status, p.tags, p.featured_image, p.slug, p.read_time, p.views, p.created_at, p.updated_at,
       u.name, u.email
FROM posts p
JOIN users u ON u.id = p.author_id
WHERE p.status = $1 AND ($2 = '' OR $2 = ANY(p.tags))
ORDER BY p.created_at DESC, p.id
LIMIT $3 OFFSET $4
`

func (r *PostRepo) ListPosts(ctx context.Context, f repository.ListPostsFilter) ([]models.Post, int, error) {
	var total int
	err := r.DB.QueryRow(ctx, countPosts, f.Status, f.Tag).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, listPosts, f.Status, f.Tag, f.Limit, f.Offset)
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Post, error) {
		var p models.Post
		author := models.PostAuthor{}
		err := row.Scan(
			&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Tags, &p.FeaturedImage,
			&p.Slug, &p.ReadTime, &p.Views, &p.CreatedAt, &p.UpdatedAt,
			&author.Name, &author.Email,
		)
		author.ID = p.AuthorID
		p.Author = &author
		return p, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return posts, total, nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Tags, &p.FeaturedImage,
		&p.Slug, &p.ReadTime, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
