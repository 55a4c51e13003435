package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID            uuid.UUID
	AuthorID      uuid.UUID
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Tags          []string
	FeaturedImage *string
	Slug          string
	ReadTime      int
	Views         int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Filled on listing only
	Author *PostAuthor
}

type PostAuthor struct {
	ID    uuid.UUID
	Name  string
	Email string
}
