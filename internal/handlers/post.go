package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/service/post"
)

func handleListPosts(postService postService, l logger.Logger) http.Handler {
	type response struct {
		Posts      []postResponse     `json:"posts"`
		Pagination paginationResponse `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := newQueryParser(r.URL.Query())
		filter := post.ListFilter{
			Status: q.String("status"),
			Tag:    q.String("category"),
			Page:   q.IntAtMost("page", models.MaxPage),
			Limit:  q.Int("limit"),
		}
		if fields := q.Fields(); fields != nil {
			render.ValidationFailed(w, fields)
			return
		}

		page, err := postService.List(r.Context(), filter)
		if err != nil {
			internalError(w, r, l, "Failed to list posts", err)
			return
		}

		render.JSON(w, response{
			Posts:      mapSlice(page.Items, newPostResponse),
			Pagination: newPaginationResponse(page),
		})
	})
}

func handleCreatePost(postService postService, l logger.Logger) http.Handler {
	type request struct {
		Title         string   `json:"title"`
		Content       string   `json:"content"`
		Excerpt       string   `json:"excerpt"`
		Status        string   `json:"status"`
		Tags          []string `json:"tags"`
		FeaturedImage *string  `json:"featuredImage"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := reqctx.User(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		created, err := postService.Create(r.Context(), user, post.NewPost{
			Title:         data.Title,
			Content:       data.Content,
			Excerpt:       data.Excerpt,
			Status:        data.Status,
			Tags:          data.Tags,
			FeaturedImage: data.FeaturedImage,
		})

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSONWithStatus(w, newPostResponse(created), http.StatusCreated)
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		case errors.Is(err, apperrors.ErrPostSlugTaken):
			render.ServiceError(w, "Post with this title already exists", http.StatusConflict)
		default:
			internalError(w, r, l, "Failed to create post", err)
		}
	})
}
