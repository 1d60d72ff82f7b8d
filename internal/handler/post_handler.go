package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/service"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/response"
)

// ListPosts handles GET /api/v1/posts.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.svc.Posts.ListPosts(ctx)
	if err != nil {
		writeError(c, err, "failed to list posts")
		return
	}

	response.Success(c, posts)
}

// CreatePost handles POST /api/v1/posts. A JSON body carries content and
// an optional image_url; a multipart body carries content and an optional
// "image" file, which is uploaded first.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.CreatePostRequest
	var uploaded string
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		url, ok := h.uploadFormImage(c, userID, "image", service.AssetPost, false)
		if !ok {
			return
		}
		req.Content = c.PostForm("content")
		if url != "" {
			uploaded = url
			req.ImageURL = &uploaded
		}
	} else if !bindJSON(c, &req) {
		return
	}

	post, err := h.svc.Posts.CreatePost(ctx, userID, &req)
	if err != nil {
		if uploaded != "" {
			h.discardImage(c, userID, uploaded)
		}
		writeError(c, err, "failed to create post")
		return
	}

	response.Created(c, post)
}

// GetPost handles GET /api/v1/posts/:post_id.
func (h *Handler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := h.svc.Posts.GetPost(ctx, c.Param("post_id"))
	if err != nil {
		writeError(c, err, "failed to get post")
		return
	}

	response.Success(c, post)
}

// DeletePost handles DELETE /api/v1/posts/:post_id.
func (h *Handler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Posts.DeletePost(ctx, userID, c.Param("post_id")); err != nil {
		writeError(c, err, "failed to delete post")
		return
	}

	response.NoContent(c)
}

// Like handles POST /api/v1/posts/:post_id/like.
func (h *Handler) Like(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	post, err := h.svc.Likes.Like(ctx, userID, c.Param("post_id"))
	if err != nil {
		writeError(c, err, "failed to like post")
		return
	}

	response.Success(c, post)
}

// Unlike handles DELETE /api/v1/posts/:post_id/like.
func (h *Handler) Unlike(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	post, err := h.svc.Likes.Unlike(ctx, userID, c.Param("post_id"))
	if err != nil {
		writeError(c, err, "failed to unlike post")
		return
	}

	response.Success(c, post)
}

// ListComments handles GET /api/v1/posts/:post_id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	comments, err := h.svc.Comments.ListPostComments(ctx, c.Param("post_id"))
	if err != nil {
		writeError(c, err, "failed to list comments")
		return
	}

	response.Success(c, comments)
}

// CreateComment handles POST /api/v1/posts/:post_id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req domain.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	req.PostID = c.Param("post_id")

	comment, err := h.svc.Comments.CreateComment(ctx, userID, &req)
	if err != nil {
		writeError(c, err, "failed to create comment")
		return
	}

	response.Created(c, comment)
}

// uploadFormImage uploads the multipart file under field. A missing file
// yields "" unless required.
func (h *Handler) uploadFormImage(c *gin.Context, userID, field string, kind service.AssetKind, required bool) (string, bool) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload is too large")
			return "", false
		case errors.Is(err, http.ErrMissingFile) && !required:
			return "", true
		case errors.Is(err, http.ErrMissingFile):
			response.Validation(c, field+" is required", map[string]string{field: "is required"})
			return "", false
		default:
			l.Warn().Err(err).Msg("malformed multipart body")
			response.BadRequest(c, "malformed multipart body")
			return "", false
		}
	}

	f, err := fh.Open()
	if err != nil {
		l.Error().Err(err).Msg("failed to open uploaded file")
		response.InternalError(c, "failed to read upload")
		return "", false
	}
	defer f.Close()

	url, err := h.svc.Assets.UploadImage(ctx, userID, f, kind)
	if err != nil {
		writeError(c, err, "failed to upload image")
		return "", false
	}
	return url, true
}

// discardImage removes an image whose owning write failed.
func (h *Handler) discardImage(c *gin.Context, userID, url string) {
	ctx := c.Request.Context()
	if err := h.svc.Assets.DeleteImage(ctx, userID, url); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldObjectKey, url).Msg("failed to discard orphaned image")
	}
}
