package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/dto"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/http/response"
	"github.com/recipebox/recipebox-server/internal/media/images"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// handleUploadImage accepts a multipart image for one of the user's
// recipes and returns {id, image}.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || recipeID <= 0 {
		response.NotFound(w, "recipe not found", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(s.opts.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.RequestTooLarge(w, "image exceeds the maximum upload size", s.logger)
			return
		}
		response.BadRequest(w, "expected a multipart/form-data body", s.logger)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		response.HandleError(w, domainerrors.FieldValidation(imageField, "no file was submitted"), s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("Failed to read upload", "recipe_id", recipeID, "error", err)
		response.InternalError(w, "failed to read upload", s.logger)
		return
	}

	recipe, err := s.services.Recipe.UploadImage(ctx, userID, recipeID, header.Filename, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, dto.Render(dto.OpUploadImage, &domain.RecipeDetail{Recipe: recipe}, s.opts.MediaURL), s.logger)
}

// handleServeMedia serves stored images by reference. Names are random
// and never reused, so responses are cacheable.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "*")

	full, err := s.images.Path(ref)
	if err != nil || path.Dir(ref) != images.RecipeDir {
		http.NotFound(w, r)
		return
	}
	contentType, ok := images.ContentType(ref)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", CacheOneWeek)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
