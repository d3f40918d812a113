// internal/handlers/images.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"medical-back/internal/clinic"
	"medical-back/internal/middleware"
	"medical-back/internal/storage"
	"medical-back/pkg/imaging"
)

type imageView struct {
	ID  uint   `json:"id"`
	URL string `json:"url"`
}

// saveUpload validates one uploaded image and writes it to the store under a
// fresh key.
func saveUpload(ctx context.Context, store storage.ImageStore, fh *multipart.FileHeader, maxBytes int64) (string, error) {
	if fh.Size > maxBytes {
		return "", fmt.Errorf("%w: %s exceeds the %d MB upload limit", clinic.ErrInvalidInput, fh.Filename, maxBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType, r, err := imaging.Detect(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", clinic.ErrInvalidInput, fh.Filename, err)
	}
	key := storage.GenerateObjectName("image" + imaging.Extension(fh.Filename, contentType))
	if err := store.Put(ctx, key, r, fh.Size, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return key, nil
}

// discardObjects removes stored objects that no row refers to. Failures are
// only logged.
func discardObjects(ctx context.Context, store storage.ImageStore, log zerolog.Logger, keys ...string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to delete stored image")
		}
	}
}

func ListProcedureImages(store *clinic.Store, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		procID, ok := idParam(c, "id")
		if !ok {
			return
		}
		rows, err := store.ListProcedureImages(c.Request.Context(), middleware.CurrentDoctor(c).ID, procID)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]imageView, 0, len(rows))
		for _, img := range rows {
			url, err := images.URL(c.Request.Context(), img.Thumbnail)
			if err != nil {
				respondError(c, err)
				return
			}
			out = append(out, imageView{ID: img.ID, URL: url})
		}
		c.JSON(http.StatusOK, out)
	}
}

// UploadProcedureImages stores every file of the "images" field and records
// them in one transaction. Nothing is kept if any file is rejected.
func UploadProcedureImages(store *clinic.Store, images storage.ImageStore, maxBytes int64, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		procID, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		doctorID := middleware.CurrentDoctor(c).ID

		if _, err := store.GetProcedure(ctx, doctorID, procID); err != nil {
			respondError(c, err)
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No images provided"})
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No images provided"})
			return
		}

		keys := make([]string, 0, len(files))
		for _, fh := range files {
			key, err := saveUpload(ctx, images, fh, maxBytes)
			if err != nil {
				discardObjects(ctx, images, log, keys...)
				respondError(c, err)
				return
			}
			keys = append(keys, key)
		}

		rows, err := store.AddProcedureImages(ctx, doctorID, procID, keys)
		if err != nil {
			discardObjects(ctx, images, log, keys...)
			respondError(c, err)
			return
		}

		out := make([]imageView, 0, len(rows))
		for _, img := range rows {
			url, err := images.URL(ctx, img.Thumbnail)
			if err != nil {
				respondError(c, err)
				return
			}
			out = append(out, imageView{ID: img.ID, URL: url})
		}
		log.Info().Uint("procedure_id", procID).Int("count", len(out)).Msg("procedure images uploaded")
		c.JSON(http.StatusCreated, out)
	}
}

// DeleteProcedureImage removes the stored object and then the row. A missing
// object does not block removing the row.
func DeleteProcedureImage(store *clinic.Store, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		procID, ok := idParam(c, "id")
		if !ok {
			return
		}
		imageID, ok := idParam(c, "image_id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		img, err := store.GetProcedureImage(ctx, middleware.CurrentDoctor(c).ID, procID, imageID)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := images.Delete(ctx, img.Thumbnail); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			respondError(c, err)
			return
		}
		if err := store.DeleteProcedureImage(ctx, img); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ServeMedia streams an object from the store. It backs the URLs handed out by
// the local backend.
func ServeMedia(images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		rc, err := images.Open(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		defer rc.Close()
		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}
