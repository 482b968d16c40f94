package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/internal/service"
	"agencydesk/creator-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type rejectedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// MediaUpload accepts a multipart batch (files + creator_id + optional
// folder + category_id) and starts an upload batch. Validation failures are
// reported per file and never reach storage; accepted files upload in the
// background and are tracked via the progress endpoint.
func (a *API) MediaUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	profile := c.MustGet("profile").(*model.Profile)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No files provided",
			"requestID": requestID,
		})
		return
	}

	creatorID := c.PostForm("creator_id")
	if creatorID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No creator_id provided",
			"requestID": requestID,
		})
		return
	}

	var creator model.Creator
	if err := a.DB.Where("id = ?", creatorID).First(&creator).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Creator not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to query creator", zap.Error(err))
		return
	}

	// Creators may upload into their own space even without the admin
	// default; everyone else needs the derived upload permission
	var override *service.PermissionOverride
	if creator.ProfileID != nil && *creator.ProfileID == profile.ID {
		override = &service.PermissionOverride{CanUpload: true, CanDownload: true}
	}

	if !service.EffectivePermissions(profile.PrimaryRole, profile.AdditionalRoles, override).CanUpload {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "You are not allowed to upload files",
			"requestID": requestID,
		})
		return
	}

	var categoryID *string
	if v := c.PostForm("category_id"); v != "" {
		categoryID = &v
	}

	var accepted []service.FileInput
	var rejected []rejectedFile

	for _, fh := range files {
		code, detected, err := validators.FileValidator(fh)
		if err != nil {
			if code == http.StatusInternalServerError {
				zap.L().Error("Failed to validate file", zap.Error(err))
				err = validators.ErrFileTypeUnsupported
			}

			rejected = append(rejected, rejectedFile{Name: fh.Filename, Error: err.Error()})
			continue
		}

		// Archives can't go anywhere without a category to create their
		// folder in; reject up front so no entry ever starts
		if detected == "application/zip" && categoryID == nil {
			rejected = append(rejected, rejectedFile{Name: fh.Filename, Error: validators.ErrZipNeedsCategory.Error()})
			continue
		}

		src, err := fh.Open()
		if err != nil {
			rejected = append(rejected, rejectedFile{Name: fh.Filename, Error: "failed to read file"})
			continue
		}

		temp, err := os.CreateTemp("", "upload-*")
		if err == nil {
			_, err = io.Copy(temp, src)
			temp.Close()
		}
		src.Close()
		if err != nil {
			if temp != nil {
				os.Remove(temp.Name())
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to spool upload to disk", zap.Error(err))
			return
		}

		accepted = append(accepted, service.FileInput{
			Name:     fh.Filename,
			MimeType: detected,
			Size:     fh.Size,
			Path:     temp.Name(),
		})
	}

	if len(accepted) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No valid files in batch",
			"rejected":  rejected,
			"requestID": requestID,
		})
		return
	}

	// The batch outlives this request, so detach it from the request context
	batch, err := a.Uploader.Run(context.WithoutCancel(c.Request.Context()), service.BatchInput{
		CreatorID:  creatorID,
		FolderID:   c.PostForm("folder"),
		CategoryID: categoryID,
		Bucket:     viper.GetString("s3.bucket"),
		Files:      accepted,
	}, func(completed []string) {
		zap.L().Info("Upload batch finished",
			zap.String("creator_id", creatorID),
			zap.Int("uploaded", len(completed)))
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	batchID := uuid.NewString()
	a.trackBatch(batchID, batch)

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batchID,
		"files":    batch.Snapshot(),
		"rejected": rejected,
	})
}
