package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
	"github.com/mkweon/barunpos-backend/internal/storage"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type UploadController struct {
	s3 *storage.S3Storage
}

func NewUploadController(s3 *storage.S3Storage) *UploadController {
	return &UploadController{s3: s3}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Presign hands out a presigned PUT URL for a product image upload
// POST /api/v1/uploads/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.s3 == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadNotConfigured, "파일 업로드가 설정되지 않았습니다")
		return
	}

	businessID, _ := middleware.GetBusinessID(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	if err := ctrl.s3.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "이미지 파일만 업로드할 수 있습니다")
		return
	}

	presigned, err := ctrl.s3.GeneratePresignedURL(businessID, req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, presigned)
}
