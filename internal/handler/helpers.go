package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mdld/internal/pkg/errcode"
	appErr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrParse):
		response.Error(c, errcode.ErrParseFailed, err.Error())
	case errors.Is(err, appErr.ErrLimitExceeded):
		response.Error(c, errcode.ErrLimitExceeded, err.Error())
	case errors.Is(err, appErr.ErrSnapshotMissing):
		response.Error(c, errcode.ErrSnapshotMissing, err.Error())
	case errors.Is(err, appErr.ErrChunkMissing):
		response.Error(c, errcode.ErrChunkMissing, err.Error())
	case errors.Is(err, appErr.ErrDependencyUnsatisfied):
		response.Error(c, errcode.ErrDependencyUnsatisfied, err.Error())
	case errors.Is(err, appErr.ErrChecksumMismatch):
		response.Error(c, errcode.ErrChecksumMismatch, err.Error())
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
