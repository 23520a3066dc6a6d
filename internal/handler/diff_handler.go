package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mdld/internal/pkg/errcode"
	"github.com/xxxsen/mdld/internal/pkg/response"
	"github.com/xxxsen/mdld/internal/service"
)

type DiffHandler struct {
	diff *service.DiffService
}

func NewDiffHandler(diff *service.DiffService) *DiffHandler {
	return &DiffHandler{diff: diff}
}

type diffRequest struct {
	Old                 string            `json:"old"`
	New                 string            `json:"new"`
	FromRev             string            `json:"from_rev"`
	ToRev               string            `json:"to_rev"`
	SimilarityThreshold float64           `json:"similarity_threshold"`
	Meta                map[string]string `json:"meta"`
	Strict              bool              `json:"strict"`
	Subject             string            `json:"subject"`
}

func (h *DiffHandler) Diff(c *gin.Context) {
	var req diffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	patch, err := h.diff.Diff(c.Request.Context(), req.Old, req.New, service.DiffOptions{
		FromRev:             req.FromRev,
		ToRev:               req.ToRev,
		SimilarityThreshold: req.SimilarityThreshold,
		Meta:                req.Meta,
		Strict:              req.Strict,
		Subject:             req.Subject,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, patch)
}
