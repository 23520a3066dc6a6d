package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/pkg/errcode"
	"github.com/xxxsen/mdld/internal/pkg/response"
	"github.com/xxxsen/mdld/internal/service"
)

type MergeHandler struct {
	merge *service.MergeService
}

func NewMergeHandler(merge *service.MergeService) *MergeHandler {
	return &MergeHandler{merge: merge}
}

type mergeRequest struct {
	Base   *model.Patch `json:"base"`
	Ours   *model.Patch `json:"ours"`
	Theirs *model.Patch `json:"theirs"`
}

type mergeResponse struct {
	Merged    *model.Patch     `json:"merged"`
	Conflicts []model.Conflict `json:"conflicts"`
}

func (h *MergeHandler) ThreeWay(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Base == nil || req.Ours == nil || req.Theirs == nil {
		response.Error(c, errcode.ErrInvalid, "base, ours and theirs patches are required")
		return
	}
	for name, patch := range map[string]*model.Patch{"base": req.Base, "ours": req.Ours, "theirs": req.Theirs} {
		if err := patch.Validate(); err != nil {
			response.Error(c, errcode.ErrInvalid, name+" patch: "+err.Error())
			return
		}
	}
	merged, conflicts := h.merge.ThreeWay(c.Request.Context(), req.Base, req.Ours, req.Theirs, service.MergeOptions{})
	response.Success(c, mergeResponse{Merged: merged, Conflicts: conflicts})
}
