package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/pkg/errcode"
	"github.com/xxxsen/mdld/internal/pkg/response"
	"github.com/xxxsen/mdld/internal/service"
	"github.com/xxxsen/mdld/internal/stream"
)

type StreamHandler struct {
	stream *service.StreamService
}

func NewStreamHandler(streamSvc *service.StreamService) *StreamHandler {
	return &StreamHandler{stream: streamSvc}
}

type emitRequest struct {
	Old           string `json:"old"`
	New           string `json:"new"`
	Strategy      string `json:"strategy"`
	MaxParagraphs int    `json:"max_paragraphs"`
}

type emitResponse struct {
	Events []model.StreamEvent `json:"events"`
}

type applyRequest struct {
	Old           string              `json:"old"`
	Events        []model.StreamEvent `json:"events"`
	Strategy      string              `json:"strategy"`
	MaxParagraphs int                 `json:"max_paragraphs"`
}

type applyResponse struct {
	Result string `json:"result"`
}

func streamOptions(strategy string, maxParagraphs int) (service.StreamOptions, bool) {
	opts := service.StreamOptions{MaxParagraphs: maxParagraphs}
	switch strategy {
	case "":
	case string(stream.StrategyHeadings):
		opts.Strategy = stream.StrategyHeadings
	case string(stream.StrategyMaxParagraphs):
		opts.Strategy = stream.StrategyMaxParagraphs
	default:
		return service.StreamOptions{}, false
	}
	return opts, true
}

func (h *StreamHandler) Emit(c *gin.Context) {
	var req emitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	opts, ok := streamOptions(req.Strategy, req.MaxParagraphs)
	if !ok {
		response.Error(c, errcode.ErrInvalid, "unknown chunk strategy")
		return
	}
	events := h.stream.Emit(c.Request.Context(), req.Old, req.New, opts)
	response.Success(c, emitResponse{Events: events})
}

func (h *StreamHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	opts, ok := streamOptions(req.Strategy, req.MaxParagraphs)
	if !ok {
		response.Error(c, errcode.ErrInvalid, "unknown chunk strategy")
		return
	}
	result, err := h.stream.ApplyEvents(c.Request.Context(), req.Old, req.Events, opts)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, applyResponse{Result: result})
}
