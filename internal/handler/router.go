package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Diff   *DiffHandler
	Merge  *MergeHandler
	Stream *StreamHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/diff", deps.Diff.Diff)
	api.POST("/merge", deps.Merge.ThreeWay)
	api.POST("/stream/emit", deps.Stream.Emit)
	api.POST("/stream/apply", deps.Stream.Apply)
}
