package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitolite-sync/internal/dto"
	"gitolite-sync/pkg/responses"
	"gitolite-sync/pkg/utils"
)

// Dispatcher 批量操作入口
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, arg any) error
}

type AdminHandler struct {
	dispatcher Dispatcher
}

func NewAdminHandler(dispatcher Dispatcher) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher}
}

// Dispatch 手动执行批量操作, 同步返回结果
// @Summary 手动执行批量操作
// @Description 可选操作见 dispatch.Operations, 参数为空
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DispatchRequest true "操作名"
// @Success 200 {object} responses.Response{data=map[string]string}
// @Router /api/v1/admin/dispatch [post]
func (h *AdminHandler) Dispatch(c *gin.Context) {
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), req.Op, nil); err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, gin.H{"op": req.Op})
}
