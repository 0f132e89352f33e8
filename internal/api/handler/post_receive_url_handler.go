package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/service"
	"gitolite-sync/pkg/responses"
	"gitolite-sync/pkg/utils"
)

type PostReceiveURLHandler struct {
	service service.PostReceiveURLService
}

func NewPostReceiveURLHandler(service service.PostReceiveURLService) *PostReceiveURLHandler {
	return &PostReceiveURLHandler{service: service}
}

// List 推送回调列表
// @Summary 推送回调列表
// @Tags PostReceiveURL
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Success 200 {object} responses.Response{data=[]model.PostReceiveURL}
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls [get]
func (h *PostReceiveURLHandler) List(c *gin.Context) {
	var param dto.ProjectParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	urls, err := h.service.List(param.ProjectID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, urls)
}

// Show 推送回调详情
// @Summary 推送回调详情
// @Tags PostReceiveURL
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Param id path int true "回调ID"
// @Success 200 {object} responses.Response{data=model.PostReceiveURL}
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls/{id} [get]
func (h *PostReceiveURLHandler) Show(c *gin.Context) {
	var param dto.ProjectItemParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	u, err := h.service.Get(param.ProjectID, param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, u)
}

// Create 创建推送回调
// @Summary 创建推送回调
// @Tags PostReceiveURL
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Param body body dto.CreatePostReceiveURLRequest true "回调"
// @Success 200 {object} responses.Response{data=model.PostReceiveURL}
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls [post]
func (h *PostReceiveURLHandler) Create(c *gin.Context) {
	var param dto.ProjectParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}
	var req dto.CreatePostReceiveURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	u, err := h.service.Create(param.ProjectID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.SuccessWithMessage(c, "回调地址已创建", u)
}

// Update 更新推送回调
// @Summary 更新推送回调
// @Tags PostReceiveURL
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Param id path int true "回调ID"
// @Param body body dto.UpdatePostReceiveURLRequest true "回调"
// @Success 200 {object} responses.Response{data=model.PostReceiveURL}
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls/{id} [put]
func (h *PostReceiveURLHandler) Update(c *gin.Context) {
	var param dto.ProjectItemParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}
	var req dto.UpdatePostReceiveURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	u, err := h.service.Update(param.ProjectID, param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.SuccessWithMessage(c, "回调地址已更新", u)
}

// Toggle 切换启用状态
// @Summary 切换推送回调启用状态
// @Tags PostReceiveURL
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Param id path int true "回调ID"
// @Success 200 {object} responses.Response{data=model.PostReceiveURL}
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls/{id}/toggle [put]
func (h *PostReceiveURLHandler) Toggle(c *gin.Context) {
	var param dto.ProjectItemParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	u, err := h.service.Toggle(param.ProjectID, param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	msg := "回调地址已禁用"
	if u.IsActive() {
		msg = "回调地址已启用"
	}
	responses.SuccessWithMessage(c, msg, u)
}

// Delete 删除推送回调
// @Summary 删除推送回调
// @Tags PostReceiveURL
// @Produce json
// @Security BearerAuth
// @Param project_id path int true "项目ID"
// @Param id path int true "回调ID"
// @Success 200 {object} responses.Response
// @Router /api/v1/projects/{project_id}/repository/post_receive_urls/{id} [delete]
func (h *PostReceiveURLHandler) Delete(c *gin.Context) {
	var param dto.ProjectItemParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.service.Delete(param.ProjectID, param.ID); err != nil {
		responses.Error(c, err)
		return
	}
	responses.SuccessWithMessage(c, "回调地址已删除", nil)
}
