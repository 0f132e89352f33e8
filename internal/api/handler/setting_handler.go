package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/service"
	"gitolite-sync/pkg/responses"
	"gitolite-sync/pkg/utils"
)

type SettingHandler struct {
	service service.SettingService
}

func NewSettingHandler(service service.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// Get 读取 gitolite 全局设置
// @Summary 读取全局设置
// @Tags Setting
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=dto.SettingsResponse}
// @Router /api/v1/settings [get]
func (h *SettingHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(model.PluginSettingName)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, settings)
}

// Save 保存全局设置, 返回修正后的值
// @Summary 保存全局设置
// @Tags Setting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SaveSettingsRequest true "设置项"
// @Success 200 {object} responses.Response{data=dto.SettingsResponse}
// @Router /api/v1/settings [put]
func (h *SettingHandler) Save(c *gin.Context) {
	var req dto.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	settings, err := h.service.Save(c.Request.Context(), model.PluginSettingName, req.Values)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, settings)
}
