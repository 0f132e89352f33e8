package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/service"
	"gitolite-sync/pkg/responses"
	"gitolite-sync/pkg/utils"
)

type KeyHandler struct {
	service service.KeyService
}

func NewKeyHandler(service service.KeyService) *KeyHandler {
	return &KeyHandler{service: service}
}

// List 用户的公钥列表
// @Summary 用户的公钥列表
// @Tags Key
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} responses.Response{data=[]dto.KeyResponse}
// @Router /api/v1/users/{id}/keys [get]
func (h *KeyHandler) List(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	keys, err := h.service.List(param.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, keys)
}

// Create 添加公钥
// @Summary 添加公钥
// @Tags Key
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body dto.CreateKeyRequest true "公钥"
// @Success 200 {object} responses.Response{data=dto.KeyResponse}
// @Router /api/v1/users/{id}/keys [post]
func (h *KeyHandler) Create(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}
	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	key, err := h.service.Create(c.Request.Context(), param.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, key)
}

// Delete 删除公钥
// @Summary 删除公钥
// @Tags Key
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param key_id path int true "公钥ID"
// @Success 200 {object} responses.Response
// @Router /api/v1/users/{id}/keys/{key_id} [delete]
func (h *KeyHandler) Delete(c *gin.Context) {
	var param dto.UserKeyParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), param.UserID, param.KeyID); err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, nil)
}
