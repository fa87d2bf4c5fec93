package controller

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/service"
	"campus_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	SettingsService *service.SettingsService
}

func NewSettingsController(settingsService *service.SettingsService) *SettingsController {
	return &SettingsController{SettingsService: settingsService}
}

// GetSettings godoc
// @Summary 获取个人设置
// @Description 未保存过设置时返回默认值
// @Tags 设置
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.UserSettings}
// @Router /api/settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	settings, err := c.SettingsService.GetSettings(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// bindAndUpdate 各分区的请求体都是可选字段，未给出的字段保持不变
func bindAndUpdate[T any](ctx *gin.Context, update func(uint, T) (*model.UserSettings, error)) {
	var overrides T
	if err := ctx.ShouldBindJSON(&overrides); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	settings, err := update(util.CurrentUserID(ctx), overrides)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// UpdateProfile godoc
// @Summary 更新个人资料设置
// @Tags 设置
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.ProfileOverrides true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.UserSettings}
// @Router /api/settings/profile [put]
func (c *SettingsController) UpdateProfile(ctx *gin.Context) {
	bindAndUpdate(ctx, func(userID uint, o model.ProfileOverrides) (*model.UserSettings, error) {
		return c.SettingsService.UpdateProfile(ctx.Request.Context(), userID, o)
	})
}

// UpdateNotifications godoc
// @Summary 更新通知设置
// @Tags 设置
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.NotificationOverrides true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.UserSettings}
// @Router /api/settings/notifications [put]
func (c *SettingsController) UpdateNotifications(ctx *gin.Context) {
	bindAndUpdate(ctx, func(userID uint, o model.NotificationOverrides) (*model.UserSettings, error) {
		return c.SettingsService.UpdateNotifications(ctx.Request.Context(), userID, o)
	})
}

// UpdatePrivacy godoc
// @Summary 更新隐私设置
// @Tags 设置
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.PrivacyOverrides true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.UserSettings}
// @Router /api/settings/privacy [put]
func (c *SettingsController) UpdatePrivacy(ctx *gin.Context) {
	bindAndUpdate(ctx, func(userID uint, o model.PrivacyOverrides) (*model.UserSettings, error) {
		return c.SettingsService.UpdatePrivacy(ctx.Request.Context(), userID, o)
	})
}

// UpdateAppearance godoc
// @Summary 更新外观设置
// @Tags 设置
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.AppearanceOverrides true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.UserSettings}
// @Router /api/settings/appearance [put]
func (c *SettingsController) UpdateAppearance(ctx *gin.Context) {
	bindAndUpdate(ctx, func(userID uint, o model.AppearanceOverrides) (*model.UserSettings, error) {
		return c.SettingsService.UpdateAppearance(ctx.Request.Context(), userID, o)
	})
}
