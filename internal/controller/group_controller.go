package controller

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/service"
	"campus_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	GroupService *service.GroupService
}

func NewGroupController(groupService *service.GroupService) *GroupController {
	return &GroupController{GroupService: groupService}
}

func userIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "Invalid user ID")
		return 0, false
	}
	return uint(id), true
}

// SearchGroups godoc
// @Summary 搜索学习小组
// @Description 私有小组只对成员可见
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param query query string false "名称或简介关键字"
// @Param category query []string false "分类"
// @Param visibility query []string false "public/private"
// @Param hasOpenSlots query bool false "是否还有空位"
// @Param sortBy query string false "newest/oldest/members/activity/name"
// @Success 200 {object} util.Response{data=[]model.Group}
// @Router /api/groups [get]
func (c *GroupController) SearchGroups(ctx *gin.Context) {
	var f service.GroupFilter
	if err := ctx.ShouldBindQuery(&f); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	f.Category = splitList(f.Category)
	f.Visibility = splitList(f.Visibility)

	groups, err := c.GroupService.SearchGroups(ctx.Request.Context(), util.CurrentUserID(ctx), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// ListMyGroups godoc
// @Summary 我加入的小组
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Group}
// @Router /api/groups/mine [get]
func (c *GroupController) ListMyGroups(ctx *gin.Context) {
	groups, err := c.GroupService.ListMyGroups(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// CreateGroup godoc
// @Summary 创建小组
// @Description 创建者自动成为组长
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.GroupInput true "小组信息"
// @Success 201 {object} util.Response{data=model.Group}
// @Router /api/groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var in service.GroupInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	g, err := c.GroupService.CreateGroup(ctx.Request.Context(), util.CurrentUserID(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, g)
}

// GetGroup godoc
// @Summary 小组详情
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=model.Group}
// @Failure 404 {object} util.Response "小组不存在"
// @Router /api/groups/{id} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	g, err := c.GroupService.GetGroup(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// JoinGroup godoc
// @Summary 加入公开小组
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=model.Group}
// @Failure 400 {object} util.Response "小组已满"
// @Failure 409 {object} util.Response "已是成员"
// @Router /api/groups/{id}/join [post]
func (c *GroupController) JoinGroup(ctx *gin.Context) {
	g, err := c.GroupService.JoinGroup(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// LeaveGroup godoc
// @Summary 退出小组
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/leave [post]
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	if err := c.GroupService.LeaveGroup(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type AddMemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AddMember godoc
// @Summary 邀请成员
// @Description 组长或版主邀请用户加入，私有小组同样适用
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body AddMemberRequest true "用户ID"
// @Success 200 {object} util.Response{data=model.Group}
// @Router /api/groups/{id}/members [post]
func (c *GroupController) AddMember(ctx *gin.Context) {
	var req AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	g, err := c.GroupService.AddMember(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx), req.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

type UpdateRoleRequest struct {
	Role model.GroupRole `json:"role" binding:"required"`
}

// UpdateMemberRole godoc
// @Summary 修改成员角色
// @Description 仅组长可操作，小组至少保留一名组长
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param userId path int true "成员用户ID"
// @Param body body UpdateRoleRequest true "leader/moderator/member"
// @Success 200 {object} util.Response{data=model.Group}
// @Router /api/groups/{id}/members/{userId} [put]
func (c *GroupController) UpdateMemberRole(ctx *gin.Context) {
	userID, ok := userIDParam(ctx, "userId")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	g, err := c.GroupService.UpdateMemberRole(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx), userID, req.Role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// RemoveMember godoc
// @Summary 移除成员
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param userId path int true "成员用户ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/members/{userId} [delete]
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	userID, ok := userIDParam(ctx, "userId")
	if !ok {
		return
	}
	if err := c.GroupService.RemoveMember(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx), userID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListTasks godoc
// @Summary 小组任务列表
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=[]model.GroupTask}
// @Router /api/groups/{id}/tasks [get]
func (c *GroupController) ListTasks(ctx *gin.Context) {
	tasks, err := c.GroupService.ListTasks(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tasks)
}

// CreateTask godoc
// @Summary 创建任务
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body service.TaskInput true "任务信息"
// @Success 201 {object} util.Response{data=model.GroupTask}
// @Router /api/groups/{id}/tasks [post]
func (c *GroupController) CreateTask(ctx *gin.Context) {
	var in service.TaskInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	t, err := c.GroupService.CreateTask(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, t)
}

type TaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required"`
}

// UpdateTaskStatus godoc
// @Summary 更新任务状态
// @Description todo → in-progress → review → completed，未完成前可取消，取消后可重新打开
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param taskId path string true "任务ID"
// @Param body body TaskStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.GroupTask}
// @Failure 400 {object} util.Response "非法的状态流转"
// @Router /api/groups/{id}/tasks/{taskId}/status [patch]
func (c *GroupController) UpdateTaskStatus(ctx *gin.Context) {
	var req TaskStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	t, err := c.GroupService.UpdateTaskStatus(ctx.Request.Context(), ctx.Param("id"), ctx.Param("taskId"), util.CurrentUserID(ctx), req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

type AssignTaskRequest struct {
	AssigneeID *uint `json:"assigneeId"`
}

// AssignTask godoc
// @Summary 指派任务
// @Description assigneeId 为 null 时取消指派
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param taskId path string true "任务ID"
// @Param body body AssignTaskRequest true "成员用户ID"
// @Success 200 {object} util.Response{data=model.GroupTask}
// @Router /api/groups/{id}/tasks/{taskId}/assignee [put]
func (c *GroupController) AssignTask(ctx *gin.Context) {
	var req AssignTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	t, err := c.GroupService.AssignTask(ctx.Request.Context(), ctx.Param("id"), ctx.Param("taskId"), util.CurrentUserID(ctx), req.AssigneeID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// UploadFile godoc
// @Summary 上传小组文件
// @Tags 小组
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param file formData file true "文件"
// @Success 201 {object} util.Response{data=model.GroupFile}
// @Failure 400 {object} util.Response "文件类型或大小不合法"
// @Router /api/groups/{id}/files [post]
func (c *GroupController) UploadFile(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	f, err := c.GroupService.UploadFile(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx),
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, f)
}

// ListFiles godoc
// @Summary 小组文件列表
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=[]model.GroupFile}
// @Router /api/groups/{id}/files [get]
func (c *GroupController) ListFiles(ctx *gin.Context) {
	files, err := c.GroupService.ListFiles(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, files)
}

// PostDiscussion godoc
// @Summary 发起讨论
// @Tags 小组
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Param body body service.DiscussionInput true "讨论内容"
// @Success 201 {object} util.Response{data=model.GroupDiscussion}
// @Router /api/groups/{id}/discussions [post]
func (c *GroupController) PostDiscussion(ctx *gin.Context) {
	var in service.DiscussionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	d, err := c.GroupService.PostDiscussion(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, d)
}

// ListDiscussions godoc
// @Summary 小组讨论列表
// @Tags 小组
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小组ID"
// @Success 200 {object} util.Response{data=[]model.GroupDiscussion}
// @Router /api/groups/{id}/discussions [get]
func (c *GroupController) ListDiscussions(ctx *gin.Context) {
	list, err := c.GroupService.ListDiscussions(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
