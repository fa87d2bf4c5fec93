package controller

import (
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/service"
	"campus_portal_backend/internal/util"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type ForumController struct {
	ForumService *service.ForumService
}

func NewForumController(forumService *service.ForumService) *ForumController {
	return &ForumController{ForumService: forumService}
}

// splitList 支持 ?tags=a&tags=b 与 ?tags=a,b 两种写法
func splitList[T ~string](values []T) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(string(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, T(part))
			}
		}
	}
	return out
}

// paginate page 为空时返回完整列表
func paginate(ctx *gin.Context, list []model.Question) interface{} {
	if ctx.Query("page") == "" {
		return list
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	// 先比较页号再相乘，超大的 page 不会溢出
	start := len(list)
	if page-1 < (len(list)+limit-1)/limit {
		start = (page - 1) * limit
	}
	end := len(list)
	if limit < end-start {
		end = start + limit
	}
	return util.PageResponse{
		List:  list[start:end],
		Total: int64(len(list)),
		Page:  page,
		Limit: limit,
	}
}

// SearchQuestions godoc
// @Summary 搜索问题
// @Description 关键字、标签、状态、是否有回答、是否有最佳回答组合筛选，结果稳定排序
// @Tags 论坛
// @Produce json
// @Param query query string false "标题或内容关键字"
// @Param tags query []string false "标签（任一匹配）"
// @Param status query []string false "状态 open/answered/closed/flagged"
// @Param hasAnswers query bool false "是否有回答"
// @Param hasBestAnswer query bool false "是否有最佳回答"
// @Param sortBy query string false "newest/oldest/votes/activity/views"
// @Param page query int false "页码，不传则返回全部"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/forum/questions [get]
func (c *ForumController) SearchQuestions(ctx *gin.Context) {
	var f service.QuestionFilter
	if err := ctx.ShouldBindQuery(&f); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	f.Tags = splitList(f.Tags)
	f.Status = splitList(f.Status)

	list, err := c.ForumService.SearchQuestions(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, paginate(ctx, list))
}

// CreateQuestion godoc
// @Summary 发布问题
// @Tags 论坛
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionInput true "问题内容"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "参数校验失败"
// @Failure 401 {object} util.Response "未登录"
// @Router /api/forum/questions [post]
func (c *ForumController) CreateQuestion(ctx *gin.Context) {
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ForumService.CreateQuestion(ctx.Request.Context(), util.CurrentUserID(ctx), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// viewerKey 登录用户按 ID 去重，游客按 IP
func viewerKey(ctx *gin.Context) string {
	if id := util.CurrentUserID(ctx); id != 0 {
		return fmt.Sprintf("u%d", id)
	}
	return "ip" + ctx.ClientIP()
}

// GetQuestion godoc
// @Summary 问题详情
// @Description 返回问题和排序后的回答（最佳回答在前），同一访客在时间窗口内只计一次浏览
// @Tags 论坛
// @Produce json
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response{data=service.QuestionDetail}
// @Failure 404 {object} util.Response "问题不存在"
// @Router /api/forum/questions/{id} [get]
func (c *ForumController) GetQuestion(ctx *gin.Context) {
	detail, err := c.ForumService.GetQuestion(ctx.Request.Context(), ctx.Param("id"), viewerKey(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateAnswer godoc
// @Summary 回答问题
// @Tags 论坛
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问题ID"
// @Param body body service.AnswerInput true "回答内容"
// @Success 201 {object} util.Response{data=model.Answer}
// @Failure 400 {object} util.Response "参数校验失败或问题已关闭"
// @Failure 404 {object} util.Response "问题不存在"
// @Router /api/forum/questions/{id}/answers [post]
func (c *ForumController) CreateAnswer(ctx *gin.Context) {
	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.ForumService.CreateAnswer(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id"), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

type BestAnswerRequest struct {
	AnswerID string `json:"answerId" binding:"required"`
}

// SelectBestAnswer godoc
// @Summary 选择最佳回答
// @Description 只有提问者可以操作；重复选择同一回答无副作用
// @Tags 论坛
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问题ID"
// @Param body body BestAnswerRequest true "回答ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "不是提问者"
// @Failure 404 {object} util.Response "问题或回答不存在"
// @Router /api/forum/questions/{id}/best-answer [post]
func (c *ForumController) SelectBestAnswer(ctx *gin.Context) {
	var req BestAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questionID := ctx.Param("id")
	if err := c.ForumService.SelectBestAnswer(ctx.Request.Context(), questionID, req.AnswerID, util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questionId": questionID, "bestAnswerId": req.AnswerID})
}

// FlagQuestion godoc
// @Summary 举报问题
// @Tags 论坛
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/forum/questions/{id}/flag [post]
func (c *ForumController) FlagQuestion(ctx *gin.Context) {
	q, err := c.ForumService.FlagQuestion(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CloseQuestion godoc
// @Summary 关闭问题
// @Description 提问者、教师或管理员可以关闭问题
// @Tags 论坛
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "问题ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 403 {object} util.Response "无权限"
// @Router /api/forum/questions/{id}/close [post]
func (c *ForumController) CloseQuestion(ctx *gin.Context) {
	q, err := c.ForumService.CloseQuestion(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

type VoteRequest struct {
	VoteType model.VoteType `json:"voteType" binding:"required"`
}

// CastVote godoc
// @Summary 投票
// @Description 同类型再投为撤销，反类型为替换
// @Tags 论坛
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "question 或 answer"
// @Param id path string true "目标ID"
// @Param body body VoteRequest true "upvote 或 downvote"
// @Success 200 {object} util.Response{data=model.VoteResult}
// @Failure 404 {object} util.Response "目标不存在"
// @Router /api/forum/{type}/{id}/vote [post]
func (c *ForumController) CastVote(ctx *gin.Context) {
	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.ForumService.CastVote(ctx.Request.Context(), ctx.Param("id"),
		model.VoteTargetType(ctx.Param("type")), req.VoteType, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// RemoveVote godoc
// @Summary 撤销投票
// @Tags 论坛
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "question 或 answer"
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=model.VoteResult}
// @Router /api/forum/{type}/{id}/vote [delete]
func (c *ForumController) RemoveVote(ctx *gin.Context) {
	res, err := c.ForumService.RemoveVote(ctx.Request.Context(), ctx.Param("id"),
		model.VoteTargetType(ctx.Param("type")), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// GetMyVote godoc
// @Summary 当前用户的投票
// @Description 没有投票时 data 为 null
// @Tags 论坛
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "question 或 answer"
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=model.Vote}
// @Router /api/forum/{type}/{id}/vote [get]
func (c *ForumController) GetMyVote(ctx *gin.Context) {
	vote, err := c.ForumService.GetUserVote(ctx.Request.Context(), ctx.Param("id"),
		model.VoteTargetType(ctx.Param("type")), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, vote)
}

// GetPopularTags godoc
// @Summary 热门标签
// @Tags 论坛
// @Produce json
// @Param limit query int false "数量，不传或 <=0 返回全部"
// @Success 200 {object} util.Response{data=[]model.Tag}
// @Router /api/forum/tags/popular [get]
func (c *ForumController) GetPopularTags(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	tags, err := c.ForumService.GetPopularTags(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tags)
}

// ListFlagged godoc
// @Summary 被举报的问题
// @Tags 论坛
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 403 {object} util.Response "仅教师和管理员"
// @Router /api/forum/moderation/flagged [get]
func (c *ForumController) ListFlagged(ctx *gin.Context) {
	list, err := c.ForumService.ListFlagged(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
