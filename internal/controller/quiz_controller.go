package controller

import (
	"khattha_backend/internal/model"
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	GradingService *service.GradingService
	SubjectService *service.SubjectService
	AccessService  *service.AccessService
}

func NewQuizController(quizService *service.QuizService, gradingService *service.GradingService,
	subjectService *service.SubjectService, accessService *service.AccessService) *QuizController {
	return &QuizController{
		QuizService:    quizService,
		GradingService: gradingService,
		SubjectService: subjectService,
		AccessService:  accessService,
	}
}

// checkQuizAccess 定位测验所属科目并执行订阅闸门，管理员直接放行
func (c *QuizController) checkQuizAccess(ctx *gin.Context, quizID uint) bool {
	claims := util.GetUserFromContext(ctx)
	if claims.Role == model.Admin {
		return true
	}

	full, err := c.QuizService.GetFullQuiz(quizID)
	if err != nil {
		respondError(ctx, err)
		return false
	}

	decision := c.AccessService.CheckAccess(claims.UserID, full.SubjectID)
	if !decision.Allowed {
		util.Forbidden(ctx, decision.Reason)
		return false
	}
	return true
}

// Create godoc
// @Summary 创建测验
// @Description 测验连同题目与选项在一个事务内创建，校验失败不落库
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateQuizReq true "测验信息"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "校验失败"
// @Router /api/admin/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	quiz, err := c.QuizService.CreateQuiz(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

type modelAnswerRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// AttachModelAnswer godoc
// @Summary 补充范例答案
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Param   body body modelAnswerRequest true "范例答案"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/admin/quizzes/{id}/model-answer [post]
func (c *QuizController) AttachModelAnswer(ctx *gin.Context) {
	var req modelAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.AttachModelAnswer(util.ParseUintOrZero(ctx.Param("id")), req.Text, req.ImageURL)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// GetFull godoc
// @Summary 测验详情（含答案）
// @Description 管理端视图，带选项正误与范例答案
// @Tags 测验管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response{data=repository.FullQuiz}
// @Router /api/admin/quizzes/{id} [get]
func (c *QuizController) GetFull(ctx *gin.Context) {
	full, err := c.QuizService.GetFullQuiz(util.ParseUintOrZero(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, full)
}

// ListBySubject godoc
// @Summary 科目下的测验列表
// @Tags 测验管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Param   type query string false "按类型过滤 daily|monthly|semester"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/admin/subjects/{id}/quizzes [get]
func (c *QuizController) ListBySubject(ctx *gin.Context) {
	subjectID := util.ParseUintOrZero(ctx.Param("id"))

	var quizzes []model.Quiz
	var err error
	if quizType := ctx.Query("type"); quizType != "" {
		quizzes, err = c.QuizService.ListBySubjectAndType(subjectID, model.QuizType(quizType))
	} else {
		quizzes, err = c.QuizService.ListBySubject(subjectID)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// Delete godoc
// @Summary 删除测验
// @Description 级联删除题目、选项与学生作答
// @Tags 测验管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	if err := c.QuizService.DeleteQuiz(util.ParseUintOrZero(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetForStudent godoc
// @Summary 答题视图
// @Description 不含选项正误与范例答案
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response{data=service.StudentQuiz}
// @Failure 403 {object} util.Response "无有效订阅"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetForStudent(ctx *gin.Context) {
	quizID := util.ParseUintOrZero(ctx.Param("id"))
	if !c.checkQuizAccess(ctx, quizID) {
		return
	}

	quiz, err := c.QuizService.GetQuizForStudent(quizID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Submit godoc
// @Summary 提交作答
// @Description 重复提交覆盖旧作答；daily 测验只有首次作答持久化分数
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Param   body body service.SubmitQuizReq true "作答内容"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response "作答形态不合法"
// @Failure 403 {object} util.Response "无有效订阅"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	var req service.SubmitQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quizID := util.ParseUintOrZero(ctx.Param("id"))
	if !c.checkQuizAccess(ctx, quizID) {
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.Submit(claims.UserID, quizID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetDaily godoc
// @Summary 学习日小测
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Param   day query int true "学习日"
// @Success 200 {object} util.Response{data=service.StudentQuiz}
// @Router /api/subjects/{id}/daily-quiz [get]
func (c *QuizController) GetDaily(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subjectID := util.ParseUintOrZero(ctx.Param("id"))
	day := int(util.ParseUintOrZero(ctx.Query("day")))
	if day < 1 {
		util.BadRequest(ctx, "day must be a positive integer")
		return
	}

	if claims.Role != model.Admin {
		decision := c.AccessService.CheckAccess(claims.UserID, subjectID)
		if !decision.Allowed {
			util.Forbidden(ctx, decision.Reason)
			return
		}
	}

	quiz, err := c.QuizService.GetDailyQuiz(subjectID, day)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// examEntry 考试列表条目，测验基本信息加本人作答状态
type examEntry struct {
	model.Quiz
	Attempt service.AttemptStatus `json:"attempt"`
}

// ListExams godoc
// @Summary 我的考试列表
// @Description 当前学生全部订阅科目下的月考与期末，附本人作答状态
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]examEntry}
// @Router /api/exams [get]
func (c *QuizController) ListExams(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	subjects, err := c.SubjectService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	subjectIDs := make([]uint, len(subjects))
	for i, s := range subjects {
		subjectIDs[i] = s.ID
	}

	exams, err := c.QuizService.ListExamsForSubjects(subjectIDs)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	quizIDs := make([]uint, len(exams))
	for i, q := range exams {
		quizIDs[i] = q.ID
	}

	statuses, err := c.QuizService.GetAttemptStatus(claims.UserID, quizIDs)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	entries := make([]examEntry, len(exams))
	for i, q := range exams {
		entries[i] = examEntry{Quiz: q, Attempt: statuses[q.ID]}
	}
	util.Success(ctx, entries)
}

// MyAnswers godoc
// @Summary 我的作答明细
// @Description daily 提交即可见；月考与期末要等成绩发布
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response{data=[]repository.AnswerDetailRow}
// @Failure 403 {object} util.Response "成绩尚未发布"
// @Router /api/quizzes/{id}/my-answers [get]
func (c *QuizController) MyAnswers(ctx *gin.Context) {
	quizID := util.ParseUintOrZero(ctx.Param("id"))
	if !c.checkQuizAccess(ctx, quizID) {
		return
	}

	full, err := c.QuizService.GetFullQuiz(quizID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if full.Type != model.QuizDaily && !full.ResultsPublished {
		util.Forbidden(ctx, "成绩尚未发布")
		return
	}

	claims := util.GetUserFromContext(ctx)
	rows, err := c.GradingService.GetSubmissionDetail(claims.UserID, quizID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
