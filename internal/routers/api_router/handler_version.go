package api_router

import (
	"github.com/Evraldi/realtime-texteditor-sub000/internal/app"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/dto"
	pkgapp "github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/code"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/convert"
	apperrors "github.com/Evraldi/realtime-texteditor-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VersionHandler version history API router handler
// VersionHandler 版本历史 API 路由处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{
		Handler: NewHandler(a),
	}
}

// List lists versions of a document
// @Summary List document versions
// @Description 分页获取文档的版本列表，按版本号倒序，不带内容。
// @Tags Version
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Document ID"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes} "Success"
// @Router /api/document/versions [get]
func (h *VersionHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	cfg := pkgapp.PaginationConfig{
		DefaultPageSize: h.App.Config().App.DefaultPageSize,
		MaxPageSize:     h.App.Config().App.MaxPageSize,
	}
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSizeWithConfig(c, cfg)

	list, total, err := h.App.VersionService.List(ctx, id, page, pageSize)
	if err != nil {
		h.logError(ctx, "VersionHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Get retrieves a single version with content
// @Summary Get document version
// @Description 按版本号获取文档的单个版本，包含内容。
// @Tags Version
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Document ID"
// @Param version query int true "Version number"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/document/version [get]
func (h *VersionHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := documentID(c)
	version := convert.StrTo(c.Query("version")).MustInt64()
	if id == 0 || version == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	v, err := h.App.VersionService.Get(ctx, id, version)
	if err != nil {
		h.logError(ctx, "VersionHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(v))
}

// Create creates a version snapshot on demand
// @Summary Create document version
// @Description 立即为文档当前内容生成版本快照，绕过冷却窗口与显著性判断。内容与最新版本一致时返回最新版本。
// @Tags Version
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id query int true "Document ID"
// @Param params body dto.VersionCreateRequest true "Create Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/document/version [post]
func (h *VersionHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.VersionCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	v, err := h.App.VersionService.Snapshot(ctx, uid, id, params.Comment)
	if err != nil {
		h.logError(ctx, "VersionHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(v))
}

// Restore restores document content to a historical version
// @Summary Restore document version
// @Description 将文档内容恢复到指定历史版本。恢复以追加方式生成新版本，历史不被改写。
// @Tags Version
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id query int true "Document ID"
// @Param params body dto.VersionRestoreRequest true "Restore Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/document/version/restore [put]
func (h *VersionHandler) Restore(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.VersionRestoreRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Restore.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	restored, err := h.App.VersionService.Restore(ctx, uid, id, params.Version)
	if err != nil {
		h.logError(ctx, "VersionHandler.Restore", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	// 恢复后的内容推送给文档内的其他协作者
	if doc, err := h.App.DocumentService.Get(ctx, id); err == nil {
		h.App.Broadcaster.BroadcastUpdate(id, uid, doc.Content)
	}

	response.ToResponse(code.Success.WithData(restored))
}

// Compare compares two versions of a document
// @Summary Compare document versions
// @Description 比较同一文档的两个版本，返回变更统计、描述和渲染后的差异片段。
// @Tags Version
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Document ID"
// @Param from query int true "Base version"
// @Param to query int true "Target version"
// @Success 200 {object} pkgapp.Res{data=dto.VersionCompareDTO} "Success"
// @Router /api/document/version/compare [get]
func (h *VersionHandler) Compare(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := documentID(c)
	from := convert.StrTo(c.Query("from")).MustInt64()
	to := convert.StrTo(c.Query("to")).MustInt64()
	if id == 0 || from == 0 || to == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.VersionService.Compare(ctx, id, from, to)
	if err != nil {
		h.logError(ctx, "VersionHandler.Compare", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Tag adds tags to a version
// @Summary Tag document version
// @Description 为版本追加标签，标签按并集合并且去重。
// @Tags Version
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id query int true "Document ID"
// @Param version query int true "Version number"
// @Param params body dto.VersionTagRequest true "Tag Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "Success"
// @Router /api/document/version/tag [post]
func (h *VersionHandler) Tag(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.VersionTagRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Tag.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	id := documentID(c)
	version := convert.StrTo(c.Query("version")).MustInt64()
	if id == 0 || version == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	tagged, err := h.App.VersionService.Tag(ctx, id, version, params)
	if err != nil {
		h.logError(ctx, "VersionHandler.Tag", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(tagged))
}
