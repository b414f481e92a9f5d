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

// DocumentHandler document API router handler
// DocumentHandler 文档 API 路由处理器
type DocumentHandler struct {
	*Handler
}

// NewDocumentHandler 创建 DocumentHandler 实例
func NewDocumentHandler(a *app.App, wss *pkgapp.WebsocketServer) *DocumentHandler {
	return &DocumentHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// documentID 从查询参数解析文档 ID
func documentID(c *gin.Context) int64 {
	return convert.StrTo(c.Query("id")).MustInt64()
}

// Create creates a document
// @Summary Create document
// @Description 创建文档，初始内容非空时立即生成版本 1。
// @Tags Document
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.DocumentCreateRequest true "Create Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.DocumentDTO} "Success"
// @Router /api/document [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	doc, err := h.App.DocumentService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "DocumentHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(doc))
}

// Get retrieves a document with content
// @Summary Get document
// @Description 按 ID 获取文档，包含完整内容。
// @Tags Document
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Document ID"
// @Success 200 {object} pkgapp.Res{data=dto.DocumentDTO} "Success"
// @Router /api/document [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	doc, err := h.App.DocumentService.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "DocumentHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(doc))
}

// List lists documents without content
// @Summary List documents
// @Description 分页获取文档列表，列表项不带内容。
// @Tags Document
// @Security UserAuthToken
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes} "Success"
// @Router /api/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	cfg := pkgapp.PaginationConfig{
		DefaultPageSize: h.App.Config().App.DefaultPageSize,
		MaxPageSize:     h.App.Config().App.MaxPageSize,
	}
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSizeWithConfig(c, cfg)

	list, total, err := h.App.DocumentService.List(ctx, page, pageSize)
	if err != nil {
		h.logError(ctx, "DocumentHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(total))
}

// Rename renames a document
// @Summary Rename document
// @Description 重命名文档。
// @Tags Document
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id query int true "Document ID"
// @Param params body dto.DocumentTitleRequest true "Title Parameters"
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/document/title [put]
func (h *DocumentHandler) Rename(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentTitleRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.Rename.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.DocumentService.Rename(ctx, id, params.Title); err != nil {
		h.logError(ctx, "DocumentHandler.Rename", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Delete soft-deletes a document
// @Summary Delete document
// @Description 软删除文档，版本历史保留以便清理任务处理。
// @Tags Document
// @Security UserAuthToken
// @Produce json
// @Param id query int true "Document ID"
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/document [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := documentID(c)
	if id == 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.DocumentService.Delete(ctx, id); err != nil {
		h.logError(ctx, "DocumentHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Save persists document content
// @Summary Save document content
// @Description 保存文档完整内容，按需生成版本快照。两个客户端并发保存时最后写入者胜出。
// @Tags Document
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id query int true "Document ID"
// @Param params body dto.DocumentSaveRequest true "Save Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.DocumentSaveResultDTO} "Success"
// @Router /api/document/save [post]
func (h *DocumentHandler) Save(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentSaveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.Save.BindAndValid errs", zap.Error(errs))
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

	result, err := h.App.DocumentService.Save(ctx, uid, id, params.Content)
	if err != nil {
		h.logError(ctx, "DocumentHandler.Save", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}
