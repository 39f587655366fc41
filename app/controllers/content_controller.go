package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
)

type faqRequest struct {
	Question     string `json:"question" form:"question"`
	Answer       string `json:"answer" form:"answer"`
	DisplayOrder int    `json:"displayOrder" form:"displayOrder"`
}

type videoRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	YoutubeURL  string `json:"youtubeUrl" form:"youtubeUrl"`
	IsHeroVideo bool   `json:"isHeroVideo" form:"isHeroVideo"`
}

// ContentController manages the landing page FAQs and videos.
type ContentController struct {
	faqs   repository.FaqRepository
	videos repository.VideoRepository
	log    *zap.Logger
}

func NewContentController(faqs repository.FaqRepository, videos repository.VideoRepository, log *zap.Logger) *ContentController {
	return &ContentController{faqs: faqs, videos: videos, log: log}
}

func (r faqRequest) apply(f *models.Faq) {
	f.Question = strings.TrimSpace(r.Question)
	f.Answer = strings.TrimSpace(r.Answer)
	f.DisplayOrder = r.DisplayOrder
}

func (r videoRequest) apply(v *models.Video) {
	v.Title = strings.TrimSpace(r.Title)
	v.Description = strings.TrimSpace(r.Description)
	v.YoutubeURL = strings.TrimSpace(r.YoutubeURL)
	v.IsHeroVideo = r.IsHeroVideo
}

func (cc *ContentController) HandleListFaqs(c *fiber.Ctx) error {
	faqs, err := cc.faqs.List(c.UserContext())
	if err != nil {
		cc.log.Error("List faqs failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar FAQs")
	}
	return c.JSON(faqs)
}

func (cc *ContentController) HandleCreateFaq(c *fiber.Ctx) error {
	var req faqRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}
	var faq models.Faq
	req.apply(&faq)
	if err := faq.Validate(); err != nil {
		return validationError(c, "FAQ inválida", modelFields(err))
	}
	if err := cc.faqs.Create(c.UserContext(), &faq); err != nil {
		cc.log.Error("Create faq failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao criar FAQ")
	}
	return c.Status(fiber.StatusCreated).JSON(faq)
}

func (cc *ContentController) HandleUpdateFaq(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "FAQ não encontrada")
	}
	var req faqRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}

	faq, err := cc.faqs.GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "FAQ não encontrada")
		}
		cc.log.Error("Load faq failed", zap.Uint("faq_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao atualizar FAQ")
	}
	req.apply(faq)
	if err := faq.Validate(); err != nil {
		return validationError(c, "FAQ inválida", modelFields(err))
	}
	if err := cc.faqs.Update(c.UserContext(), faq); err != nil {
		cc.log.Error("Update faq failed", zap.Uint("faq_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao atualizar FAQ")
	}
	return c.JSON(faq)
}

func (cc *ContentController) HandleDeleteFaq(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "FAQ não encontrada")
	}
	if err := cc.faqs.Delete(c.UserContext(), id); err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "FAQ não encontrada")
		}
		cc.log.Error("Delete faq failed", zap.Uint("faq_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao deletar FAQ")
	}
	return c.JSON(fiber.Map{"message": "FAQ deletada com sucesso"})
}

func (cc *ContentController) HandleListVideos(c *fiber.Ctx) error {
	videos, err := cc.videos.List(c.UserContext())
	if err != nil {
		cc.log.Error("List videos failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar vídeos")
	}
	return c.JSON(videos)
}

func (cc *ContentController) HandleCreateVideo(c *fiber.Ctx) error {
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}
	var video models.Video
	req.apply(&video)
	if err := video.Validate(); err != nil {
		return validationError(c, "Vídeo inválido", modelFields(err))
	}
	if err := cc.videos.Create(c.UserContext(), &video); err != nil {
		cc.log.Error("Create video failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao criar vídeo")
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

// HandleUpdateVideo replaces all editable fields. Marking a video as hero
// demotes the current one.
func (cc *ContentController) HandleUpdateVideo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Vídeo não encontrado")
	}
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}

	video, err := cc.videos.GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Vídeo não encontrado")
		}
		cc.log.Error("Load video failed", zap.Uint("video_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao atualizar vídeo")
	}
	req.apply(video)
	if err := video.Validate(); err != nil {
		return validationError(c, "Vídeo inválido", modelFields(err))
	}
	if err := cc.videos.Update(c.UserContext(), video); err != nil {
		cc.log.Error("Update video failed", zap.Uint("video_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao atualizar vídeo")
	}
	return c.JSON(video)
}

func (cc *ContentController) HandleDeleteVideo(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Vídeo não encontrado")
	}
	if err := cc.videos.Delete(c.UserContext(), id); err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Vídeo não encontrado")
		}
		cc.log.Error("Delete video failed", zap.Uint("video_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao deletar vídeo")
	}
	return c.JSON(fiber.Map{"message": "Vídeo deletado com sucesso"})
}
