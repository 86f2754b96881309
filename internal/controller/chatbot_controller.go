package controller

import (
	"errors"

	"datasense-be/internal/constant"
	"datasense-be/internal/dto"
	"datasense-be/internal/pkg/serverutils"
	"datasense-be/internal/service"
	"datasense-be/pkg/chat"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Post("/reset", c.Reset)
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Chat(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrInvalidRole) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}

// Reset acknowledges a conversation reset. History lives on the client, so
// there is nothing to clear here.
func (c *chatbotController) Reset(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.ResetResponse{Message: constant.ResetAcknowledgement})
}
