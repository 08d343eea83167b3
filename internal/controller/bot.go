package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/faculty_scheduler/internal/controller/handlers"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, cmdHandlers *handlers.Handlers, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := c.handlers.Commands()
	menu := make([]models.BotCommand, 0, len(commands))

	for _, cmd := range commands {
		// Точное совпадение для команд без аргументов, префикс для команд с аргументами
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+cmd.Name, bot.MatchTypeExact, cmd.Handler)
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+cmd.Name+" ", bot.MatchTypePrefix, cmd.Handler)

		if !cmd.Hidden {
			menu = append(menu, models.BotCommand{Command: cmd.Name, Description: cmd.Description})
		}
	}

	// Устанавливаем меню команд
	return c.setCommands(ctx, menu)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context, commands []models.BotCommand) error {
	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set", zap.Int("commands", len(commands)))
	return nil
}

// Start запускает бота и блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
