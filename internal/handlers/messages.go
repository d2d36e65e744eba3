package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.smsync/internal/model"
)

type MessageService interface {
	Sync(ctx context.Context) (*model.SyncResult, error)
	InsertReceivedSms(ctx context.Context, params *model.ReceivedSmsParams) (*model.Message, error)
	Thread(threadID int64) ([]*model.Message, error)
	Fetch(id string) (*model.Message, error)
	UnreadCount() (int64, error)
}

func Sync(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := messageService.Sync(c.Request().Context())
		if err != nil {
			if errors.Is(err, model.ErrorSyncInProgress) {
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}

func ThreadMessages(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		threadID, err := strconv.ParseInt(c.Param("threadId"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid thread id")
		}
		messages, err := messageService.Thread(threadID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, messages)
	}
}

func GetMessage(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		message, err := messageService.Fetch(c.Param("id"))
		if err != nil {
			if errors.Is(err, model.ErrorMessageNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, err.Error())
			}
			return err
		}
		return c.JSON(http.StatusOK, message)
	}
}

func UnreadCount(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := messageService.UnreadCount()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int64{"unread": count})
	}
}

func ReceiveSms(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.ReceivedSmsParams{}
		if err := c.Bind(params); err != nil {
			return err
		}
		message, err := messageService.InsertReceivedSms(c.Request().Context(), params)
		if err != nil {
			if errors.Is(err, model.ErrorInvalidAddress) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return err
		}
		return c.JSON(http.StatusCreated, message)
	}
}

// Register mounts the message routes, behind bearer tokens when tokenSecret is set.
func Register(server *echo.Echo, messageService MessageService, tokenSecret string) {
	api := server.Group("")
	if tokenSecret != "" {
		api.Use(RequireToken(tokenSecret))
	}

	api.POST("/sync", Sync(messageService))
	api.POST("/sms/received", ReceiveSms(messageService))
	api.GET("/threads/:threadId/messages", ThreadMessages(messageService))
	api.GET("/messages/:id", GetMessage(messageService))
	api.GET("/unread", UnreadCount(messageService))
}
