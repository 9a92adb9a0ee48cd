package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	realtimesvc "github.com/praveengyadahalli143-byte/TechpG/services/realtime"
)

type chatApi struct {
	svc        *chat.Service
	projectSvc *project.Service
	hub        *realtimesvc.Hub
	typing     *chat.TypingTracker
	files      chat.FileStore
	validate   *validator.Validate
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := chatApi{
		svc:        deps.ChatSvc,
		projectSvc: deps.ProjectSvc,
		hub:        deps.Hub,
		typing:     deps.Typing,
		files:      deps.Files,
		validate:   deps.Validate,
	}

	pg := g.Group("/projects/:id", jwt, api.accessMiddleware)
	pg.GET("/messages", api.queryMessages)
	pg.POST("/messages", api.sendMessage)
	pg.POST("/messages/read", api.markRead)
	pg.POST("/typing", api.setTyping)
	pg.POST("/files", api.uploadFile)
	pg.GET("/members", api.queryMembers)
	pg.POST("/members", api.invite)
	pg.GET("/events", api.events)
}

type (
	sendMessageRequest struct {
		Content  string `json:"content"`
		FileURL  string `json:"file_url"`
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
	}
	typingRequest struct {
		Typing bool `json:"typing"`
	}
)

// accessMiddleware restricts project chat to admins, the owner and team members.
func (api *chatApi) accessMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if claims.IsAdmin {
			return next(ctx)
		}

		proj, err := api.projectSvc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == project.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding project")
		}
		if proj.UserID == claims.Subject {
			return next(ctx)
		}

		members, err := api.projectSvc.Members(ctx.Request().Context(), proj.ID)
		if err != nil {
			return errors.Wrap(err, "querying project members")
		}
		for _, mbr := range members {
			if strings.EqualFold(mbr.Email, claims.Email) {
				return next(ctx)
			}
		}
		return errHttpForbidden
	}
}

// Handlers

func (api *chatApi) queryMessages(ctx echo.Context) error {
	msgs, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *chatApi) sendMessage(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data sendMessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to sendMessageRequest")
	}

	// messages.user_id must reference a student account, so an admin send
	// records the project owner; sender_type tells the author apart.
	senderType := chat.SenderUser
	userID := claims.Subject
	if claims.IsAdmin {
		senderType = chat.SenderAdmin
		proj, err := api.projectSvc.Get(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == project.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding project")
		}
		userID = proj.UserID
	}

	nm := chat.NewMessage{
		ProjectID:  ctx.Param("id"),
		UserID:     userID,
		SenderType: senderType,
		Content:    data.Content,
		FileURL:    data.FileURL,
		FileName:   data.FileName,
		FileType:   data.FileType,
	}
	if err := api.validate.Struct(&nm); err != nil {
		return err
	}

	msg, err := api.svc.Send(ctx.Request().Context(), nm)
	if err != nil {
		if errors.Cause(err) == chat.ErrEmptyMessage {
			return echo.NewHTTPError(http.StatusBadRequest, chat.ErrEmptyMessage.Error())
		}
		return errors.Wrap(err, "sending message")
	}
	// sending a message implicitly clears the typing indicator
	api.typing.Set(typingKey(msg.ProjectID, senderType), false)

	return ctx.JSON(http.StatusCreated, msg)
}

// markRead marks the counterpart's messages in this chat as read.
func (api *chatApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	counterpart := chat.SenderAdmin
	if claims.IsAdmin {
		counterpart = chat.SenderUser
	}
	if err := api.svc.MarkProjectRead(ctx.Request().Context(), ctx.Param("id"), counterpart); err != nil {
		return errors.Wrap(err, "marking messages read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *chatApi) setTyping(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data typingRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to typingRequest")
	}

	senderType := chat.SenderUser
	if claims.IsAdmin {
		senderType = chat.SenderAdmin
	}
	projectID := ctx.Param("id")

	api.typing.Set(typingKey(projectID, senderType), data.Typing)
	api.hub.PublishTyping(projectID, senderType, data.Typing)

	return ctx.NoContent(http.StatusNoContent)
}

// uploadFile stores a chat attachment and returns the metadata to attach
// to a message.
func (api *chatApi) uploadFile(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	url, err := api.files.Save(ctx.Request().Context(), fh.Filename, contentType, src)
	if err != nil {
		return errors.Wrap(err, "storing uploaded file")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"file_url":  url,
		"file_name": fh.Filename,
		"file_type": contentType,
	})
}

func (api *chatApi) queryMembers(ctx echo.Context) error {
	members, err := api.projectSvc.Members(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying project members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *chatApi) invite(ctx echo.Context) error {
	var data inviteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to inviteRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	mbr, err := api.projectSvc.Invite(ctx.Request().Context(), ctx.Param("id"), data.Email)
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

// events pushes chat events to the client as server-sent events until the
// client disconnects.
func (api *chatApi) events(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	projectID := ctx.Param("id")

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-store")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	events, cancel := api.hub.Subscribe(realtimesvc.ChatTopic(projectID))
	defer cancel()

	api.hub.Track(projectID, claims.Subject)
	defer api.hub.Untrack(projectID, claims.Subject)

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeSSE(resp, evt); err != nil {
				return nil // client gone
			}
		}
	}
}

func writeSSE(resp *echo.Response, evt realtimesvc.Event) error {
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		return errors.Wrap(err, "marshalling event payload")
	}
	if _, err = fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", evt.Kind, data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

func typingKey(projectID, senderType string) string {
	return projectID + ":" + senderType
}
