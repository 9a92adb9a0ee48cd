package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	realtimesvc "github.com/praveengyadahalli143-byte/TechpG/services/realtime"
)

type projectAdminApi struct {
	svc      *project.Service
	chatSvc  *chat.Service
	notifSvc *notification.Service
	hub      *realtimesvc.Hub
	validate *validator.Validate
}

func registerAdminProjectAPI(g *echo.Group, api projectAdminApi) {
	g.GET("/projects", api.query)
	g.GET("/projects/:id", api.retrieve)
	g.GET("/events", api.events)
	g.PATCH("/projects/:id/status", api.updateStatus)
	g.DELETE("/projects/:id", api.destroy)
	g.GET("/projects/:id/members", api.queryMembers)
	g.POST("/projects/:id/members", api.invite)
	g.GET("/updates", api.queryUpdates)
	g.GET("/unread-counts", api.unreadCounts)
	g.POST("/notifications", api.sendNotification)
	g.GET("/notification-templates", api.queryTemplates)
}

type (
	statusUpdateRequest struct {
		Status string `json:"status" validate:"required"`
		Note   string `json:"note"`
	}
	inviteRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

// Handlers

func (api *projectAdminApi) query(ctx echo.Context) error {
	var filter project.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	projects, err := api.svc.Query(ctx.Request().Context(), &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectAdminApi) retrieve(ctx echo.Context) error {
	proj, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding project")
	}
	return ctx.JSON(http.StatusOK, proj)
}

// events streams chat activity across all projects so the back office can
// watch every conversation at once.
func (api *projectAdminApi) events(ctx echo.Context) error {
	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-store")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	events, cancel := api.hub.Subscribe(realtimesvc.TopicAll)
	defer cancel()

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

func (api *projectAdminApi) updateStatus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data statusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to statusUpdateRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	proj, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status, data.Note, claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case project.ErrNotFound:
			return errHttpNotFound
		case project.ErrInvalidStatus:
			return echo.NewHTTPError(http.StatusBadRequest, project.ErrInvalidStatus.Error())
		}
		return errors.Wrap(err, "updating project status")
	}
	return ctx.JSON(http.StatusOK, proj)
}

func (api *projectAdminApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectAdminApi) queryMembers(ctx echo.Context) error {
	members, err := api.svc.Members(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying project members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *projectAdminApi) invite(ctx echo.Context) error {
	var data inviteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to inviteRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	mbr, err := api.svc.Invite(ctx.Request().Context(), ctx.Param("id"), data.Email)
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return errHttpNotFound
		}
		return err // ErrMemberExists arrives as a core.ValidationError
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *projectAdminApi) queryUpdates(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	updates, err := api.svc.RecentUpdates(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying recent updates")
	}
	return ctx.JSON(http.StatusOK, updates)
}

// unreadCounts reports, per project, how many student messages the admin
// team has not read yet.
func (api *projectAdminApi) unreadCounts(ctx echo.Context) error {
	counts, err := api.chatSvc.UnreadCounts(ctx.Request().Context(), chat.SenderUser)
	if err != nil {
		return errors.Wrap(err, "querying unread counts")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *projectAdminApi) sendNotification(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	data.SentBy = claims.Subject
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	notif, err := api.notifSvc.Send(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending notification")
	}
	return ctx.JSON(http.StatusCreated, notif)
}

func (api *projectAdminApi) queryTemplates(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, notification.Templates)
}
