package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core/registration"
)

type registrationApi struct {
	sessions *registration.SessionStore
	lookup   registration.IdentityLookup
	pipeline registration.Submitter
}

func registerRegistrationAPI(g *echo.Group, deps ServerDeps) {
	api := registrationApi{
		sessions: deps.Sessions,
		lookup:   deps.Lookup,
		pipeline: deps.Pipeline,
	}

	rg := g.Group("/register")
	rg.POST("", api.create)
	rg.POST("/:id", api.advance)
	rg.POST("/:id/resume", api.resume)
	rg.GET("/:id", api.transcript)
}

type (
	startRequest struct {
		ProjectType string `json:"project_type"`
	}
	advanceRequest struct {
		Input string `json:"input"`
	}

	eventPayload struct {
		Kind          string `json:"kind"`
		Text          string `json:"text,omitempty"`
		Target        string `json:"target,omitempty"`
		TypingDelayMS int64  `json:"typing_delay_ms,omitempty"`
	}

	optionPayload struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	conversationResponse struct {
		SessionID string          `json:"session_id"`
		State     string          `json:"state"`
		Progress  float64         `json:"progress"`
		Options   []optionPayload `json:"options,omitempty"`
		Events    []eventPayload  `json:"events"`
	}

	transcriptResponse struct {
		SessionID string                         `json:"session_id"`
		State     string                         `json:"state"`
		Messages  []registration.TranscriptEntry `json:"messages"`
	}
)

func newConversationResponse(sess *registration.Session, events []registration.Event) conversationResponse {
	resp := conversationResponse{
		SessionID: sess.ID,
		State:     string(sess.State()),
		Progress:  sess.Progress(),
		Events:    make([]eventPayload, 0, len(events)),
	}
	for _, evt := range events {
		resp.Events = append(resp.Events, eventPayload{
			Kind:          string(evt.Kind),
			Text:          evt.Text,
			Target:        evt.Target,
			TypingDelayMS: evt.Delay.Milliseconds(),
		})
	}
	for _, opt := range sess.Options() {
		resp.Options = append(resp.Options, optionPayload(opt))
	}
	return resp
}

// Handlers

func (api *registrationApi) create(ctx echo.Context) error {
	var data startRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to startRequest")
	}
	// the landing page seeds the project type via ?type=mini|major
	if data.ProjectType == "" {
		data.ProjectType = ctx.QueryParam("type")
	}

	sess, events := api.sessions.Create(ctx.Request().Context(), data.ProjectType, api.lookup, api.pipeline)
	return ctx.JSON(http.StatusCreated, newConversationResponse(sess, events))
}

func (api *registrationApi) advance(ctx echo.Context) error {
	var data advanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to advanceRequest")
	}

	sess, events, err := api.sessions.Advance(ctx.Request().Context(), ctx.Param("id"), data.Input)
	if err != nil {
		if errors.Cause(err) == registration.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "advancing registration")
	}
	return ctx.JSON(http.StatusOK, newConversationResponse(sess, events))
}

func (api *registrationApi) resume(ctx echo.Context) error {
	sess, events, err := api.sessions.Resume(ctx.Request().Context(), ctx.Param("id"), api.lookup, api.pipeline)
	if err != nil {
		if errors.Cause(err) == registration.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resuming registration")
	}
	return ctx.JSON(http.StatusOK, newConversationResponse(sess, events))
}

func (api *registrationApi) transcript(ctx echo.Context) error {
	sess, err := api.sessions.Get(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == registration.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting registration session")
	}
	return ctx.JSON(http.StatusOK, transcriptResponse{
		SessionID: sess.ID,
		State:     string(sess.State()),
		Messages:  sess.TranscriptEntries(),
	})
}
