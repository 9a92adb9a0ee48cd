package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

type userApi struct {
	conf       *core.Config
	svc        *user.Service
	projectSvc *project.Service
	notifSvc   *notification.Service
	validate   *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:       deps.Conf,
		svc:        deps.UserSvc,
		projectSvc: deps.ProjectSvc,
		notifSvc:   deps.NotifSvc,
		validate:   deps.Validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("/me", jwt)
	ag.GET("", api.retrieve)
	ag.PATCH("", api.update)
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/notifications", api.queryNotifications)
	ag.POST("/notifications/:id/read", api.markNotificationRead)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	LoginResponse struct {
		Token string `json:"token"`
	}

	updateProfileRequest struct {
		FullName     string `json:"full_name" validate:"omitempty,min=2"`
		PhoneNumber  string `json:"phone_number" validate:"omitempty,phone"`
		CollegeName  string `json:"college_name" validate:"omitempty,min=2"`
		CourseBranch string `json:"course_branch" validate:"omitempty,min=2"`
	}

	dashboardResponse struct {
		User          user.User                   `json:"user"`
		Project       *project.Project            `json:"project"`
		Notifications []notification.Notification `json:"notifications"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.contextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := api.contextUser(ctx)
	if err != nil {
		return err
	}

	var data updateProfileRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to updateProfileRequest")
	}
	data.FullName = core.CleanString(data.FullName)
	data.PhoneNumber = user.NormalizePhone(core.CleanString(data.PhoneNumber))
	data.CollegeName = core.CleanString(data.CollegeName)
	data.CourseBranch = core.CleanString(data.CourseBranch)
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if data.FullName != "" {
		usr.FullName = data.FullName
	}
	if data.PhoneNumber != "" {
		usr.PhoneNumber = data.PhoneNumber
	}
	if data.CollegeName != "" {
		usr.CollegeName = data.CollegeName
	}
	if data.CourseBranch != "" {
		usr.CourseBranch = data.CourseBranch
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// dashboard bundles everything the student landing page needs in one call.
func (api *userApi) dashboard(ctx echo.Context) error {
	usr, err := api.contextUser(ctx)
	if err != nil {
		return err
	}

	resp := dashboardResponse{User: usr}

	proj, err := api.projectSvc.GetForUser(ctx.Request().Context(), usr)
	if err == nil {
		resp.Project = &proj
	} else if errors.Cause(err) != project.ErrNotFound {
		return errors.Wrap(err, "finding user project")
	}

	notifs, err := api.notifSvc.QueryByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	resp.Notifications = notifs

	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) queryNotifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	notifs, err := api.notifSvc.QueryByUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *userApi) markNotificationRead(ctx echo.Context) error {
	if err := api.notifSvc.MarkRead(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) contextUser(ctx echo.Context) (user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}
