package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/praveengyadahalli143-byte/TechpG/core"
	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
)

type adminApi struct {
	conf     *core.Config
	svc      *admin.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		conf:     deps.Conf,
		svc:      deps.AdminSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/admin")
	ag.POST("/login", api.login)

	// authed back-office endpoints
	bg := ag.Group("", jwt, adminMiddleware())
	bg.GET("/me", api.retrieve)

	registerAdminProjectAPI(bg, projectAdminApi{
		svc:      deps.ProjectSvc,
		chatSvc:  deps.ChatSvc,
		notifSvc: deps.NotifSvc,
		hub:      deps.Hub,
		validate: deps.Validate,
	})
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	adm, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating admin")
	}

	token, err := GenerateToken(GetAdminClaims(api.conf, adm))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	adm, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "finding admin by ID")
	}
	return ctx.JSON(http.StatusOK, adm)
}
