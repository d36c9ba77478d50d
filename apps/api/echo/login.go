package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
)

type authApi struct {
	reconciler *auth.Reconciler
	validate   *validator.Validate
}

func registerAuthAPI(g *echo.Group, reconciler *auth.Reconciler, validate *validator.Validate) {
	api := authApi{
		reconciler: reconciler,
		validate:   validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
}

// login signs the teacher in, creating the account on the fly when the email
// is new. Every reconciler outcome maps to a response; backend faults never
// surface raw.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	outcome := api.reconciler.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	switch outcome.Status {
	case auth.StatusSession:
		return ctx.JSON(http.StatusOK, LoginResponse{
			Token: outcome.Session.AccessToken,
			User:  outcome.Session.User,
		})
	case auth.StatusPendingConfirmation:
		return ctx.JSON(http.StatusOK, NoticeResponse{Notice: outcome.Message})
	default:
		return core.NewValidationError(errors.New(outcome.Message))
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  auth.User `json:"user"`
	}

	NoticeResponse struct {
		Notice string `json:"notice"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
