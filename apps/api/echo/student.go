package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/composer"
	"github.com/trezcool/mwalimu/core/followup"
	"github.com/trezcool/mwalimu/core/student"
)

const studentCtxKey = "student"

type studentApi struct {
	svc      *student.Service
	fuSvc    *followup.Service
	composer *composer.Composer
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		svc:      opts.StudentSvc,
		fuSvc:    opts.FollowupSvc,
		composer: opts.Composer,
		validate: opts.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)

	og := sg.Group("/:id", api.objectMiddleware)
	og.GET("", api.retrieve)

	og.GET("/followups", api.queryFollowups)
	og.POST("/followups", api.createFollowup)
	og.POST("/followups/compose", api.composeFollowup)
	og.POST("/followups/:fid/send", api.sendFollowup)
	og.POST("/analysis", api.analyzeHistory)
}

// objectMiddleware loads the Student referred to by the `id` param into the
// context. Lookups are owner-scoped so a student that exists but belongs to
// another teacher is indistinguishable from one that does not exist.
func (api *studentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ownerID, err := contextOwnerID(ctx)
		if err != nil {
			return err
		}

		st, err := api.svc.GetByID(ctx.Request().Context(), ownerID, ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrapf(err, "ID: %s", ctx.Param("id"))
		}
		ctx.Set(studentCtxKey, st)
		return next(ctx)
	}
}

func contextStudent(ctx echo.Context) (student.Student, error) {
	if st, ok := ctx.Get(studentCtxKey).(student.Student); ok {
		return st, nil
	}
	return student.Student{}, errHttpNotFound
}

func (api *studentApi) query(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	roster, err := api.svc.QueryByOwner(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *studentApi) create(ctx echo.Context) error {
	ownerID, err := contextOwnerID(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Create(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrapf(err, "Student: %+v", data)
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}
