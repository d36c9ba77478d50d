package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/composer"
	"github.com/trezcool/mwalimu/core/followup"
)

func (api *studentApi) queryFollowups(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	history, err := api.fuSvc.QueryByStudent(ctx.Request().Context(), st.ID)
	if err != nil {
		return errors.Wrap(err, "querying follow-up history")
	}
	return ctx.JSON(http.StatusOK, history)
}

func (api *studentApi) createFollowup(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	var data followup.NewFollowup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFollowup")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.fuSvc.Create(ctx.Request().Context(), st.ID, data)
	if err != nil {
		return errors.Wrapf(err, "Followup: %+v", data)
	}
	return ctx.JSON(http.StatusCreated, f)
}

// composeFollowup drafts a follow-up message without saving it; the client
// reviews (and possibly edits) the draft before POSTing it to /followups.
func (api *studentApi) composeFollowup(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	var data ComposeFollowupRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ComposeFollowupRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res := api.composer.ComposeFollowup(ctx.Request().Context(), composer.ComposeRequest{
		StudentName:       st.Name,
		Grade:             st.Grade,
		Remarks:           data.Remarks,
		CustomInstruction: data.CustomInstruction,
		Category:          data.Category,
		Tone:              data.Tone,
		Language:          data.Language,
	})
	return ctx.JSON(http.StatusOK, ComposerResponse{Content: res.String()})
}

// analyzeHistory summarizes the student's saved follow-ups into a trend
// report. POST: the report is generated fresh on every call.
func (api *studentApi) analyzeHistory(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	history, err := api.fuSvc.QueryByStudent(ctx.Request().Context(), st.ID)
	if err != nil {
		return errors.Wrap(err, "querying follow-up history")
	}

	res := api.composer.AnalyzeHistory(ctx.Request().Context(), st.Name, history)
	return ctx.JSON(http.StatusOK, ComposerResponse{Content: res.String()})
}

func (api *studentApi) sendFollowup(ctx echo.Context) error {
	st, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	var data SendFollowupRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendFollowupRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.fuSvc.GetByID(ctx.Request().Context(), st.ID, ctx.Param("fid"))
	if err != nil {
		if errors.Cause(err) == followup.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrapf(err, "ID: %s", ctx.Param("fid"))
	}

	api.fuSvc.Send(f, st.Name, data.Email)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Follow-up sent to " + data.Email})
}

type (
	ComposeFollowupRequest struct {
		Remarks           string `json:"remarks" validate:"required"`
		CustomInstruction string `json:"custom_instruction"`
		Category          string `json:"category"`
		Tone              string `json:"tone"`
		Language          string `json:"language"`
	}

	ComposerResponse struct {
		Content string `json:"content"`
	}

	SendFollowupRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

func (cr *ComposeFollowupRequest) Validate(validate *validator.Validate) error {
	cr.Category = core.CleanString(cr.Category)
	cr.Tone = core.CleanString(cr.Tone)
	cr.Language = core.CleanString(cr.Language)
	return validate.Struct(cr)
}

func (sr *SendFollowupRequest) Validate(validate *validator.Validate) error {
	sr.Email = core.CleanString(sr.Email, true /* lower */)
	return validate.Struct(sr)
}
