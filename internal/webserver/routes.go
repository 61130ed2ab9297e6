package webserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/accesscontrol"
	"github.com/lachlan2k/labour-console/internal/auth"
	"github.com/lachlan2k/labour-console/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

type screenView struct {
	Screen          string                  `json:"screen"`
	Authenticated   bool                    `json:"authenticated"`
	Role            string                  `json:"role,omitempty"`
	Nav             []accesscontrol.NavItem `json:"nav,omitempty"`
	Notice          string                  `json:"notice,omitempty"`
	RememberedPhone string                  `json:"remembered_phone,omitempty"`
}

type notFoundView struct {
	Screen string `json:"screen"`
	Path   string `json:"path"`
	Home   string `json:"home"`
}

func (w *Webserver) screenRouteHandler(c echo.Context) error {
	path := c.Request().URL.Path
	st := w.sessions.State()
	decision := w.authorizer.Decide(path, st)

	if w.metrics != nil {
		w.metrics.RouteDecided(decision.Outcome.String())
	}

	switch decision.Outcome {
	case accesscontrol.OutcomeLoading:
		return c.JSON(http.StatusOK, screenView{Screen: "loading"})
	case accesscontrol.OutcomeRedirect:
		return c.Redirect(http.StatusFound, decision.Location)
	case accesscontrol.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, notFoundView{
			Screen: accesscontrol.ScreenNotFound,
			Path:   path,
			Home:   decision.Home,
		})
	}

	view := screenView{
		Screen:        decision.Screen,
		Authenticated: st.Authenticated(),
		Role:          string(st.Role),
		Nav:           accesscontrol.Navigation(st.Role),
		Notice:        w.sessions.ConsumeLogoutReason().Message(),
	}
	if decision.Screen == "contractor-login" {
		view.RememberedPhone, _ = w.auth.RememberedPhone(c.Request().Context())
	}

	return c.JSON(http.StatusOK, view)
}

type adminLoginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type contractorLoginReq struct {
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Password    string `json:"password" form:"password"`
	// Numbers or numeric strings, so both JSON and form posts bind
	Latitude   json.Number `json:"latitude" form:"latitude"`
	Longitude  json.Number `json:"longitude" form:"longitude"`
	Address    string      `json:"address" form:"address"`
	RememberMe bool        `json:"rememberMe" form:"rememberMe"`
}

func parseCoordinate(n json.Number) (*float64, error) {
	if n == "" {
		return nil, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (w *Webserver) adminLoginRouteHandler(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	}

	err := w.auth.AdminLogin(c.Request().Context(), req.Email, req.Password)
	return w.loginResponse(c, err)
}

func (w *Webserver) contractorLoginRouteHandler(c echo.Context) error {
	var req contractorLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	}

	lat, err := parseCoordinate(req.Latitude)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid latitude"})
	}
	lng, err := parseCoordinate(req.Longitude)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid longitude"})
	}

	err = w.auth.ContractorLogin(c.Request().Context(), auth.ContractorLogin{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Latitude:    lat,
		Longitude:   lng,
		Address:     req.Address,
		RememberMe:  req.RememberMe,
	})
	return w.loginResponse(c, err)
}

func (w *Webserver) loginResponse(c echo.Context, err error) error {
	if err == nil {
		return c.Redirect(http.StatusSeeOther, accesscontrol.PathDashboard)
	}

	var loginErr *auth.LoginError
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &loginErr):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: loginErr.Message})
	}

	w.logger.Error("couldn't start session after login", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Couldn't log you in"})
}

func (w *Webserver) logoutRouteHandler(c echo.Context) error {
	w.sessions.Logout(c.Request().Context(), session.LogoutReasonNone)
	return c.Redirect(http.StatusSeeOther, accesscontrol.PathLanding)
}

type pushTokenReq struct {
	Token string `json:"token" form:"token"`
}

func (w *Webserver) pushTokenRouteHandler(c echo.Context) error {
	var req pushTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request"})
	}

	err := w.auth.RegisterPushToken(c.Request().Context(), req.Token)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, auth.ErrNotLoggedIn):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, auth.ErrMissingPushToken):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	w.logger.Warn("couldn't register push token", zap.Error(err))
	return c.JSON(http.StatusBadGateway, errorResponse{Error: "Couldn't register push token"})
}

type sessionInfoRes struct {
	State     string     `json:"state"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (w *Webserver) sessionInfoRouteHandler(c echo.Context) error {
	st := w.sessions.State()

	res := sessionInfoRes{
		State: st.Auth.String(),
		Role:  string(st.Role),
	}
	if st.Authenticated() {
		if exp, err := session.ExpiresAt(st.Token); err == nil {
			res.ExpiresAt = &exp
		}
	}

	return c.JSON(http.StatusOK, res)
}
