package accounts

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountsControllerOption) {

	controller := NewAccountsController(opts...)

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	app.Get(controller.Routes.Users, controller.UsersIndex).
		SetName("users.get")
	app.Post(controller.Routes.Delete, controller.UserDelete).
		SetName("users-delete.post")
}

type AccountsControllerRoutes struct {
	Login    string
	Logout   string
	Register string
	Users    string
	Delete   string
}

type AccountsControllerViews struct {
	Login    string
	Register string
	Users    string
}

type AccountsController struct {
	Debug        bool
	Logger       Logger
	Coordinator  *Coordinator
	Remote       RemoteUserRegistry
	Local        LocalUserRegistry
	Session      *SessionState
	Routes       *AccountsControllerRoutes
	Views        *AccountsControllerViews
	ErrorHandler router.ErrorHandler
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AccountsControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
			Users:    "/users",
			Delete:   "/users/delete",
		},
		Views: &AccountsControllerViews{
			Login:    "login",
			Register: "register",
			Users:    "users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Coordinator == nil {
		panic("Missing Coordinator in accounts controller...")
	}

	if c.Session == nil {
		panic("Missing SessionState in accounts controller...")
	}

	return c
}

func WithController(coordinator *Coordinator, session *SessionState) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Coordinator = coordinator
		c.Session = session
		return c
	}
}

func WithRegistries(remote RemoteUserRegistry, local LocalUserRegistry) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Remote = remote
		c.Local = local
		return c
	}
}

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func (a *AccountsController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginPayload is the sign in form payload
type LoginPayload struct {
	UserID   string `form:"user_id" json:"user_id"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.UserID,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		a.Logger.Debug("login payload: %s", print.MaybePrettyJSON(payload))
	}

	input := LoginInput{
		UserID:   payload.UserID,
		Password: payload.Password,
	}

	if err := a.Coordinator.Login(ctx.Context(), input); err != nil {
		a.Logger.Info("login failed for %s: %v", payload.UserID, err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  UserMessage(err),
			"system_message": "Sign in failed",
		}).Status(loginStatus(err)).Render(a.Views.Login, router.ViewContext{
			"errors": map[string]string{"authentication": UserMessage(err)},
			"record": payload,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Signed in",
	}).Redirect(a.Routes.Users, fiber.StatusSeeOther)
}

func (a *AccountsController) LogOut(ctx router.Context) error {
	a.Coordinator.Logout(ctx.Context())
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *AccountsController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": SignupPayload{},
	})
}

// SignupPayload is the registration form payload
type SignupPayload struct {
	UserID          string `form:"user_id" json:"user_id"`
	Email           string `form:"email" json:"email"`
	Name            string `form:"name" json:"name"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AccountsController) RegistrationCreate(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	input := SignupInput{
		UserID:          payload.UserID,
		Email:           payload.Email,
		Name:            payload.Name,
		Password:        payload.Password,
		PasswordConfirm: payload.ConfirmPassword,
	}

	if err := a.Coordinator.Signup(ctx.Context(), input); err != nil {
		a.Logger.Error("register signup: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  UserMessage(err),
			"system_message": "Registration failed",
		}).Status(signupStatus(err)).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"registration": UserMessage(err)},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account created",
	}).Redirect(a.Routes.Users, fiber.StatusSeeOther)
}

// UsersIndex renders the merged view of both registries. The remote list
// is best effort; when it cannot be fetched the local records still show,
// with a notice that the registry service is unreachable.
func (a *AccountsController) UsersIndex(ctx router.Context) error {
	vctx := router.ViewContext{}

	var remote []UserRecord
	if a.Remote != nil {
		records, err := a.Remote.List(ctx.Context())
		if err != nil {
			a.Logger.Info("users: remote list: %v", err)
			vctx["registry_notice"] = UserMessage(err)
		} else {
			remote = records
		}
	}

	var local []UserRecord
	if a.Local != nil {
		records, err := a.Local.List(ctx.Context())
		if err != nil {
			a.Logger.Error("users: local list: %v", err)
		} else {
			local = records
		}
	}

	merged := MergeCandidates(remote, local)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UserID < merged[j].UserID
	})

	identities := make([]Identity, 0, len(merged))
	for _, record := range merged {
		identities = append(identities, record.Identity())
	}

	current := a.Session.User.Current()

	vctx["users"] = identities
	vctx["current"] = current

	return ctx.Render(a.Views.Users, vctx)
}

// DeletePayload identifies the account to remove
type DeletePayload struct {
	UserID string `form:"user_id" json:"user_id"`
}

// Validate will validate the payload
func (r DeletePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
	)
}

func (a *AccountsController) UserDelete(ctx router.Context) error {
	payload := new(DeletePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("delete parse payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Redirect(a.Routes.Users, fiber.StatusSeeOther)
	}

	if err := a.Coordinator.Delete(ctx.Context(), payload.UserID); err != nil {
		a.Logger.Error("delete %s: %v", payload.UserID, err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  UserMessage(err),
			"system_message": "Delete failed",
		}).Redirect(a.Routes.Users, fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account deleted",
	}).Redirect(a.Routes.Users, fiber.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo field errors into a plain map
// for templates.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var fields validation.Errors
	if errors.As(err, &fields) {
		for name, ferr := range fields {
			out[name] = ferr.Error()
		}
		return out
	}

	out["validation"] = err.Error()

	return out
}

func loginStatus(err error) int {
	switch {
	case IsValidation(err):
		return fiber.StatusBadRequest
	case IsInvalidCredentials(err):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func signupStatus(err error) int {
	switch {
	case IsValidation(err):
		return fiber.StatusBadRequest
	case IsDuplicateIdentity(err):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
