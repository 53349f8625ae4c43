package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/session"
)

// Route is a dashboard screen.
type Route string

const (
	RouteLogin  Route = "login"
	RouteSignup Route = "signup"
	RouteHome   Route = "home"
)

// Auth screen messages.
const (
	MsgVerifyEmail  = "Please check your email for verification link!"
	MsgSignInFailed = "Invalid credentials. Please try again."
	MsgSignUpFailed = "Registration failed. Please try again."
)

// App owns the current route. Signing in moves to home and signing out moves
// to login; both happen when the session manager delivers the auth event.
type App struct {
	sessions *session.Manager

	mu          sync.Mutex
	route       Route
	user        string
	formError   string
	routes      chan Route
	unsubscribe func()
}

// NewApp starts on the login route and follows auth state changes of sessions.
func NewApp(sessions *session.Manager) *App {
	a := &App{
		sessions: sessions,
		route:    RouteLogin,
		routes:   make(chan Route, 16),
	}
	a.unsubscribe = sessions.OnAuthStateChange(a.onAuthStateChange)
	return a
}

// Close stops following auth state changes.
func (a *App) Close() {
	a.unsubscribe()
}

// Start checks for an existing session, as the dashboard does on first load.
func (a *App) Start(ctx context.Context) error {
	user, err := a.sessions.GetUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		a.navigate(RouteLogin)
		return nil
	}
	a.mu.Lock()
	a.user = user.DisplayName
	a.mu.Unlock()
	a.navigate(RouteHome)
	return nil
}

func (a *App) onAuthStateChange(event session.Event, s *session.Session) {
	switch event {
	case session.EventSignedIn, session.EventUserUpdated:
		a.mu.Lock()
		if s != nil && s.User != nil {
			a.user = s.User.DisplayName
		}
		a.mu.Unlock()
		a.navigate(RouteHome)
	case session.EventSignedOut:
		a.mu.Lock()
		a.user = ""
		a.mu.Unlock()
		a.navigate(RouteLogin)
	}
}

func (a *App) navigate(r Route) {
	a.mu.Lock()
	changed := a.route != r
	a.route = r
	a.mu.Unlock()
	if changed {
		select {
		case a.routes <- r:
		default:
		}
	}
}

// Route returns the current screen.
func (a *App) Route() Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// Routes delivers each route change. Changes are dropped when nobody reads.
func (a *App) Routes() <-chan Route {
	return a.routes
}

// UserName returns the display name of the signed-in user.
func (a *App) UserName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// FormError returns the message shown on the login or signup screen.
func (a *App) FormError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.formError
}

// ShowSignup and ShowLogin switch between the two auth screens. They do
// nothing while signed in.
func (a *App) ShowSignup() { a.switchAuthScreen(RouteSignup) }
func (a *App) ShowLogin()  { a.switchAuthScreen(RouteLogin) }

func (a *App) switchAuthScreen(r Route) {
	if a.sessions.Current() != nil {
		return
	}
	a.setFormError("")
	a.navigate(r)
}

// SignIn validates the login form and signs in.
func (a *App) SignIn(ctx context.Context, f auth.SignInForm) error {
	if err := auth.ValidateSignIn(f); err != nil {
		a.setFormError(err.Error())
		return err
	}
	a.setFormError("")
	if _, err := a.sessions.SignInWithPassword(ctx, strings.TrimSpace(f.Email), f.Password); err != nil {
		a.setFormError(failureMessage(err, MsgSignInFailed))
		return err
	}
	return nil
}

// SignUp validates the signup form and creates the account. The new account
// is signed in right away, so the route moves to home once SIGNED_IN arrives;
// MsgVerifyEmail stays in FormError and is shown on the next auth screen.
func (a *App) SignUp(ctx context.Context, f auth.SignUpForm) error {
	if err := auth.ValidateSignUp(f); err != nil {
		a.setFormError(err.Error())
		return err
	}
	a.setFormError("")
	metadata := map[string]string{"name": strings.TrimSpace(f.Name)}
	if _, err := a.sessions.SignUp(ctx, strings.TrimSpace(f.Email), f.Password, metadata); err != nil {
		a.setFormError(failureMessage(err, MsgSignUpFailed))
		return err
	}
	a.setFormError(MsgVerifyEmail)
	return nil
}

// SignOut ends the session.
func (a *App) SignOut(ctx context.Context) error {
	return a.sessions.SignOut(ctx)
}

func (a *App) setFormError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.formError = msg
}

func failureMessage(err error, fallback string) string {
	if msg := message(err); msg != "" {
		return msg
	}
	return fallback
}
