package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkurov/campdir/internal/auth"
	"github.com/dkurov/campdir/internal/flow"
	"github.com/dkurov/campdir/internal/idp"
	"github.com/dkurov/campdir/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func muteOutput(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

// stubInputs feeds canned answers to the text and password prompts in order.
func stubInputs(t *testing.T, texts []string, passwords [][]byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return append([]byte(nil), v...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeProvider struct {
	Identity *idp.Identity
	Info     *idp.SessionInfo

	SignInErr  error
	SignUpErr  error
	ConfirmErr error
	ResetErr   error

	signInUser    string
	signInPass    string
	signUpUser    string
	signUpEmail   string
	confirmUser   string
	confirmCode   string
	resetReqUser  string
	resetUser     string
	resetCode     string
	resetPassword string
	signedOut     bool
}

func (f *fakeProvider) CurrentIdentity(context.Context) (*idp.Identity, error) {
	if f.Identity == nil {
		return nil, idp.ErrNoSession
	}
	return f.Identity, nil
}

func (f *fakeProvider) Session(context.Context) (*idp.SessionInfo, error) {
	if f.Info == nil {
		return nil, idp.ErrNoSession
	}
	return f.Info, nil
}

func (f *fakeProvider) SignIn(_ context.Context, username, password string) error {
	f.signInUser, f.signInPass = username, password
	if f.SignInErr != nil {
		return f.SignInErr
	}
	if f.Identity == nil {
		f.Identity = &idp.Identity{UserID: "uid-1", Username: username}
	}
	if f.Info == nil {
		f.Info = &idp.SessionInfo{Token: "tok", Email: username + "@example.org"}
	}
	return nil
}

func (f *fakeProvider) SignUp(_ context.Context, username, email, password string) error {
	f.signUpUser, f.signUpEmail = username, email
	return f.SignUpErr
}

func (f *fakeProvider) ConfirmSignUp(_ context.Context, username, code string) error {
	f.confirmUser, f.confirmCode = username, code
	return f.ConfirmErr
}

func (f *fakeProvider) RequestPasswordReset(_ context.Context, username string) error {
	f.resetReqUser = username
	return f.ResetErr
}

func (f *fakeProvider) ConfirmPasswordReset(_ context.Context, username, code, newPassword string) error {
	f.resetUser, f.resetCode, f.resetPassword = username, code, newPassword
	return f.ResetErr
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signedOut = true
	f.Identity, f.Info = nil, nil
	return nil
}

func newTestApp(f *fakeProvider) *App {
	log := testLogger()
	svc := auth.NewService(f, log)
	return &App{
		log:    log,
		auth:   svc,
		flow:   flow.NewController(svc, log),
		reader: bufio.NewReader(io.MultiReader()),
	}
}

func TestSignIn_Success(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)
	stubInputs(t, []string{"alice"}, [][]byte{[]byte("secret")})

	require.NoError(t, a.SignIn(context.Background()))

	assert.Equal(t, "alice", f.signInUser)
	assert.Equal(t, "secret", f.signInPass)
	assert.True(t, a.isSignedIn())
}

func TestSignIn_BadCredentials(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{SignInErr: idp.ErrInvalidCredentials}
	a := newTestApp(f)
	stubInputs(t, []string{"alice"}, [][]byte{[]byte("wrong")})

	err := a.SignIn(context.Background())
	require.ErrorIs(t, err, idp.ErrInvalidCredentials)
	assert.False(t, a.isSignedIn())
}

func TestSignUp_PasswordMismatchNeverReachesProvider(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)
	stubInputs(t,
		[]string{"bob", "bob@example.org"},
		[][]byte{[]byte("one"), []byte("two")},
	)

	err := a.SignUp(context.Background())
	require.ErrorIs(t, err, flow.ErrPasswordMismatch)
	assert.Empty(t, f.signUpUser)
}

func TestSignUpThenConfirm(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)
	stubInputs(t,
		[]string{"bob", "bob@example.org"},
		[][]byte{[]byte("pw"), []byte("pw")},
	)

	require.NoError(t, a.SignUp(context.Background()))
	assert.Equal(t, "bob", f.signUpUser)
	assert.Equal(t, "bob@example.org", f.signUpEmail)
	assert.Equal(t, "bob", a.flow.PendingUsername())

	stubInputs(t, []string{"123456"}, nil)
	require.NoError(t, a.Confirm(context.Background()))
	assert.Equal(t, "bob", f.confirmUser)
	assert.Equal(t, "123456", f.confirmCode)
	assert.Equal(t, flow.RegStepIdle, a.flow.RegistrationStep())
}

func TestConfirm_NothingPending(t *testing.T) {
	muteOutput(t)
	a := newTestApp(&fakeProvider{})

	err := a.Confirm(context.Background())
	require.ErrorIs(t, err, flow.ErrNoPendingSignUp)
}

func TestForgotThenReset(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)

	stubInputs(t, []string{"carol"}, nil)
	require.NoError(t, a.Forgot(context.Background()))
	assert.Equal(t, "carol", f.resetReqUser)
	assert.Equal(t, flow.ResetStepReset, a.flow.PasswordResetStep())

	stubInputs(t, []string{"654321"}, [][]byte{[]byte("newpw")})
	require.NoError(t, a.Reset(context.Background()))
	assert.Equal(t, "carol", f.resetUser)
	assert.Equal(t, "654321", f.resetCode)
	assert.Equal(t, "newpw", f.resetPassword)
}

func TestReset_WithoutRequest(t *testing.T) {
	muteOutput(t)
	a := newTestApp(&fakeProvider{})

	err := a.Reset(context.Background())
	require.ErrorIs(t, err, flow.ErrNoPendingReset)
}

func TestCancel_ClearsPendingFlows(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)

	stubInputs(t,
		[]string{"bob", "bob@example.org"},
		[][]byte{[]byte("pw"), []byte("pw")},
	)
	require.NoError(t, a.SignUp(context.Background()))

	require.NoError(t, a.Cancel(context.Background()))
	assert.Equal(t, flow.RegStepIdle, a.flow.RegistrationStep())
	assert.Empty(t, a.flow.PendingUsername())
	assert.Equal(t, flow.ResetStepRequest, a.flow.PasswordResetStep())
}

func TestSignOut_ClearsSession(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{
		Identity: &idp.Identity{UserID: "uid-1", Username: "alice"},
		Info:     &idp.SessionInfo{Token: "tok", Email: "alice@example.org"},
	}
	a := newTestApp(f)
	a.auth.Restore(context.Background())
	require.True(t, a.isSignedIn())

	require.NoError(t, a.SignOut(context.Background()))
	assert.True(t, f.signedOut)
	assert.False(t, a.isSignedIn())
}

func TestWhoAmI_DoesNotError(t *testing.T) {
	muteOutput(t)
	a := newTestApp(&fakeProvider{})
	require.NoError(t, a.WhoAmI(context.Background()))

	a.auth.Restore(context.Background())
	require.NoError(t, a.WhoAmI(context.Background()))
}

func TestStatus_ShowsPendingSteps(t *testing.T) {
	muteOutput(t)
	f := &fakeProvider{}
	a := newTestApp(f)

	assert.Equal(t, "", a.status())

	stubInputs(t,
		[]string{"bob", "bob@example.org"},
		[][]byte{[]byte("pw"), []byte("pw")},
	)
	require.NoError(t, a.SignUp(context.Background()))
	assert.Contains(t, a.status(), "confirm?")
}

func TestSignIn_InputError(t *testing.T) {
	muteOutput(t)
	a := newTestApp(&fakeProvider{})
	origST := getSimpleText
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		return "", errors.New("tty gone")
	}
	t.Cleanup(func() { getSimpleText = origST })

	require.Error(t, a.SignIn(context.Background()))
}
