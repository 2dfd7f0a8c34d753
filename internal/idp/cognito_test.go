package idp

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dkurov/campdir/internal/logging"
)

// ---- fake Cognito API ----

type fakeCognito struct {
	SignUpErr          error
	ConfirmSignUpErr   error
	InitiateAuthOut    *cip.InitiateAuthOutput
	InitiateAuthErr    error
	GetUserOut         *cip.GetUserOutput
	GetUserErr         error
	ForgotErr          error
	ConfirmForgotErr   error
	GlobalSignOutErr   error
	GlobalSignOutCalls int

	LastSignUp       *cip.SignUpInput
	LastConfirm      *cip.ConfirmSignUpInput
	LastInitiateAuth *cip.InitiateAuthInput
}

func (f *fakeCognito) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	f.LastSignUp = in
	return &cip.SignUpOutput{}, f.SignUpErr
}

func (f *fakeCognito) ConfirmSignUp(_ context.Context, in *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	f.LastConfirm = in
	return &cip.ConfirmSignUpOutput{}, f.ConfirmSignUpErr
}

func (f *fakeCognito) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.LastInitiateAuth = in
	return f.InitiateAuthOut, f.InitiateAuthErr
}

func (f *fakeCognito) GetUser(_ context.Context, _ *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	return f.GetUserOut, f.GetUserErr
}

func (f *fakeCognito) ForgotPassword(_ context.Context, _ *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, f.ForgotErr
}

func (f *fakeCognito) ConfirmForgotPassword(_ context.Context, _ *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, f.ConfirmForgotErr
}

func (f *fakeCognito) GlobalSignOut(_ context.Context, _ *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	f.GlobalSignOutCalls++
	return &cip.GlobalSignOutOutput{}, f.GlobalSignOutErr
}

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func makeIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	// Signature content is irrelevant; claims are parsed unverified.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

func authResult(idToken string) *cip.InitiateAuthOutput {
	return &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String("access-token"),
			IdToken:      aws.String(idToken),
			RefreshToken: aws.String("refresh-token"),
			ExpiresIn:    3600,
		},
	}
}

// ---- tests ----

func TestSignIn_StoresTokensAndSessionExposesEmail(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{"email": "alice@x.com"})
	fc := &fakeCognito{InitiateAuthOut: authResult(idToken)}
	p := newCognitoProvider(fc, "client-id", testLogger())

	require.NoError(t, p.SignIn(context.Background(), "alice", "Secret123"))
	require.Equal(t, types.AuthFlowTypeUserPasswordAuth, fc.LastInitiateAuth.AuthFlow)
	require.Equal(t, "alice", fc.LastInitiateAuth.AuthParameters["USERNAME"])

	sess, err := p.Session(context.Background())
	require.NoError(t, err)
	require.Equal(t, idToken, sess.Token)
	require.Equal(t, "alice@x.com", sess.Email)
}

func TestSession_NoSignIn_ErrNoSession(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{}, "client-id", testLogger())
	_, err := p.Session(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSession_Expired_RefreshesWithRefreshToken(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{"email": "alice@x.com"})
	fc := &fakeCognito{InitiateAuthOut: authResult(idToken)}
	p := newCognitoProvider(fc, "client-id", testLogger())
	require.NoError(t, p.SignIn(context.Background(), "alice", "Secret123"))

	// Jump past expiry; refresh response omits the refresh token.
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	fc.InitiateAuthOut = &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken: aws.String("access-token-2"),
			IdToken:     aws.String(idToken),
			ExpiresIn:   3600,
		},
	}

	sess, err := p.Session(context.Background())
	require.NoError(t, err)
	require.Equal(t, idToken, sess.Token)
	require.Equal(t, types.AuthFlowTypeRefreshTokenAuth, fc.LastInitiateAuth.AuthFlow)
	require.Equal(t, "refresh-token", fc.LastInitiateAuth.AuthParameters["REFRESH_TOKEN"])

	// The original refresh token survives the rotation-free refresh.
	p.mu.Lock()
	require.Equal(t, "refresh-token", p.tokens.refreshToken)
	p.mu.Unlock()
}

func TestSession_Expired_RefreshRejected(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{})
	fc := &fakeCognito{InitiateAuthOut: authResult(idToken)}
	p := newCognitoProvider(fc, "client-id", testLogger())
	require.NoError(t, p.SignIn(context.Background(), "alice", "Secret123"))

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	fc.InitiateAuthErr = &types.NotAuthorizedException{Message: aws.String("Refresh Token has been revoked")}
	fc.InitiateAuthOut = nil

	_, err := p.Session(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestCurrentIdentity_ReturnsSubAndUsername(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{})
	fc := &fakeCognito{
		InitiateAuthOut: authResult(idToken),
		GetUserOut: &cip.GetUserOutput{
			Username: aws.String("alice"),
			UserAttributes: []types.AttributeType{
				{Name: aws.String("email"), Value: aws.String("alice@x.com")},
				{Name: aws.String("sub"), Value: aws.String("user-id-1")},
			},
		},
	}
	p := newCognitoProvider(fc, "client-id", testLogger())
	require.NoError(t, p.SignIn(context.Background(), "alice", "Secret123"))

	ident, err := p.CurrentIdentity(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", ident.Username)
	require.Equal(t, "user-id-1", ident.UserID)
}

func TestCurrentIdentity_SignedOut_ErrNoSession(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{}, "client-id", testLogger())
	_, err := p.CurrentIdentity(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSignUp_SendsEmailAttribute(t *testing.T) {
	fc := &fakeCognito{}
	p := newCognitoProvider(fc, "client-id", testLogger())

	require.NoError(t, p.SignUp(context.Background(), "alice", "alice@x.com", "Secret123"))
	require.Equal(t, "alice", aws.ToString(fc.LastSignUp.Username))
	require.Len(t, fc.LastSignUp.UserAttributes, 1)
	require.Equal(t, "email", aws.ToString(fc.LastSignUp.UserAttributes[0].Name))
	require.Equal(t, "alice@x.com", aws.ToString(fc.LastSignUp.UserAttributes[0].Value))
}

func TestSignOut_ClearsTokensEvenOnAPIError(t *testing.T) {
	idToken := makeIDToken(t, jwt.MapClaims{})
	fc := &fakeCognito{
		InitiateAuthOut:  authResult(idToken),
		GlobalSignOutErr: errors.New("boom"),
	}
	p := newCognitoProvider(fc, "client-id", testLogger())
	require.NoError(t, p.SignIn(context.Background(), "alice", "Secret123"))

	err := p.SignOut(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, fc.GlobalSignOutCalls)

	_, err = p.Session(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSignOut_WithoutSession_Noop(t *testing.T) {
	fc := &fakeCognito{}
	p := newCognitoProvider(fc, "client-id", testLogger())
	require.NoError(t, p.SignOut(context.Background()))
	require.Zero(t, fc.GlobalSignOutCalls)
}

func TestMapError_CognitoExceptions(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{}, "client-id", testLogger())

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not authorized", &types.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}, ErrInvalidCredentials},
		{"username exists", &types.UsernameExistsException{Message: aws.String("User already exists")}, ErrUsernameTaken},
		{"weak password", &types.InvalidPasswordException{Message: aws.String("Password not long enough")}, ErrWeakPassword},
		{"code mismatch", &types.CodeMismatchException{Message: aws.String("Invalid verification code provided")}, ErrInvalidCode},
		{"code expired", &types.ExpiredCodeException{Message: aws.String("Invalid code provided, please request a code again")}, ErrCodeExpired},
		{"user not found", &types.UserNotFoundException{Message: aws.String("User does not exist.")}, ErrUserNotFound},
		{"not confirmed", &types.UserNotConfirmedException{Message: aws.String("User is not confirmed.")}, ErrUserNotConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.mapError(tt.in)
			require.ErrorIs(t, got, tt.want)
			// Provider message stays visible for display.
			require.Contains(t, got.Error(), tt.in.(interface{ ErrorMessage() string }).ErrorMessage())
		})
	}
}

func TestMapError_UnknownErrorWrapped(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{}, "client-id", testLogger())
	in := errors.New("connection reset")
	got := p.mapError(in)
	require.ErrorIs(t, got, in)
}
