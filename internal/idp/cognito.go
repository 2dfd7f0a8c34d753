package idp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dkurov/campdir/internal/logging"
)

// cognitoAPI is the slice of the Cognito user-pool API the adapter uses.
// Kept as an interface so tests can substitute a fake.
type cognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, opts ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, opts ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, opts ...func(*cip.Options)) (*cip.GetUserOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, opts ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// tokenSet is the credential state cached between calls. The refresh token
// outlives the other two and is reused until the provider rotates it.
type tokenSet struct {
	accessToken  string
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// CognitoProvider implements Provider against an Amazon Cognito user pool.
// It caches the token set issued at sign-in and refreshes it transparently
// when a caller asks for a session after expiry.
type CognitoProvider struct {
	api      cognitoAPI
	clientID string
	log      logging.Logger

	mu     sync.Mutex
	tokens tokenSet

	now func() time.Time
}

// NewCognitoProvider builds a provider for the given user-pool app client.
// User-pool auth operations are unsigned, so the underlying SDK client runs
// with anonymous credentials.
func NewCognitoProvider(ctx context.Context, region, clientID string, log logging.Logger) (*CognitoProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	api := cip.NewFromConfig(cfg, func(o *cip.Options) {
		o.Credentials = aws.AnonymousCredentials{}
	})
	return newCognitoProvider(api, clientID, log), nil
}

func newCognitoProvider(api cognitoAPI, clientID string, log logging.Logger) *CognitoProvider {
	return &CognitoProvider{api: api, clientID: clientID, log: log, now: time.Now}
}

func (p *CognitoProvider) SignIn(ctx context.Context, username, password string) error {
	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return p.mapError(err)
	}
	if out.AuthenticationResult == nil {
		// Challenge responses (MFA etc.) are not supported by this client.
		return fmt.Errorf("%w: unsupported auth challenge", ErrInvalidCredentials)
	}
	p.storeTokens(out.AuthenticationResult)
	return nil
}

func (p *CognitoProvider) SignUp(ctx context.Context, username, email, password string) error {
	_, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	return p.mapError(err)
}

func (p *CognitoProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	return p.mapError(err)
}

func (p *CognitoProvider) RequestPasswordReset(ctx context.Context, username string) error {
	_, err := p.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
	})
	return p.mapError(err)
}

func (p *CognitoProvider) ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error {
	_, err := p.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	return p.mapError(err)
}

// CurrentIdentity resolves the signed-in user from the user pool. The user id
// is the immutable "sub" attribute, not the username.
func (p *CognitoProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	token, err := p.freshAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	out, err := p.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(token)})
	if err != nil {
		return nil, p.mapError(err)
	}

	ident := &Identity{Username: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "sub" {
			ident.UserID = aws.ToString(attr.Value)
			break
		}
	}
	return ident, nil
}

// Session returns the id token as the bearer credential for data requests,
// refreshing it first when expired. The email claim is read from the token
// without signature verification; verification is the API's job.
func (p *CognitoProvider) Session(ctx context.Context) (*SessionInfo, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	idToken := p.tokens.idToken
	p.mu.Unlock()

	return &SessionInfo{Token: idToken, Email: emailClaim(idToken)}, nil
}

// SignOut revokes the session server-side and always drops the cached
// tokens, even when revocation fails.
func (p *CognitoProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	accessToken := p.tokens.accessToken
	p.tokens = tokenSet{}
	p.mu.Unlock()

	if accessToken == "" {
		return nil
	}
	if _, err := p.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)}); err != nil {
		return p.mapError(err)
	}
	return nil
}

func (p *CognitoProvider) storeTokens(result *types.AuthenticationResultType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	refresh := aws.ToString(result.RefreshToken)
	if refresh == "" {
		// Refresh flows do not reissue the refresh token.
		refresh = p.tokens.refreshToken
	}
	p.tokens = tokenSet{
		accessToken:  aws.ToString(result.AccessToken),
		idToken:      aws.ToString(result.IdToken),
		refreshToken: refresh,
		expiresAt:    p.now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
}

func (p *CognitoProvider) freshAccessToken(ctx context.Context) (string, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens.accessToken, nil
}

// ensureFresh refreshes the token set via the refresh-token flow when the
// access/id tokens have expired. ErrNoSession when signed out,
// ErrSessionExpired when refresh is impossible or rejected.
func (p *CognitoProvider) ensureFresh(ctx context.Context) error {
	p.mu.Lock()
	tokens := p.tokens
	p.mu.Unlock()

	if tokens.idToken == "" {
		return ErrNoSession
	}
	if p.now().Before(tokens.expiresAt) {
		return nil
	}
	if tokens.refreshToken == "" {
		return ErrSessionExpired
	}

	p.log.Debug(ctx, "refreshing expired session tokens")

	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": tokens.refreshToken,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if out.AuthenticationResult == nil {
		return ErrSessionExpired
	}
	p.storeTokens(out.AuthenticationResult)
	return nil
}

// mapError converts Cognito exception types to this package's sentinel
// errors, preserving the provider's message for display.
func (p *CognitoProvider) mapError(err error) error {
	if err == nil {
		return nil
	}

	var (
		notAuthorized  *types.NotAuthorizedException
		usernameExists *types.UsernameExistsException
		weakPassword   *types.InvalidPasswordException
		codeMismatch   *types.CodeMismatchException
		codeExpired    *types.ExpiredCodeException
		userNotFound   *types.UserNotFoundException
		notConfirmed   *types.UserNotConfirmedException
	)

	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, notAuthorized.ErrorMessage())
	case errors.As(err, &usernameExists):
		return fmt.Errorf("%w: %s", ErrUsernameTaken, usernameExists.ErrorMessage())
	case errors.As(err, &weakPassword):
		return fmt.Errorf("%w: %s", ErrWeakPassword, weakPassword.ErrorMessage())
	case errors.As(err, &codeMismatch):
		return fmt.Errorf("%w: %s", ErrInvalidCode, codeMismatch.ErrorMessage())
	case errors.As(err, &codeExpired):
		return fmt.Errorf("%w: %s", ErrCodeExpired, codeExpired.ErrorMessage())
	case errors.As(err, &userNotFound):
		return fmt.Errorf("%w: %s", ErrUserNotFound, userNotFound.ErrorMessage())
	case errors.As(err, &notConfirmed):
		return fmt.Errorf("%w: %s", ErrUserNotConfirmed, notConfirmed.ErrorMessage())
	default:
		return fmt.Errorf("identity provider error: %w", err)
	}
}

// emailClaim extracts the email claim from an id token. Parsing is
// unverified; a malformed token simply yields no email.
func emailClaim(idToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
