package todosponenv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/mmynk/todosponen/pkg/api/todosponenv1"
)

// AccountServiceName is the fully-qualified name of the AccountService.
const AccountServiceName = "todosponen.v1.AccountService"

// Procedure paths of the AccountService.
const (
	AccountServiceRegisterProcedure      = "/" + AccountServiceName + "/Register"
	AccountServiceLoginProcedure         = "/" + AccountServiceName + "/Login"
	AccountServiceGetProfileProcedure    = "/" + AccountServiceName + "/GetProfile"
	AccountServiceUpdateProfileProcedure = "/" + AccountServiceName + "/UpdateProfile"
)

// AccountServiceHandler is implemented by the server.
// Register and Login are public; the rest require a token.
type AccountServiceHandler interface {
	Register(context.Context, *connect.Request[v1.RegisterRequest]) (*connect.Response[v1.RegisterResponse], error)
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error)
	GetProfile(context.Context, *connect.Request[v1.GetProfileRequest]) (*connect.Response[v1.GetProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error)
}

// NewAccountServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	handlers := map[string]http.Handler{
		AccountServiceRegisterProcedure:      connect.NewUnaryHandler(AccountServiceRegisterProcedure, svc.Register, opts...),
		AccountServiceLoginProcedure:         connect.NewUnaryHandler(AccountServiceLoginProcedure, svc.Login, opts...),
		AccountServiceGetProfileProcedure:    connect.NewUnaryHandler(AccountServiceGetProfileProcedure, svc.GetProfile, opts...),
		AccountServiceUpdateProfileProcedure: connect.NewUnaryHandler(AccountServiceUpdateProfileProcedure, svc.UpdateProfile, opts...),
	}
	return "/" + AccountServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// AccountServiceClient calls the AccountService.
type AccountServiceClient interface {
	Register(context.Context, *connect.Request[v1.RegisterRequest]) (*connect.Response[v1.RegisterResponse], error)
	Login(context.Context, *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error)
	GetProfile(context.Context, *connect.Request[v1.GetProfileRequest]) (*connect.Response[v1.GetProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error)
}

// NewAccountServiceClient creates a client for the AccountService served at baseURL.
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AccountServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withJSONClient(opts)
	return &accountServiceClient{
		register:      connect.NewClient[v1.RegisterRequest, v1.RegisterResponse](httpClient, baseURL+AccountServiceRegisterProcedure, opts...),
		login:         connect.NewClient[v1.LoginRequest, v1.LoginResponse](httpClient, baseURL+AccountServiceLoginProcedure, opts...),
		getProfile:    connect.NewClient[v1.GetProfileRequest, v1.GetProfileResponse](httpClient, baseURL+AccountServiceGetProfileProcedure, opts...),
		updateProfile: connect.NewClient[v1.UpdateProfileRequest, v1.UpdateProfileResponse](httpClient, baseURL+AccountServiceUpdateProfileProcedure, opts...),
	}
}

type accountServiceClient struct {
	register      *connect.Client[v1.RegisterRequest, v1.RegisterResponse]
	login         *connect.Client[v1.LoginRequest, v1.LoginResponse]
	getProfile    *connect.Client[v1.GetProfileRequest, v1.GetProfileResponse]
	updateProfile *connect.Client[v1.UpdateProfileRequest, v1.UpdateProfileResponse]
}

func (c *accountServiceClient) Register(ctx context.Context, req *connect.Request[v1.RegisterRequest]) (*connect.Response[v1.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *accountServiceClient) Login(ctx context.Context, req *connect.Request[v1.LoginRequest]) (*connect.Response[v1.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *accountServiceClient) GetProfile(ctx context.Context, req *connect.Request[v1.GetProfileRequest]) (*connect.Response[v1.GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}

func (c *accountServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[v1.UpdateProfileRequest]) (*connect.Response[v1.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}
