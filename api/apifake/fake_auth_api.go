package apifake

import (
	"context"
	"sync"

	"github.com/eventry/eventry-client-go/api"
)

var _ api.AuthAPI = (*FakeAuthAPI)(nil)

// FakeAuthAPI is an in-memory AuthAPI for tests. Each capability can be
// scripted with a function hook; unscripted capabilities succeed with zero
// values. Call counts are tracked so tests can assert how many round trips
// an operation made.
type FakeAuthAPI struct {
	VerifyTokenFn    func(ctx context.Context, token string) (*api.VerifyResult, error)
	LoginFn          func(ctx context.Context, email, password string) (*api.Credentials, error)
	LogoutFn         func(ctx context.Context, token string) error
	ConfirmAccountFn func(ctx context.Context, email, code string) (*api.Credentials, error)

	lock           sync.Mutex
	VerifyCalls    int
	LoginCalls     int
	LogoutCalls    int
	ConfirmCalls   int
	LastVerifyArg  string
	LastLogoutArg  string
	LastConfirmArg [2]string
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) VerifyToken(ctx context.Context, token string) (*api.VerifyResult, error) {
	f.lock.Lock()
	f.VerifyCalls++
	f.LastVerifyArg = token
	f.lock.Unlock()

	if f.VerifyTokenFn != nil {
		return f.VerifyTokenFn(ctx, token)
	}
	return &api.VerifyResult{IsConnected: false}, nil
}

func (f *FakeAuthAPI) Login(ctx context.Context, email, password string) (*api.Credentials, error) {
	f.lock.Lock()
	f.LoginCalls++
	f.lock.Unlock()

	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password)
	}
	return nil, api.ErrUnauthorized
}

func (f *FakeAuthAPI) Logout(ctx context.Context, token string) error {
	f.lock.Lock()
	f.LogoutCalls++
	f.LastLogoutArg = token
	f.lock.Unlock()

	if f.LogoutFn != nil {
		return f.LogoutFn(ctx, token)
	}
	return nil
}

func (f *FakeAuthAPI) ConfirmAccount(ctx context.Context, email, code string) (*api.Credentials, error) {
	f.lock.Lock()
	f.ConfirmCalls++
	f.LastConfirmArg = [2]string{email, code}
	f.lock.Unlock()

	if f.ConfirmAccountFn != nil {
		return f.ConfirmAccountFn(ctx, email, code)
	}
	return nil, api.ErrUnauthorized
}
