package service_test

import (
	"context"
	"testing"

	"github.com/mrinmay27/the149-store/internal/config"
	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
}

func pinHash(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_StartsUnapproved(t *testing.T) {
	repo := newStubProfileRepo()
	svc := service.NewAuthService(repo, testConfig(), nil)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Phone: "+919876543210",
		Name:  "Asha",
		PIN:   "483920",
		Role:  model.RoleManager,
	})
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.False(t, resp.IsAdmin)

	// The PIN is stored hashed, never in the clear.
	stored, err := repo.FindByPhone(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.NotContains(t, stored.PINHash, "483920")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte("483920")))
}

func TestLogin_FlowAndRejections(t *testing.T) {
	repo := newStubProfileRepo()
	approved := repo.add(model.Profile{
		Phone: "+911111111111", Name: "Ravi", Role: model.RoleOwner,
		PINHash: pinHash(t, "149149"), Approved: true,
	})
	repo.add(model.Profile{
		Phone: "+912222222222", Name: "Newbie", Role: model.RoleManager,
		PINHash: pinHash(t, "000000"),
	})
	svc := service.NewAuthService(repo, testConfig(), nil)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Phone: "+911111111111", PIN: "149149"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, approved.ID.String(), resp.User.ID)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Phone: "+911111111111", PIN: "999999"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Phone: "+910000000000", PIN: "149149"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Phone: "+912222222222", PIN: "000000"})
	assert.ErrorIs(t, err, service.ErrNotApproved)
}

func TestRefresh_RevokedApprovalBlocksRotation(t *testing.T) {
	repo := newStubProfileRepo()
	p := repo.add(model.Profile{
		Phone: "+911111111111", Name: "Ravi", Role: model.RoleOwner,
		PINHash: pinHash(t, "149149"), Approved: true,
	})
	svc := service.NewAuthService(repo, testConfig(), nil)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Phone: "+911111111111", PIN: "149149"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)

	// Revoke and try again with the same refresh token.
	p.Approved = false
	require.NoError(t, repo.Update(context.Background(), p))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrNotApproved)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := service.NewAuthService(newStubProfileRepo(), testConfig(), nil)
	_, err := svc.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSetApproval_Flips(t *testing.T) {
	repo := newStubProfileRepo()
	p := repo.add(model.Profile{
		Phone: "+912222222222", Name: "Newbie", Role: model.RoleManager,
		PINHash: pinHash(t, "000000"),
	})
	svc := service.NewAuthService(repo, testConfig(), nil)

	resp, err := svc.SetApproval(context.Background(), p.ID, true)
	require.NoError(t, err)
	assert.True(t, resp.Approved)

	resp, err = svc.SetApproval(context.Background(), p.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Approved)
}
