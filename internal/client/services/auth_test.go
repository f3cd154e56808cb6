package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/client/repositories/session"
	"github.com/dmitrijs2005/filevault/internal/common"
)

const server = "http://127.0.0.1:3000"

func newAuth(c *fakeClient, s *fakeSessions) *authService {
	a := NewAuthService(c, s, server).(*authService)
	a.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestLogin_RemembersSession(t *testing.T) {
	c := &fakeClient{session: &models.Session{AccessToken: "tok", User: models.User{ID: "u1"}}}
	s := &fakeSessions{}

	got, err := newAuth(c, s).Login(context.Background(), "alice@example.com", "password123")

	require.NoError(t, err)
	require.Equal(t, "tok", got.AccessToken)
	require.Equal(t, &session.Saved{
		ServerURL:   server,
		Email:       "alice@example.com",
		UserID:      "u1",
		AccessToken: "tok",
		SavedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, s.saved)
}

func TestRegister_ErrorSavesNothing(t *testing.T) {
	c := &fakeClient{authErr: common.ErrorConflict}
	s := &fakeSessions{}

	_, err := newAuth(c, s).Register(context.Background(), "alice@example.com", "password123")

	require.ErrorIs(t, err, common.ErrorConflict)
	require.Nil(t, s.saved)
}

func TestLogin_SaveFailureIsReported(t *testing.T) {
	c := &fakeClient{session: &models.Session{AccessToken: "tok"}}
	s := &fakeSessions{saveErr: errors.New("disk full")}

	got, err := newAuth(c, s).Login(context.Background(), "alice@example.com", "password123")

	require.ErrorContains(t, err, "session was not saved")
	require.NotNil(t, got, "session is still usable for this run")
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
		wantErr   bool
	}{
		{"ok", nil, false},
		{"token already rejected", common.ErrorUnauthorized, false},
		{"server down", errors.New("server unavailable"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{logoutErr: tt.logoutErr}
			s := &fakeSessions{saved: &session.Saved{AccessToken: "tok"}}

			err := newAuth(c, s).Logout(context.Background(), "tok")

			require.Equal(t, tt.wantErr, err != nil, "err = %v", err)
			require.Equal(t, []string{"tok"}, c.logouts)
			require.Nil(t, s.saved, "local session is always forgotten")
		})
	}
}

func TestRestore(t *testing.T) {
	saved := func() *session.Saved {
		return &session.Saved{ServerURL: server, Email: "alice@example.com", UserID: "u1", AccessToken: "tok"}
	}

	t.Run("nothing saved", func(t *testing.T) {
		got, err := newAuth(&fakeClient{}, &fakeSessions{}).Restore(context.Background())
		require.NoError(t, err)
		require.Nil(t, got)
	})
	t.Run("valid", func(t *testing.T) {
		c := &fakeClient{meUser: &models.User{ID: "u1", Email: "alice@example.com"}}
		got, err := newAuth(c, &fakeSessions{saved: saved()}).Restore(context.Background())
		require.NoError(t, err)
		require.Equal(t, "tok", got.AccessToken)
		require.Equal(t, "alice@example.com", got.User.Email)
	})
	t.Run("other server", func(t *testing.T) {
		s := saved()
		s.ServerURL = "http://elsewhere"
		got, err := newAuth(&fakeClient{}, &fakeSessions{saved: s}).Restore(context.Background())
		require.NoError(t, err)
		require.Nil(t, got)
	})
	t.Run("expired token is forgotten", func(t *testing.T) {
		c := &fakeClient{meErr: common.ErrorUnauthorized}
		s := &fakeSessions{saved: saved()}
		got, err := newAuth(c, s).Restore(context.Background())
		require.NoError(t, err)
		require.Nil(t, got)
		require.Equal(t, 1, s.cleared)
	})
	t.Run("server down keeps session", func(t *testing.T) {
		c := &fakeClient{meErr: errors.New("server unavailable")}
		s := &fakeSessions{saved: saved()}
		_, err := newAuth(c, s).Restore(context.Background())
		require.Error(t, err)
		require.NotNil(t, s.saved)
	})
}
