package authprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taldaor/internal/models"
)

func TestCreateUser_Success(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "user@example.com", payload["email"])
		assert.Equal(t, false, payload["email_confirm"])
		meta := payload["app_metadata"].(map[string]interface{})
		assert.Equal(t, "tenant", meta["role"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    userID.String(),
			"email": "user@example.com",
		})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	identity, err := client.CreateUser(context.Background(), "user@example.com", "secret123", models.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.ID)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.False(t, identity.Confirmed())
}

func TestCreateUser_AlreadyRegistered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"msg": "A user with this email address has already been registered"})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	identity, err := client.CreateUser(context.Background(), "user@example.com", "secret123", models.RoleTenant)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestInviteByEmail_AlreadyRegisteredByMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invite", r.URL.Path)
		assert.Equal(t, "https://app.example.com/?confirmed=1", r.URL.Query().Get("redirect_to"))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"msg": "User already registered"})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	_, err := client.InviteByEmail(context.Background(), "user@example.com", models.RoleAdmin, "https://app.example.com/?confirmed=1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestGetUserByEmail_ExactMatchOnly(t *testing.T) {
	confirmed := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user@example.com", r.URL.Query().Get("email"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []map[string]interface{}{
				{"id": uuid.NewString(), "email": "other@example.com"},
				{"id": uuid.NewString(), "email": "User@Example.COM", "email_confirmed_at": confirmed},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	identity, err := client.GetUserByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.True(t, identity.Confirmed())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"users": []interface{}{}})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	identity, err := client.GetUserByEmail(context.Background(), "ghost@nowhere.com")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResendConfirmation_AlreadyConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Email address already confirmed"})
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	err := client.ResendConfirmation(context.Background(), "user@example.com", "")
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestSendPasswordRecovery_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	err := client.SendPasswordRecovery(context.Background(), "user@example.com", "https://app.example.com/auth/reset-complete")
	assert.NoError(t, err)
	assert.Equal(t, "/recover", gotPath)
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPAdminClient(srv.URL, "service-key", 5*time.Second)
	assert.Error(t, client.Health(context.Background()))
}
