package controllers_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"gorm.io/gorm"

	"newswire/models"
)

func TestRegisterValidation(t *testing.T) {
	r, db := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"entirely numeric password", map[string]string{"email": "num@mail.com", "password": "12345678"}},
		{"short password", map[string]string{"email": "short@mail.com", "password": "abc1"}},
		{"password similar to email", map[string]string{"email": "charlotte@mail.com", "password": "charlotte99"}},
		{"missing password", map[string]string{"email": "nopass@mail.com"}},
		{"missing email", map[string]string{"password": "strongpass1"}},
		{"malformed email", map[string]string{"email": "not-an-email", "password": "strongpass1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/api/user/register", "", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
			}
		})
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no users created by rejected registrations, got %d", count)
	}
}

func TestRegisterSuccessAndDuplicate(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/user/register", "", map[string]string{
		"email":    "a@mail.com",
		"password": "strongpass1",
		"name":     "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decodeData(t, env, &data)
	if data.Email != "a@mail.com" || data.Name != "Alice" {
		t.Fatalf("unexpected register payload: %+v", data)
	}
	if strings.Contains(w.Body.String(), "strongpass1") {
		t.Fatalf("response echoes the password: %s", w.Body.String())
	}

	// same email again, case-insensitively
	w, _ = doJSON(t, r, http.MethodPost, "/api/user/register", "", map[string]string{
		"email":    "A@Mail.com",
		"password": "strongpass2",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate registration: expected 400, got %d", w.Code)
	}
}

func TestTokenIssuance(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "login@mail.com")

	w1, _ := doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    "login@mail.com",
		"password": "wrongpass99",
	})
	w2, _ := doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    "nobody@mail.com",
		"password": "strongpass1",
	})
	if w1.Code != http.StatusBadRequest || w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad credentials, got %d and %d", w1.Code, w2.Code)
	}
	// unknown email and wrong password must be indistinguishable
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("credential errors leak account existence:\n%s\n%s", w1.Body.String(), w2.Body.String())
	}

	w, _ := doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{"email": "login@mail.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", w.Code)
	}
}

func TestMeAndProfileUpdate(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "me@mail.com")

	w, env := doJSON(t, r, http.MethodGet, "/api/user/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decodeData(t, env, &me)
	if me.Email != "me@mail.com" {
		t.Fatalf("unexpected me payload: %+v", me)
	}

	w, env = doJSON(t, r, http.MethodPatch, "/api/user/me", token, map[string]string{"name": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch name: expected 200, got %d body %s", w.Code, w.Body.String())
	}
	decodeData(t, env, &me)
	if me.Name != "Renamed" {
		t.Fatalf("name not updated: %+v", me)
	}

	// weak replacement password is rejected
	w, _ = doJSON(t, r, http.MethodPatch, "/api/user/me", token, map[string]string{"password": "12345678"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("weak new password: expected 400, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPatch, "/api/user/me", token, map[string]string{"password": "freshpass22"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch password: expected 200, got %d body %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    "me@mail.com",
		"password": "strongpass1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("old password should no longer work, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    "me@mail.com",
		"password": "freshpass22",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("new password should work, got %d body %s", w.Code, w.Body.String())
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r, "bye@mail.com")

	w, _ := doJSON(t, r, http.MethodPost, "/api/user/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/user/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", w.Code)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/me"},
		{http.MethodPatch, "/api/user/me"},
		{http.MethodGet, "/api/news"},
		{http.MethodPost, "/api/news"},
		{http.MethodGet, "/api/news/1"},
		{http.MethodGet, "/api/news/1/upvote"},
		{http.MethodGet, "/api/news/1/comment"},
		{http.MethodDelete, "/api/news/1/comment/1"},
	}
	for _, p := range paths {
		w, _ := doJSON(t, r, p.method, p.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}

	// garbage token is equally rejected
	w, _ := doJSON(t, r, http.MethodGet, "/api/news", "definitely-not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: expected 401, got %d", w.Code)
	}
}

// A concurrent registration can pass the duplicate lookup and hit the unique
// index on insert; the handler maps that to the same 400 as the lookup path.
// The index violation must come back as gorm's translated duplicate error.
func TestDuplicateInsertSurfacesAsDuplicatedKey(t *testing.T) {
	r, db := newTestRouter(t)
	registerAndLogin(t, r, "first@mail.com")

	err := db.Create(&models.User{
		Email:        "first@mail.com",
		PasswordHash: "irrelevant",
	}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "first@mail.com").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single account, found %d", count)
	}
}
