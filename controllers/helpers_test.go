package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"newswire/config"
	"newswire/models"
	"newswire/routes"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	cfg := config.Load()
	cfg.GinMode = "test"
	cfg.RateLimitPerMinute = 0
	config.Set(cfg)
	os.Exit(m.Run())
}

// newTestRouter builds the full router over a fresh in-memory database.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.News{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return routes.SetupRouter(db), db
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type newsPayload struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"author_id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	UpVotes  int    `json:"up_votes"`
	Author   struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"author"`
}

type commentPayload struct {
	ID       uint   `json:"id"`
	NewsID   uint   `json:"news_id"`
	AuthorID uint   `json:"author_id"`
	Content  string `json:"content"`
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
}

// registerAndLogin creates an account and returns a bearer token for it.
func registerAndLogin(t *testing.T, r http.Handler, email string) string {
	t.Helper()

	w, _ := doJSON(t, r, http.MethodPost, "/api/user/register", "", map[string]string{
		"email":    email,
		"password": "strongpass1",
		"name":     "someone",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    email,
		"password": "strongpass1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("token %s: status %d body %s", email, w.Code, w.Body.String())
	}

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	if data.Token == "" {
		t.Fatalf("empty token for %s", email)
	}
	return data.Token
}

// createNews submits a news item and returns its decoded payload.
func createNews(t *testing.T, r http.Handler, token, title, link string) newsPayload {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/news", token, map[string]string{
		"title": title,
		"link":  link,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create news: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		News newsPayload `json:"news"`
	}
	decodeData(t, env, &data)
	return data.News
}

// createComment attaches a comment and returns its decoded payload.
func createComment(t *testing.T, r http.Handler, token string, newsID uint, content string) commentPayload {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, newsPath(newsID)+"/comment", token, map[string]string{
		"content": content,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Comment commentPayload `json:"comment"`
	}
	decodeData(t, env, &data)
	return data.Comment
}

func newsPath(id uint) string {
	return "/api/news/" + strconv.FormatUint(uint64(id), 10)
}
