package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"amdesk/internal/jwttoken"
	"amdesk/internal/user"
)

type AuthHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func (s *AuthHandlerSuite) SetupTest() {
	users, err := user.NewFileStore(filepath.Join(s.T().TempDir(), "users.json"))
	s.Require().NoError(err)
	tokens := jwttoken.New("test-signing-key", "amdesk", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(users, tokens, logger)
	s.router = chi.NewRouter()
	s.router.Route("/api/auth", h.Register)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerSuite) TestIdentify() {
	s.Run("known sid returns a masked hint", func() {
		rec := s.post("/api/auth/identify", `{"sid":"kjames"}`)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp struct {
			OK          bool   `json:"ok"`
			SID         string `json:"sid"`
			DisplayName string `json:"displayName"`
			Hint        string `json:"hint"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.True(resp.OK)
		s.Equal("kjames", resp.SID)
		s.Equal("Kara James", resp.DisplayName)
		s.NotContains(resp.Hint, "kara.james@")
		s.Contains(resp.Hint, "@amdesk.example")
	})

	s.Run("unknown sid", func() {
		rec := s.post("/api/auth/identify", `{"sid":"ghost"}`)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("missing sid", func() {
		rec := s.post("/api/auth/identify", `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("valid credentials return token and profile", func() {
		rec := s.post("/api/auth/login", `{"sid":"tfrancis","password":"ChangeMe123!"}`)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp struct {
			Token string            `json:"token"`
			User  map[string]string `json:"user"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.NotEmpty(resp.Token)
		s.Equal("thomas.francis@amdesk.example", resp.User["email"])
		s.Equal("Admin", resp.User["role"])
	})

	s.Run("legacy email field works as identifier", func() {
		rec := s.post("/api/auth/login", `{"email":"kara.james@amdesk.example","password":"ChangeMe123!"}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("wrong password", func() {
		rec := s.post("/api/auth/login", `{"sid":"tfrancis","password":"nope"}`)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("unknown user reads the same as a bad password", func() {
		rec := s.post("/api/auth/login", `{"sid":"ghost","password":"whatever"}`)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("missing fields", func() {
		rec := s.post("/api/auth/login", `{"sid":"tfrancis"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestMeRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthHandlerSuite) TestMeWithToken() {
	login := s.post("/api/auth/login", `{"sid":"tfrancis","password":"ChangeMe123!"}`)
	s.Require().Equal(http.StatusOK, login.Code)

	var resp struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(login.Body).Decode(&resp))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var me user.User
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&me))
	s.Equal("thomas.francis@amdesk.example", me.Email)
	s.Empty(me.PasswordHash)
}
