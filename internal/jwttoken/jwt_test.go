package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "amdesk/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	service *Service
}

func (s *JWTSuite) SetupTest() {
	s.service = New("test-signing-key", "amdesk", time.Hour)
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) TestIssueAndValidate() {
	token, err := s.service.Issue("thomas.francis@amdesk.example", "Thomas Francis", "Admin")
	s.Require().NoError(err)
	s.NotEmpty(token)

	claims, err := s.service.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("thomas.francis@amdesk.example", claims.Email)
	s.Equal("Thomas Francis", claims.Name)
	s.Equal("Admin", claims.Role)
}

func (s *JWTSuite) TestRejectsExpiredTokens() {
	expired := New("test-signing-key", "amdesk", -time.Minute)
	token, err := expired.Issue("kara.james@amdesk.example", "Kara James", "Analyst")
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestRejectsWrongKey() {
	other := New("another-key", "amdesk", time.Hour)
	token, err := other.Issue("kara.james@amdesk.example", "Kara James", "Analyst")
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestRejectsGarbage() {
	_, err := s.service.ValidateToken("not.a.token")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}
