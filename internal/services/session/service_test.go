package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tycoon-backend/internal/dependencies/mocks"
	"github.com/mcoot/tycoon-backend/internal/model"
)

const testSecret = "test-secret-please-ignore"

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	service, err := New(s.clock, Config{Secret: testSecret, TTL: time.Hour})
	s.Require().NoError(err)
	s.service = service
}

func (s *ServiceSuite) TestNewRequiresSecret() {
	_, err := New(s.clock, Config{TTL: time.Hour})
	s.ErrorIs(err, ErrMissingKey)
}

func (s *ServiceSuite) TestNewDefaultsTTL() {
	service, err := New(s.clock, Config{Secret: testSecret})
	s.Require().NoError(err)

	_, expiresAt, err := service.Issue("player-1")
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(365*24*time.Hour), expiresAt)
}

func (s *ServiceSuite) TestIssueAndVerifyRoundTrip() {
	token, expiresAt, err := s.service.Issue("player-1")
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(s.clock.Now().Add(time.Hour), expiresAt)

	id, err := s.service.Verify(token)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), id)
}

func (s *ServiceSuite) TestVerifyRejectsExpiredToken() {
	token, _, err := s.service.Issue("player-1")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Second)

	_, err = s.service.Verify(token)
	s.ErrorIs(err, ErrTokenExpired)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyAcceptsTokenJustBeforeExpiry() {
	token, _, err := s.service.Issue("player-1")
	s.Require().NoError(err)

	s.clock.Advance(59 * time.Minute)

	_, err = s.service.Verify(token)
	s.NoError(err)
}

func (s *ServiceSuite) TestVerifyRejectsTamperedPayload() {
	alice, _, err := s.service.Issue("alice")
	s.Require().NoError(err)
	mallory, _, err := s.service.Issue("mallory")
	s.Require().NoError(err)

	// Graft mallory's claims onto alice's signature
	a := strings.Split(alice, ".")
	m := strings.Split(mallory, ".")
	forged := strings.Join([]string{a[0], m[1], a[2]}, ".")

	_, err = s.service.Verify(forged)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsOtherSecret() {
	other, err := New(s.clock, Config{Secret: "another-secret", TTL: time.Hour})
	s.Require().NoError(err)
	token, _, err := other.Issue("player-1")
	s.Require().NoError(err)

	_, err = s.service.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsNoneAlgorithm() {
	claims := &jwt.RegisteredClaims{
		Subject:   "player-1",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsMissingSubject() {
	claims := &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	s.Require().NoError(err)

	_, err = s.service.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsMissingExpiry() {
	claims := &jwt.RegisteredClaims{Subject: "player-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	s.Require().NoError(err)

	_, err = s.service.Verify(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsGarbage() {
	_, err := s.service.Verify("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyOptional() {
	token, _, err := s.service.Issue("player-1")
	s.Require().NoError(err)

	id, ok := s.service.VerifyOptional(token)
	s.True(ok)
	s.Equal(model.PlayerID("player-1"), id)

	id, ok = s.service.VerifyOptional("")
	s.False(ok)
	s.Empty(id)

	_, ok = s.service.VerifyOptional("garbage")
	s.False(ok)
}
