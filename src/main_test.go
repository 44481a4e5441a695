package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskhub/src/config"
	"taskhub/src/db"
	"taskhub/src/membership"
	"taskhub/src/middlewares"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Store  *db.Store
	Router *gin.Engine
	Owner  uuid.UUID
	Second uuid.UUID
	Other  uuid.UUID
}

func generateJWT(userID uuid.UUID) (string, error) {
	claims := &types.Claims{
		Username: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	middlewares.SetJWTKey(testSecret)
}

func (s *TestSuite) SetupTest() {
	conn, err := db.NewMemoryDB()
	s.Require().NoError(err)
	s.DB = conn
	s.Store = db.NewStore(conn)
	s.Owner, s.Second, s.Other = uuid.New(), uuid.New(), uuid.New()
	for i, id := range []uuid.UUID{s.Owner, s.Second, s.Other} {
		user := models.User{ID: id, Name: []string{"Owner", "Second", "Other"}[i], Email: id.String() + "@example.com"}
		s.Require().NoError(s.DB.Create(&user).Error)
	}
	svc := membership.NewService(s.Store, nil)
	s.Router = setupApp(config.Config{APIEnv: config.ENV_MEMORY}, svc, nil)
}

func TestTestSuite(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

func (s *TestSuite) request(method, url string, userID *uuid.UUID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != nil {
		token, err := generateJWT(*userID)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) createWorkspace() string {
	w := s.request("POST", "/api/v1/workspaces", &s.Owner, `{"name":"Acme Inc"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "workspace.id").String()
}

func (s *TestSuite) addMember(url string, ref string) string {
	w := s.request("POST", url+"/members", &s.Owner, `{"member_ref":"`+ref+`"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "member.id").String()
}

func (s *TestSuite) TestRequiresToken() {
	w := s.request("GET", "/api/v1/workspaces/"+uuid.NewString()+"/members", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest("GET", "/api/v1/workspaces/"+uuid.NewString()+"/members", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *TestSuite) TestSyncUser() {
	userID := uuid.New()
	w := s.request("POST", "/api/v1/users/sync", &userID, `{"name":"New","email":"new@example.com"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(userID.String(), gjson.Get(w.Body.String(), "user.id").String())

	w = s.request("POST", "/api/v1/users/sync", &userID, `{"name":"New"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestWorkspaceMembershipFlow() {
	wsID := s.createWorkspace()
	base := "/api/v1/workspaces/" + wsID

	w := s.request("GET", base+"/members", &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "members.#").Int())
	s.Equal("owner", gjson.Get(w.Body.String(), "members.0.role").String())

	secondID := s.addMember(base, s.Second.String())

	w = s.request("POST", base+"/members", &s.Second, `{"member_ref":"`+s.Other.String()+`"}`)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("PATCH", base+"/members/"+secondID, &s.Owner, `{"role":"owner"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("PATCH", base+"/members/"+secondID, &s.Owner, `{"role":"admin"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("admin", gjson.Get(w.Body.String(), "member.role").String())

	w = s.request("POST", base+"/owner", &s.Second, `{"new_owner_id":"`+secondID+`"}`)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("POST", base+"/owner", &s.Owner, `{"new_owner_id":"`+secondID+`"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(secondID, gjson.Get(w.Body.String(), "result.new_owner.id").String())

	w = s.request("GET", base+"/members", &s.Second, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("admin", gjson.Get(w.Body.String(), "members.0.role").String())
	s.Equal("owner", gjson.Get(w.Body.String(), "members.1.role").String())

	w = s.request("GET", base+"/members", &s.Other, "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TestSuite) TestOwnerLeavingHandsOverOwnership() {
	wsID := s.createWorkspace()
	base := "/api/v1/workspaces/" + wsID
	secondID := s.addMember(base, s.Second.String())

	w := s.request("GET", base+"/members", &s.Owner, "")
	ownerID := gjson.Get(w.Body.String(), "members.0.id").String()

	w = s.request("DELETE", base+"/members/"+ownerID, &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(secondID, gjson.Get(w.Body.String(), "result.new_owner.id").String())

	w = s.request("GET", base+"/members", &s.Second, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "members.#").Int())
	s.Equal("owner", gjson.Get(w.Body.String(), "members.0.role").String())

	w = s.request("GET", base+"/members", &s.Owner, "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TestSuite) TestTeamOfAnotherWorkspaceIsNotFound() {
	wsA := s.createWorkspace()
	wsB := s.createWorkspace()

	w := s.request("POST", "/api/v1/workspaces/"+wsB+"/teams", &s.Owner, `{"name":"Platform"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	teamB := gjson.Get(w.Body.String(), "team.id").String()

	w = s.request("GET", "/api/v1/workspaces/"+wsA+"/teams/"+teamB+"/members", &s.Owner, "")
	s.Equal(http.StatusNotFound, w.Code, w.Body.String())

	w = s.request("DELETE", "/api/v1/workspaces/"+wsA+"/teams/"+teamB, &s.Owner, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request("GET", "/api/v1/workspaces/"+wsB+"/teams/"+teamB+"/members", &s.Owner, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *TestSuite) TestTeamLifecycle() {
	wsID := s.createWorkspace()
	base := "/api/v1/workspaces/" + wsID

	w := s.request("POST", base+"/teams", &s.Owner, `{"name":"Platform"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	teamURL := base + "/teams/" + gjson.Get(w.Body.String(), "team.id").String()

	w = s.request("GET", teamURL+"/members", &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("owner", gjson.Get(w.Body.String(), "members.0.role").String())

	w = s.request("DELETE", teamURL, &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(int64(1), gjson.Get(w.Body.String(), "result.team_deleted").Int())

	w = s.request("GET", teamURL+"/members", &s.Owner, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TestSuite) TestProjectAssignment() {
	wsID := s.createWorkspace()
	base := "/api/v1/workspaces/" + wsID
	secondWM := s.addMember(base, s.Second.String())

	w := s.request("POST", base+"/teams", &s.Owner, `{"name":"Platform"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	teamID := gjson.Get(w.Body.String(), "team.id").String()
	s.addMember(base+"/teams/"+teamID, secondWM)

	w = s.request("POST", base+"/projects", &s.Owner, `{"name":"Launch"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("private", gjson.Get(w.Body.String(), "project.visibility").String())
	projectURL := base + "/projects/" + gjson.Get(w.Body.String(), "project.id").String()

	w = s.request("POST", projectURL+"/teams/"+teamID, &s.Owner, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request("POST", projectURL+"/teams/"+teamID, &s.Owner, "")
	s.Equal(http.StatusConflict, w.Code)

	w = s.request("GET", projectURL+"/teams", &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(teamID, gjson.Get(w.Body.String(), "teams.0").String())

	// the only project member also belongs to the team
	w = s.request("DELETE", projectURL+"/teams/"+teamID+"?remove_members=true", &s.Owner, "")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("DELETE", projectURL+"/teams/"+teamID, &s.Owner, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(int64(1), gjson.Get(w.Body.String(), "result.unassigned_project").Int())
}

func (s *TestSuite) TestMaintenanceMode() {
	svc := membership.NewService(s.Store, nil)
	router := setupApp(config.Config{APIEnv: config.ENV_MEMORY, MaintenanceMode: true}, svc, nil)
	req, _ := http.NewRequest("GET", "/api/v1/workspaces/"+uuid.NewString()+"/members", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}
