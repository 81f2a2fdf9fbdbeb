package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/jnanisc/backend/apps/api/echo"
	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
	emailsvc "github.com/jnanisc/backend/services/email"
	dummydb "github.com/jnanisc/backend/storage/database/dummy"
)

var (
	testConf *core.Config
	usrSvc   *user.Service
	roleSvc  *role.Service

	errInvalidTokenBody = httpErr{Error: "invalid token"}
)

// testLogger discards everything; the error handler needs a core.Logger.
type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) Server {
	return newTestServer(t, nil)
}

func setupWithHealthCheck(t *testing.T, check func() error) Server {
	return newTestServer(t, func(context.Context) error { return check() })
}

func newTestServer(t *testing.T, healthCheck func(context.Context) error) Server {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	testConf = conf

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(dummydb.NewUserRepository(db), mailSvc, conf)
	roleSvc = role.NewService(dummydb.NewRoleRepository(db))

	return NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         testLogger{},
			UserSvc:        usrSvc,
			RoleSvc:        roleSvc,
			Validate:       validate,
			Translator:     translator,
			HealthCheck:    healthCheck,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createUser(t *testing.T, name, email, pwd string, active bool, roles ...string) user.User {
	t.Helper()
	usr, err := usrSvc.Create(context.Background(), user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		IsActive: &active,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshal(data []byte, obj interface{}) error {
	return json.Unmarshal(data, obj)
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
	if rec.Code == http.StatusUnauthorized {
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("missing challenge header; WWW-Authenticate = %q", got)
		}
	}
}
