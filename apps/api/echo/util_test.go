package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/studio/apps/api/echo"
	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
	"github.com/trezcool/studio/core/progress"
	"github.com/trezcool/studio/core/safety"
	"github.com/trezcool/studio/core/tier"
	emailsvc "github.com/trezcool/studio/services/email"
	inmemdb "github.com/trezcool/studio/storage/database/inmem"
	testutil "github.com/trezcool/studio/tests"
)

type testApp struct {
	*Server
	logger *testutil.Logger
	mail   *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testApp {
	t.Helper()
	conf := testutil.Config(t, "mod@example.com")
	conf.Server.DisableReqLogs = true
	logger := testutil.NewLogger()

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	community.InitValidators(validate, translator)

	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	filter := safety.NewDefault()

	server := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		ProgressSvc:  progress.NewService(inmemdb.NewProgressRepository(db), tier.Default(), logger),
		CommunitySvc: community.NewService(inmemdb.NewCommunityRepository(db), filter, mailSvc, logger, conf),
		Filter:       filter,
		Validate:     validate,
		Translator:   translator,
	})
	return testApp{Server: server, logger: logger, mail: mailSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func (app testApp) do(t *testing.T, method, path string, data interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if data != nil {
		body = marshalObj(t, data)
	}
	req, rec := newRequest(method, path, body)
	app.ServeHTTP(rec, req)
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
