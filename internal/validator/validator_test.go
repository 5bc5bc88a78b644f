package validator_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/validator"
	"github.com/stretchr/testify/assert"
)

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.RegisterRequest
	return validator.Bind(c, &req)
}

func TestBind_UsesJSONFieldNames(t *testing.T) {
	fields := bindBody(t, `{"email":"not-an-email","name":"A","password":"short","role":"ADMIN"}`)

	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.Contains(t, fields["password"], "8")
}

func TestBind_MalformedJSON(t *testing.T) {
	fields := bindBody(t, `{"email":`)
	assert.Contains(t, fields, "detail")
}

func TestBind_Valid(t *testing.T) {
	fields := bindBody(t, `{"email":"a@b.co","name":"Ana","password":"password123","role":"STUDENT"}`)
	assert.Nil(t, fields)
}

func TestBind_RoleTagIsCaseInsensitive(t *testing.T) {
	fields := bindBody(t, `{"email":"a@b.co","name":"Ana","password":"password123","role":"teacher"}`)
	assert.Nil(t, fields)

	fields = bindBody(t, `{"email":"a@b.co","name":"Ana","password":"password123","role":"ADMIN"}`)
	assert.Equal(t, "role must be TEACHER or STUDENT", fields["role"])
}

func TestBind_ClassCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	bind := func(body string) map[string]string {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req model.JoinClassRequest
		return validator.Bind(c, &req)
	}

	assert.Nil(t, bind(`{"code":" abc123 "}`))
	assert.Contains(t, bind(`{"code":"AB"}`), "code")
	assert.Contains(t, bind(`{"code":"ABC-123"}`), "code")
}

func TestBind_WrongJSONType(t *testing.T) {
	fields := bindBody(t, `{"email":42}`)
	assert.Equal(t, "must be a string", fields["email"])
}

func TestBind_EmptyBody(t *testing.T) {
	fields := bindBody(t, ``)
	assert.Equal(t, "request body is empty", fields["detail"])
}
