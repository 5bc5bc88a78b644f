package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"TEACHER":   RoleTeacher,
		"teacher":   RoleTeacher,
		" Student ": RoleStudent,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("ADMIN")
	assert.Error(t, err)
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(UserProfile{Name: "Budi", Role: RoleStudent})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"role":"STUDENT"`)

	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"role":"teacher"}`), &p))
	assert.Equal(t, RoleTeacher, p.Role)

	_, err = json.Marshal(UserProfile{})
	assert.Error(t, err, "zero role must not serialize")
}

func TestClassHasStudent(t *testing.T) {
	u := User{Name: "A"}
	c := Class{}
	assert.False(t, c.HasStudent(u.ID))
	c.StudentIDs = append(c.StudentIDs, u.ID)
	assert.True(t, c.HasStudent(u.ID))
}
