package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUsername(t *testing.T) {
	cases := map[string]bool{
		"alice":                 true,
		"a":                     true,
		"john.doe_99":           true,
		"A.B_C":                 true,
		strings.Repeat("x", 30): true,
		"":                      false,
		strings.Repeat("x", 31): false,
		"has space":             false,
		"dash-name":             false,
		"émile":                 false,
		"bob\n":                 false,
		"semi;colon":            false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidUsername(in), "username %q", in)
	}
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Abc123!@", true},
		{"Zz9#Zz9#Zz9#", true},
		{"abc12345", false},      // no uppercase, no symbol
		{"ABC123!@", false},      // no lowercase
		{"Abcdef!@", false},      // no digit
		{"Abc12345", false},      // no symbol
		{"Ab1!", false},          // too short
		{"Abc123!@Abc12", false}, // 13 chars
		{"Abc123!@\n", false},
		{"Abc 123!@", true},
		{"Abc123(@", true}, // other chars allowed once one listed symbol is present
		{"Abc123()", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidPassword(c.in), "password %q", c.in)
	}
}

type signup struct {
	Username string `form:"username" validate:"required,username"`
	Password string `form:"password" validate:"required,strongpwd"`
}

func TestNew_CustomTags(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(signup{Username: "alice", Password: "Abc123!@"}))

	err := v.Struct(signup{Username: "bad name", Password: "abc12345"})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Contains(t, details["username"], "1-30 characters")
	assert.Contains(t, details["password"], "8-12 characters")
}

func TestToDetails_Fallback(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
