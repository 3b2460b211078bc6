package gate

import "testing"

func TestRequiresAuth(t *testing.T) {
	type testCase struct {
		path     string
		excluded []string
		expected bool
	}
	for _, tc := range []testCase{
		{"/api/v1/status/", []string{"/api/v1/status"}, false},
		{"/api/v1/status", []string{"/api/v1/status/"}, false},
		{"/api/v1/status", []string{"/api/v1/status"}, false},
		{"/api/v1/status/", nil, true},
		{"/api/v1/status/", []string{}, true},
		{"", []string{"/x"}, true},
		{"/api/v1/users", []string{"/api/v1/status/"}, true},
		{"/api/v1/status/extra", []string{"/api/v1/status/"}, true},
		{"/api/v1/stat", []string{"/api/v1/status/"}, true},
		{"/api/v1/status//", []string{"/api/v1/status"}, true},
		{"/", []string{"/"}, false},
		{"/", []string{""}, false},
	} {
		actual := RequiresAuth(tc.path, tc.excluded)
		if actual != tc.expected {
			t.Errorf("RequiresAuth(%q, %q) should return %v got %v", tc.path, tc.excluded, tc.expected, actual)
		}
		if Paths(tc.excluded).RequireAuth(tc.path) != actual {
			t.Errorf("Paths(%q).RequireAuth(%q) differs from RequiresAuth", tc.excluded, tc.path)
		}
	}
}
