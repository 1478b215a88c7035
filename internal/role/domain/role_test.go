package domain

import (
	"reflect"
	"testing"
)

func TestMembersUpdate_Apply(t *testing.T) {
	testCases := []struct {
		name    string
		current []string
		update  MembersUpdate
		want    []string
	}{
		{"add to empty", nil, MembersUpdate{Added: []string{"a", "b"}}, []string{"a", "b"}},
		{"remove existing", []string{"a", "b"}, MembersUpdate{Removed: []string{"a"}}, []string{"b"}},
		{"add existing is idempotent", []string{"a"}, MembersUpdate{Added: []string{"a"}}, []string{"a"}},
		{"remove wins over add", []string{"a"}, MembersUpdate{Added: []string{"b"}, Removed: []string{"b"}}, []string{"a"}},
		{"remove unknown is ignored", []string{"a"}, MembersUpdate{Removed: []string{"z"}}, []string{"a"}},
		{"empty update", []string{"a"}, MembersUpdate{}, []string{"a"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.update.Apply(tc.current); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Apply(%v) = %v, want %v", tc.current, got, tc.want)
			}
		})
	}
}

func TestUpdate_Validate(t *testing.T) {
	blank, ok := "  ", "editor"
	if (Update{}).Validate() == nil {
		t.Error("nil name should be invalid")
	}
	if (Update{Name: &blank}).Validate() == nil {
		t.Error("blank name should be invalid")
	}
	if err := (Update{Name: &ok}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
