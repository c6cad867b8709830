package vocab

import (
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestUnitLabels(t *testing.T) {
	tests := []struct {
		unit Unit
		tag  language.Tag
		want string
	}{
		{UnitPiece, language.Russian, "шт"},
		{UnitMilliliter, language.Russian, "мл"},
		{UnitAmpoule, language.Russian, "амп"},
		{UnitGram, language.English, "g"},
		{Unit("barrel"), language.Russian, "barrel"},
	}
	for _, tt := range tests {
		if got := tt.unit.Label(tt.tag); got != tt.want {
			t.Errorf("%s.Label(%s) = %q, want %q", tt.unit, tt.tag, got, tt.want)
		}
	}
}

func TestParseUnit(t *testing.T) {
	for _, in := range []string{"milliliter", " MILLILITER ", "мл", "ml"} {
		u, err := ParseUnit(in)
		if err != nil {
			t.Fatalf("ParseUnit(%q): %v", in, err)
		}
		if u != UnitMilliliter {
			t.Fatalf("ParseUnit(%q) = %q", in, u)
		}
	}
	if _, err := ParseUnit("bucket"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestRoleLabelsAndParse(t *testing.T) {
	if got := RoleHeadNurse.Label(language.Russian); got != "Старшая медсестра" {
		t.Fatalf("label = %q", got)
	}
	if got := Role("janitor").Label(language.Russian); got != "janitor" {
		t.Fatalf("unknown role label = %q", got)
	}
	r, err := ParseRole("Head_Nurse")
	if err != nil || r != RoleHeadNurse {
		t.Fatalf("ParseRole = %q, %v", r, err)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionApproveRequest, true},
		{RoleAdmin, ActionManageUsers, true},
		{RoleHeadNurse, ActionApproveRequest, false},
		{RoleHeadNurse, ActionViewNarcoticJournal, true},
		{RoleHeadNurse, ActionCreateRequest, true},
		{RoleStaff, ActionDispense, true},
		{RoleStaff, ActionViewUsers, false},
		{RoleStaff, ActionViewNarcoticJournal, false},
		{RoleStaff, ActionEditMaterials, false},
		{Role(""), ActionViewDashboard, false},
	}
	for _, tt := range tests {
		if got := tt.role.Can(tt.action); got != tt.want {
			t.Errorf("%q.Can(%s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestEveryRoleSeesDashboard(t *testing.T) {
	for _, r := range Roles() {
		if !r.Can(ActionViewDashboard) {
			t.Errorf("%s cannot view dashboard", r)
		}
	}
}

func TestLabelCatalogRegistered(t *testing.T) {
	if err := registerLabels(); err != nil {
		t.Fatalf("registerLabels: %v", err)
	}
	for tag, msgs := range labels {
		p := message.NewPrinter(tag)
		for key, want := range msgs {
			if got := p.Sprintf(key); got != want {
				t.Errorf("%s %s = %q, want %q", tag, key, got, want)
			}
		}
	}
}
