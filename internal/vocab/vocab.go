// Package vocab holds the static code lists shared by the API server and its
// clients: units of measure, user roles and the role capability table.
package vocab

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Unit string

const (
	UnitPiece      Unit = "piece"
	UnitMilliliter Unit = "milliliter"
	UnitGram       Unit = "gram"
	UnitPack       Unit = "pack"
	UnitAmpoule    Unit = "ampoule"
)

// Units returns units in display order.
func Units() []Unit {
	return []Unit{UnitPiece, UnitMilliliter, UnitGram, UnitPack, UnitAmpoule}
}

func (u Unit) Valid() bool {
	for _, k := range Units() {
		if k == u {
			return true
		}
	}
	return false
}

// Label returns the short display label ("шт", "мл", ...). Unknown codes are returned as is.
func (u Unit) Label(tag language.Tag) string {
	if !u.Valid() {
		return string(u)
	}
	return message.NewPrinter(tag).Sprintf("unit." + string(u))
}

// ParseUnit accepts either a unit code or one of its display labels.
func ParseUnit(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range Units() {
		if s == string(u) {
			return u, nil
		}
		for _, tag := range Supported() {
			if s == strings.ToLower(u.Label(tag)) {
				return u, nil
			}
		}
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHeadNurse Role = "head_nurse"
	RoleStaff     Role = "staff"
)

func Roles() []Role { return []Role{RoleAdmin, RoleHeadNurse, RoleStaff} }

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

func (r Role) Label(tag language.Tag) string {
	if !r.Valid() {
		return string(r)
	}
	return message.NewPrinter(tag).Sprintf("role." + string(r))
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
