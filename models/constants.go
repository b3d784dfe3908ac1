// ABOUTME: Fixed rosters and plant codes used by report forms
// ABOUTME: Shifts, work centers, technician roster and technician list helpers
package models

import "strings"

var Shifts = []Shift{ShiftA, ShiftB, ShiftC, ShiftD}

// WorkCenters are the plant work-center codes, default first.
var WorkCenters = []string{
	"SC108HH",
	"SC118HH",
	"SC103HH",
	"SC105HH",
	"SC117HH",
}

var TechniciansByShift = map[Shift][]string{
	ShiftA: {"Ilton", "Hannyel", "Misael", "Arilson", "Pedro", "Diran", "Alcino", "Assuero"},
	ShiftB: {"Luiz Gustavo", "Rafael", "Lucas", "Jeferson", "Eduardo", "Luiz Neto", "victor", "geovane"},
	ShiftC: {"Marcos", "Wanderson", "Wilian", "Gustavo", "Joao leno", "Patrick", "Jhon Dultra", "Fabricio", "Daniel Alves", "Victor"},
	ShiftD: {"Doclenio", "Geraldo", "Darlan", "Cícero", "fredson", "Thiago", "Rodrigo", "Hitalo"},
}

const technicianSeparator = ", "

func IsValidShift(s Shift) bool {
	for _, v := range Shifts {
		if v == s {
			return true
		}
	}
	return false
}

func IsValidWorkCenter(wc string) bool {
	for _, v := range WorkCenters {
		if v == wc {
			return true
		}
	}
	return false
}

// SplitTechnicians parses the comma-separated technician list.
func SplitTechnicians(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// ToggleTechnician adds name to the list, or removes it if already present.
func ToggleTechnician(list, name string) string {
	current := SplitTechnicians(list)
	out := make([]string, 0, len(current)+1)
	found := false
	for _, n := range current {
		if n == name {
			found = true
			continue
		}
		out = append(out, n)
	}
	if !found {
		out = append(out, name)
	}
	return strings.Join(out, technicianSeparator)
}

// AddTechnician appends a trimmed custom name unless it is blank or present.
func AddTechnician(list, name string) string {
	name = strings.TrimSpace(name)
	current := SplitTechnicians(list)
	if name == "" {
		return strings.Join(current, technicianSeparator)
	}
	for _, n := range current {
		if n == name {
			return strings.Join(current, technicianSeparator)
		}
	}
	return strings.Join(append(current, name), technicianSeparator)
}

// CustomTechnicians returns the names in list that are not on the shift roster.
func CustomTechnicians(list string, shift Shift) []string {
	roster := TechniciansByShift[shift]
	var custom []string
	for _, n := range SplitTechnicians(list) {
		onRoster := false
		for _, r := range roster {
			if r == n {
				onRoster = true
				break
			}
		}
		if !onRoster {
			custom = append(custom, n)
		}
	}
	return custom
}
