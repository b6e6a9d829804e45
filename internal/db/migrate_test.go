package db

import (
	"strings"
	"testing"
)

func TestMigrationsAreOrderedAndNamed(t *testing.T) {
	if len(migrations) == 0 {
		t.Fatal("no migrations registered")
	}

	seen := make(map[int]string, len(migrations))
	prev := 0
	for _, m := range migrations {
		if m.Version <= prev {
			t.Errorf("migration %d (%s) out of order after %d", m.Version, m.Name, prev)
		}
		if other, dup := seen[m.Version]; dup {
			t.Errorf("version %d used by both %s and %s", m.Version, other, m.Name)
		}
		seen[m.Version] = m.Name
		prev = m.Version

		if m.Name == "" {
			t.Errorf("migration %d has no name", m.Version)
		}
		if strings.TrimSpace(m.SQL) == "" {
			t.Errorf("migration %d (%s) has no SQL", m.Version, m.Name)
		}
	}
}

func TestMigrationsStayAdditive(t *testing.T) {
	for _, m := range migrations {
		sql := strings.ToUpper(m.SQL)
		for _, verb := range []string{"DROP TABLE", "DROP COLUMN", "TRUNCATE"} {
			if strings.Contains(sql, verb) {
				t.Errorf("migration %d (%s) contains %s", m.Version, m.Name, verb)
			}
		}
	}
}

func TestSlotTableGuardsOccupancy(t *testing.T) {
	var slotSQL string
	for _, m := range migrations {
		if strings.Contains(m.SQL, "appointment_slots") && strings.Contains(strings.ToUpper(m.SQL), "CREATE TABLE") {
			slotSQL = m.SQL
			break
		}
	}
	if slotSQL == "" {
		t.Fatal("no migration creates appointment_slots")
	}
	for _, want := range []string{"capacity", "occupancy", "CHECK"} {
		if !strings.Contains(slotSQL, want) {
			t.Errorf("appointment_slots DDL missing %q", want)
		}
	}
}
