package practice

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed practice.toml
var defaultRules string

type rulesFile struct {
	ServiceTypes []serviceTypeEntry `toml:"service_types"`
	Locations    []locationEntry    `toml:"locations"`
	Specialists  []specialistEntry  `toml:"specialists"`
}

type serviceTypeEntry struct {
	ID              string `toml:"id"`
	Name            string `toml:"name"`
	DurationMinutes int    `toml:"duration_minutes"`
	PricePLN        int    `toml:"price_pln"`
	MultiSession    bool   `toml:"multi_session"`
	MinSessions     int    `toml:"min_sessions"`
}

type locationEntry struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Address string `toml:"address"`
	Days    []int  `toml:"days"`
}

type specialistEntry struct {
	ID        string   `toml:"id"`
	FirstName string   `toml:"first_name"`
	LastName  string   `toml:"last_name"`
	Title     string   `toml:"title"`
	Services  []string `toml:"services"`
	WorkDays  []int    `toml:"work_days"`
	WorkHours []string `toml:"work_hours"`
	Online    bool     `toml:"online"`
}

// Default returns the rules the practice ships with.
func Default() *RuleSet {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded practice rules: %v", err))
	}
	return rs
}

// LoadFile reads a rule set from a TOML file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read practice rules: %w", err)
	}
	rs, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and validates a TOML rule set. Unknown keys are rejected.
func Parse(data string) (*RuleSet, error) {
	var f rulesFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode practice rules: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidRules, undecoded[0])
	}

	rs := &RuleSet{}
	for _, st := range f.ServiceTypes {
		rs.ServiceTypes = append(rs.ServiceTypes, ServiceType(st))
	}
	for _, l := range f.Locations {
		rs.Locations = append(rs.Locations, Location{
			ID:      l.ID,
			Name:    l.Name,
			Address: l.Address,
			Days:    weekdays(l.Days),
		})
	}
	for _, s := range f.Specialists {
		rs.Specialists = append(rs.Specialists, Specialist{
			ID:              s.ID,
			FirstName:       s.FirstName,
			LastName:        s.LastName,
			Title:           s.Title,
			Services:        s.Services,
			WorkDays:        weekdays(s.WorkDays),
			WorkHours:       s.WorkHours,
			OnlineAvailable: s.Online,
		})
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func weekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}
