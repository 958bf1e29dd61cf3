package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*gradeFlag)(nil)
	_ pflag.Value = (*practicalFlag)(nil)
	_ pflag.Value = (*academicFlag)(nil)
)

// gradeFlag accepts one grade band, e.g. --grade 3rd-5th.
type gradeFlag struct{ value domain.GradeBand }

func (f *gradeFlag) String() string { return string(f.value) }
func (f *gradeFlag) Type() string   { return "grade" }

func (f *gradeFlag) Set(s string) error {
	g, ok := domain.ParseGradeBand(strings.TrimSpace(s))
	if !ok {
		return fmt.Errorf("must be one of %s", joinValues(domain.GradeBands))
	}
	f.value = g
	return nil
}

type practicalFlag struct{ value domain.PracticalFocus }

func (f *practicalFlag) String() string { return string(f.value) }
func (f *practicalFlag) Type() string   { return "practical" }

func (f *practicalFlag) Set(s string) error {
	p, ok := domain.ParsePracticalFocus(strings.TrimSpace(s))
	if !ok {
		return fmt.Errorf("must be one of %s", joinValues(domain.PracticalFocuses))
	}
	f.value = p
	return nil
}

// academicFlag collects academic focuses from repeated or comma-separated
// values, capped at domain.MaxAcademicFocuses.
type academicFlag struct{ values []domain.AcademicFocus }

func (f *academicFlag) Type() string { return "academic" }

func (f *academicFlag) String() string {
	parts := make([]string, len(f.values))
	for i, v := range f.values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}

func (f *academicFlag) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, ok := domain.ParseAcademicFocus(part)
		if !ok {
			return fmt.Errorf("%q must be one of %s", part, joinValues(domain.AcademicFocuses))
		}
		if containsAcademic(f.values, a) {
			continue
		}
		if len(f.values) == domain.MaxAcademicFocuses {
			return fmt.Errorf("at most %d academic focuses", domain.MaxAcademicFocuses)
		}
		f.values = append(f.values, a)
	}
	return nil
}

func containsAcademic(fs []domain.AcademicFocus, a domain.AcademicFocus) bool {
	for _, f := range fs {
		if f == a {
			return true
		}
	}
	return false
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(parts, ", ")
}
