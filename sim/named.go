package sim

import (
	"errors"
	"fmt"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// CheckName returns an error if the name is empty or contains characters
// that break hierarchical names and trace table keys.
func CheckName(name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}

	if strings.ContainsAny(name, " \t\n/@") {
		return fmt.Errorf("name %q must not contain spaces, '/' or '@'", name)
	}

	return nil
}

// NameMustBeValid panics if the name is not valid.
func NameMustBeValid(name string) {
	err := CheckName(name)
	if err != nil {
		panic(err.Error())
	}
}
