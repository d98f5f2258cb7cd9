package models

import "fmt"

func errNotA(kind string, v any) error {
	return fmt.Errorf("expected a %s, got %T", kind, v)
}
